package io

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/graphypad/pkg/dataset"
)

type table struct {
	Name        string       `json:"name"`
	Format      string       `json:"format,omitempty"`
	Encoding    string       `json:"encoding,omitempty"`
	Columns     []column     `json:"columns"`
	Derivations []derivation `json:"derivations,omitempty"`
}

type column struct {
	Name   string `json:"name"`
	Values []any  `json:"values"`
}

type derivation struct {
	Name   string  `json:"name"`
	Source string  `json:"source"`
	Factor float64 `json:"factor"`
}

// Marshal encodes a dataset as compact JSON.
func Marshal(ds *dataset.Dataset) ([]byte, error) {
	data, err := json.Marshal(toTable(ds))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// WriteJSON encodes a dataset as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(ds *dataset.Dataset, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toTable(ds)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a dataset to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(ds *dataset.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(ds, f)
}

func toTable(ds *dataset.Dataset) table {
	out := table{
		Name:     ds.Name,
		Format:   ds.Format,
		Encoding: ds.Encoding,
		Columns:  make([]column, len(ds.Columns)),
	}
	for i, c := range ds.Columns {
		vals := make([]any, len(c.Values))
		for j, v := range c.Values {
			vals[j] = cell(v)
		}
		out.Columns[i] = column{Name: c.Name, Values: vals}
	}
	for _, d := range ds.Derivations {
		out.Derivations = append(out.Derivations, derivation{Name: d.Name, Source: d.Source, Factor: d.Factor})
	}
	return out
}

func cell(v dataset.Value) any {
	switch v.Kind {
	case dataset.Number:
		if math.IsInf(v.Num, 0) {
			return dataset.FormatNumber(v.Num)
		}
		return v.Num
	case dataset.Text:
		return v.Raw
	default:
		return nil
	}
}
