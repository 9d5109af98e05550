package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/graphypad/pkg/dataset"
)

// ReadJSON decodes a JSON dataset from r.
//
// The input must be an object with a "columns" array; each column needs a
// "name" and a "values" array of numbers, strings or nulls. All columns
// must have the same length and names must be unique.
//
// Strings are classified again with [dataset.ParseCell], so a text cell
// that happens to look like a number is read back as a number. ReadJSON
// does not close r.
func ReadJSON(r io.Reader) (*dataset.Dataset, error) {
	var data table
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	cols := make([]*dataset.Column, len(data.Columns))
	for i, c := range data.Columns {
		vals := make([]dataset.Value, len(c.Values))
		for j, raw := range c.Values {
			v, err := fromCell(raw)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", c.Name, j, err)
			}
			vals[j] = v
		}
		cols[i] = &dataset.Column{Name: c.Name, Values: vals}
	}

	ds, err := dataset.New(data.Name, cols...)
	if err != nil {
		return nil, err
	}
	if data.Format != "" {
		ds.Format = data.Format
	}
	if data.Encoding != "" {
		ds.Encoding = data.Encoding
	}
	for _, d := range data.Derivations {
		ds.Derivations = append(ds.Derivations, dataset.Derivation{Name: d.Name, Source: d.Source, Factor: d.Factor})
	}
	return ds, nil
}

// Unmarshal decodes a dataset from JSON bytes.
func Unmarshal(data []byte) (*dataset.Dataset, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a JSON file at path and returns the decoded dataset.
func ImportJSON(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func fromCell(raw any) (dataset.Value, error) {
	switch v := raw.(type) {
	case nil:
		return dataset.NA, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return dataset.NA, err
		}
		return dataset.Num(f), nil
	case string:
		return dataset.ParseCell(v), nil
	case bool:
		return dataset.Str(fmt.Sprint(v)), nil
	default:
		return dataset.NA, fmt.Errorf("unsupported cell type %T", raw)
	}
}
