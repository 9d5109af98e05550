package io

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphypad/pkg/dataset"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("grades.csv",
		&dataset.Column{Name: "time", Values: []dataset.Value{dataset.Num(0), dataset.Num(1.5), dataset.Num(math.Inf(1))}},
		&dataset.Column{Name: "city", Values: []dataset.Value{dataset.Str("Osaka"), dataset.NA, dataset.Str("Kyoto")}},
	)
	if err != nil {
		t.Fatal(err)
	}
	ds.Encoding = dataset.EncodingShiftJIS
	ds.Derivations = []dataset.Derivation{{Name: "time_calc", Source: "time", Factor: 2}}
	return ds
}

func TestRoundTrip(t *testing.T) {
	src := testDataset(t)

	var buf bytes.Buffer
	if err := WriteJSON(src, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if got.Name != src.Name || got.Encoding != src.Encoding || got.Format != src.Format {
		t.Errorf("metadata = %s/%s/%s", got.Name, got.Encoding, got.Format)
	}
	if len(got.Derivations) != 1 || got.Derivations[0] != src.Derivations[0] {
		t.Errorf("Derivations = %+v", got.Derivations)
	}
	for i, c := range src.Columns {
		g := got.Columns[i]
		if g.Name != c.Name {
			t.Errorf("column %d name = %s, want %s", i, g.Name, c.Name)
		}
		for j, v := range c.Values {
			w := g.Values[j]
			if w.Kind != v.Kind || (v.Kind == dataset.Number && w.Num != v.Num) || (v.Kind == dataset.Text && w.Raw != v.Raw) {
				t.Errorf("%s[%d] = %+v, want %+v", c.Name, j, w, v)
			}
		}
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	data, err := Marshal(testDataset(t))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"+Inf"`) {
		t.Errorf("infinite value not encoded as string: %s", data)
	}
	ds, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ds.Rows() != 3 {
		t.Errorf("Rows() = %d, want 3", ds.Rows())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"columns": [`},
		{"ragged", `{"columns": [{"name": "a", "values": [1]}, {"name": "b", "values": [1, 2]}]}`},
		{"duplicate", `{"columns": [{"name": "a", "values": [1]}, {"name": "a", "values": [2]}]}`},
		{"object cell", `{"columns": [{"name": "a", "values": [{}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestImportExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ds.json")
	if err := ExportJSON(testDataset(t), path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	ds, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if !ds.Has("city") {
		t.Error("city column missing")
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}
