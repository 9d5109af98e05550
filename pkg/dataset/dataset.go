// Package dataset holds the tabular data model shared by every GraphyPad stage.
//
// A [Dataset] is an ordered list of named columns of equal length. Each cell
// is a [Value] that is either a number, a piece of text, or missing. Column
// names are unique and keep the order in which they first appeared in the
// source file.
//
// Datasets are built by [Parse] (CSV and Excel ingestion), by [New] for
// programmatic construction, and by [Derive], which returns a copy with one
// extra computed column. A Dataset is never modified in place once built.
package dataset

import (
	"math"
	"strconv"

	"github.com/matzehuels/graphypad/pkg/errors"
)

// Source formats and encodings recorded on a Dataset.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift-jis"
)

// Kind classifies a cell.
type Kind uint8

const (
	Missing Kind = iota
	Number
	Text
)

// Value is a single cell.
type Value struct {
	Kind Kind
	Num  float64
	// Raw keeps the source text of numbers and the content of text cells.
	Raw string
}

// NA is the missing value.
var NA = Value{}

// Num returns a numeric cell.
func Num(f float64) Value { return Value{Kind: Number, Num: f} }

// Str returns a text cell.
func Str(s string) Value { return Value{Kind: Text, Raw: s} }

// IsNA reports whether v is missing.
func (v Value) IsNA() bool { return v.Kind == Missing }

// String renders v for display. Missing values render as "".
func (v Value) String() string {
	switch v.Kind {
	case Number:
		if v.Raw != "" {
			return v.Raw
		}
		return FormatNumber(v.Num)
	case Text:
		return v.Raw
	default:
		return ""
	}
}

// FormatNumber renders f in the shortest form that round-trips.
func FormatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Column is a named sequence of cells.
type Column struct {
	Name   string
	Values []Value
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Values) }

// IsNumeric reports whether the column has at least one number and no text.
func (c *Column) IsNumeric() bool {
	seen := false
	for _, v := range c.Values {
		switch v.Kind {
		case Text:
			return false
		case Number:
			seen = true
		}
	}
	return seen
}

// Floats returns the column as floats. Missing and text cells become NaN.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		if v.Kind == Number {
			out[i] = v.Num
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Numbers returns the non-missing finite values of a numeric column.
// ok is false when the column contains text.
func (c *Column) Numbers() (vals []float64, ok bool) {
	for _, v := range c.Values {
		switch v.Kind {
		case Text:
			return nil, false
		case Number:
			if !math.IsInf(v.Num, 0) && !math.IsNaN(v.Num) {
				vals = append(vals, v.Num)
			}
		}
	}
	return vals, true
}

// Strings returns display strings for every cell.
func (c *Column) Strings() []string {
	out := make([]string, len(c.Values))
	for i, v := range c.Values {
		out[i] = v.String()
	}
	return out
}

// CountNA returns the number of missing cells.
func (c *Column) CountNA() int {
	n := 0
	for _, v := range c.Values {
		if v.IsNA() {
			n++
		}
	}
	return n
}

// Derivation records a column computed as Source * Factor.
type Derivation struct {
	Name   string
	Source string
	Factor float64
}

// Dataset is an ordered set of equal-length named columns.
type Dataset struct {
	// Name is the source filename, used by generated code.
	Name string
	// Format is FormatCSV or FormatXLSX.
	Format string
	// Encoding is the text encoding the source was decoded with.
	Encoding string
	Columns  []*Column
	// Derivations lists computed columns in the order they were added.
	Derivations []Derivation

	index map[string]int
}

// New builds a dataset from columns, checking that names are unique and
// that every column has the same length.
func New(name string, cols ...*Column) (*Dataset, error) {
	ds := &Dataset{Name: name, Format: FormatCSV, Encoding: EncodingUTF8, Columns: cols}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks the column invariants and rebuilds the name index.
func (d *Dataset) Validate() error {
	d.index = make(map[string]int, len(d.Columns))
	rows := -1
	for i, c := range d.Columns {
		if c == nil {
			return errors.New(errors.ErrCodeInvalidFile, "column %d is nil", i)
		}
		if _, dup := d.index[c.Name]; dup {
			return errors.Column(errors.ErrCodeInvalidFile, c.Name, "duplicate column name %q", c.Name)
		}
		if rows >= 0 && c.Len() != rows {
			return errors.Column(errors.ErrCodeInvalidFile, c.Name,
				"column %q has %d values, want %d", c.Name, c.Len(), rows)
		}
		rows = c.Len()
		d.index[c.Name] = i
	}
	return nil
}

// Column returns the named column.
func (d *Dataset) Column(name string) (*Column, bool) {
	if d.index == nil {
		for _, c := range d.Columns {
			if c.Name == name {
				return c, true
			}
		}
		return nil, false
	}
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.Columns[i], true
}

// Has reports whether a column with the given name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.Column(name)
	return ok
}

// Names returns column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// NumericNames returns the names of numeric columns in order.
func (d *Dataset) NumericNames() []string {
	var out []string
	for _, c := range d.Columns {
		if c.IsNumeric() {
			out = append(out, c.Name)
		}
	}
	return out
}

// Rows returns the row count.
func (d *Dataset) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// Clone returns a copy that shares cell slices but not column lists.
func (d *Dataset) Clone() *Dataset {
	out := *d
	out.Columns = append([]*Column(nil), d.Columns...)
	out.Derivations = append([]Derivation(nil), d.Derivations...)
	out.index = nil
	if d.index != nil {
		out.index = make(map[string]int, len(d.index))
		for k, v := range d.index {
			out.index[k] = v
		}
	}
	return &out
}
