package dataset

import (
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"

	"github.com/matzehuels/graphypad/pkg/errors"
)

// naValues are the cell texts treated as missing, matching the defaults of
// common dataframe libraries so uploads behave the same as in a notebook.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCell classifies a single cell of source text.
func ParseCell(s string) Value {
	if naValues[s] {
		return NA
	}
	t := strings.TrimSpace(s)
	if t == "" {
		return NA
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		if math.IsNaN(f) {
			return NA
		}
		return Value{Kind: Number, Num: f, Raw: t}
	}
	return Str(s)
}

// Parse decodes an uploaded file. The format is chosen by the extension of
// filename: ".xlsx" is read as an Excel workbook (first sheet), anything
// else as comma-separated text.
func Parse(data []byte, filename string) (*Dataset, error) {
	name := filepath.Base(filename)
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ParseXLSX(data, name)
	}
	return ParseCSV(data, name)
}

// ParseCSV decodes comma-separated text. UTF-8 is tried first (a leading
// byte order mark is dropped); input that is not valid UTF-8 is decoded as
// Shift-JIS.
func ParseCSV(data []byte, name string) (*Dataset, error) {
	text, enc, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.ErrCodeInvalidFile, "no columns to parse from file")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFile, err, "read header")
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFile, err, "read row %d", len(records)+2)
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, errors.New(errors.ErrCodeInvalidFile,
				"expected %d fields in line %d, saw %d", len(header), line, len(rec))
		}
		records = append(records, rec)
	}

	ds, err := fromRecords(name, header, records)
	if err != nil {
		return nil, err
	}
	ds.Format = FormatCSV
	ds.Encoding = enc
	return ds, nil
}

func decodeText(data []byte) ([]byte, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, EncodingUTF8, nil
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidFile, err, "file is neither UTF-8 nor Shift-JIS")
	}
	return out, EncodingShiftJIS, nil
}

// fromRecords builds columns from a header row and data rows. Short rows are
// padded with missing values.
func fromRecords(name string, header []string, records [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFile, "no columns to parse from file")
	}
	names := columnNames(header)
	cols := make([]*Column, len(names))
	for j, n := range names {
		cols[j] = &Column{Name: n, Values: make([]Value, len(records))}
	}
	for i, rec := range records {
		for j := range cols {
			if j < len(rec) {
				cols[j].Values[i] = ParseCell(rec[j])
			}
		}
	}
	return New(name, cols...)
}

// columnNames fills blank headers with "Unnamed: i" and renames repeats to
// "name.1", "name.2", ...
func columnNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		base, n := h, 0
		for seen[h] {
			n++
			h = fmt.Sprintf("%s.%d", base, n)
		}
		seen[h] = true
		out[i] = h
	}
	return out
}
