package dataset

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/graphypad/pkg/errors"
)

// ParseXLSX reads the first sheet of an Excel workbook. The first row is the
// header; cells use the same classification as CSV input.
func ParseXLSX(data []byte, name string) (*Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFile, err, "open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFile, "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFile, err, "read sheet %q", sheets[0])
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFile, "no columns to parse from sheet %q", sheets[0])
	}

	header := rows[0]
	width := len(header)
	for _, r := range rows[1:] {
		if len(r) > width {
			width = len(r)
		}
	}
	// Trailing empty cells are omitted by the reader; widen the header so
	// values past the last header cell get an "Unnamed" column.
	for len(header) < width {
		header = append(header, "")
	}

	ds, err := fromRecords(name, header, rows[1:])
	if err != nil {
		return nil, err
	}
	ds.Format = FormatXLSX
	ds.Encoding = EncodingUTF8
	return ds, nil
}
