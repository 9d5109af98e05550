package dataset

import "github.com/matzehuels/graphypad/pkg/errors"

// DefaultPageSize is the preview page size used by front ends.
const DefaultPageSize = 10

// Page is one window of rows rendered as display strings.
type Page struct {
	Number     int        `json:"page"`
	Size       int        `json:"size"`
	TotalPages int        `json:"total_pages"`
	TotalRows  int        `json:"total_rows"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
}

// Paginate returns page number (1-based) of ds split into pages of size
// rows. It depends only on its arguments. An empty dataset has one empty
// page.
func Paginate(ds *Dataset, size, number int) (Page, error) {
	if size <= 0 {
		return Page{}, errors.New(errors.ErrCodeInvalidPage, "page size must be positive, got %d", size)
	}
	total := ds.Rows()
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if number < 1 || number > pages {
		return Page{}, errors.New(errors.ErrCodeInvalidPage, "page %d out of range (1-%d)", number, pages)
	}

	start := (number - 1) * size
	end := min(start+size, total)

	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		row := make([]string, len(ds.Columns))
		for j, c := range ds.Columns {
			row[j] = c.Values[i].String()
		}
		rows = append(rows, row)
	}

	return Page{
		Number:     number,
		Size:       size,
		TotalPages: pages,
		TotalRows:  total,
		Columns:    ds.Names(),
		Rows:       rows,
	}, nil
}
