package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/graphypad/pkg/dataset"
)

// Table styles
var (
	tableHeaderStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableSelectedHead = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	tableNumberStyle  = StyleNumber
	tableTextStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	tableMissingStyle = lipgloss.NewStyle().Foreground(colorDim)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// renderPageTable draws one page of a dataset. Numeric columns are tinted,
// missing cells dimmed, and column selected (or -1) highlighted.
func renderPageTable(ds *dataset.Dataset, page dataset.Page, selected int) string {
	numeric := make([]bool, len(ds.Columns))
	for i, c := range ds.Columns {
		numeric[i] = c.IsNumeric()
	}

	headers := make([]string, len(page.Columns))
	for i, name := range page.Columns {
		if numeric[i] {
			headers[i] = name + " #"
		} else {
			headers[i] = name
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(page.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				if col == selected {
					return base.Inherit(tableSelectedHead)
				}
				return base.Inherit(tableHeaderStyle)
			}
			style := tableTextStyle
			switch {
			case row < len(page.Rows) && col < len(page.Rows[row]) && page.Rows[row][col] == "":
				style = tableMissingStyle
			case numeric[col]:
				style = tableNumberStyle
			}
			if col == selected {
				style = style.Bold(true)
			}
			return base.Inherit(style)
		})
	return t.Render()
}

// =============================================================================
// PreviewModel - Interactive table pager
// =============================================================================

// PreviewModel is the bubbletea model for paging through a dataset.
type PreviewModel struct {
	Dataset  *dataset.Dataset
	Page     dataset.Page
	PageSize int
	Column   int
}

// NewPreviewModel creates a pager starting at page 1.
func NewPreviewModel(ds *dataset.Dataset, size int) (PreviewModel, error) {
	if size <= 0 {
		size = dataset.DefaultPageSize
	}
	page, err := dataset.Paginate(ds, size, 1)
	if err != nil {
		return PreviewModel{}, err
	}
	return PreviewModel{Dataset: ds, Page: page, PageSize: size}, nil
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n", "pgdown":
			m = m.goTo(m.Page.Number + 1)
		case "left", "h", "p", "pgup":
			m = m.goTo(m.Page.Number - 1)
		case "home", "g":
			m = m.goTo(1)
		case "end", "G":
			m = m.goTo(m.Page.TotalPages)
		case "tab":
			if n := len(m.Dataset.Columns); n > 0 {
				m.Column = (m.Column + 1) % n
			}
		case "shift+tab":
			if n := len(m.Dataset.Columns); n > 0 {
				m.Column = (m.Column + n - 1) % n
			}
		}
	case tea.WindowSizeMsg:
		if size := msg.Height - 10; size >= 3 && size != m.PageSize {
			first := (m.Page.Number-1)*m.PageSize + 1
			m.PageSize = size
			m = m.goTo((first-1)/size + 1)
		}
	}
	return m, nil
}

// goTo moves to page n when it exists.
func (m PreviewModel) goTo(n int) PreviewModel {
	page, err := dataset.Paginate(m.Dataset, m.PageSize, n)
	if err != nil {
		return m
	}
	m.Page = page
	return m
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Dataset.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ page  tab column  g/G first/last  q quit"))
	b.WriteString("\n\n")
	b.WriteString(renderPageTable(m.Dataset, m.Page, m.Column))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  page %d/%d · %d rows", m.Page.Number, m.Page.TotalPages, m.Page.TotalRows)))
	if m.Column < len(m.Dataset.Columns) {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("  " + columnSummary(m.Dataset.Columns[m.Column])))
	}
	return b.String()
}

// columnSummary describes a column's type, missing count and range.
func columnSummary(c *dataset.Column) string {
	if !c.IsNumeric() {
		return fmt.Sprintf("%s: text, %d missing", c.Name, c.CountNA())
	}
	vals, _ := c.Numbers()
	if len(vals) == 0 {
		return fmt.Sprintf("%s: numeric, %d missing", c.Name, c.CountNA())
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo, hi = min(lo, v), max(hi, v)
	}
	return fmt.Sprintf("%s: numeric, %d missing, range %s to %s",
		c.Name, c.CountNA(), dataset.FormatNumber(lo), dataset.FormatNumber(hi))
}
