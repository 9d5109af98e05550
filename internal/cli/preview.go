package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/pipeline"
)

// previewOpts holds the command-line flags for the preview command.
type previewOpts struct {
	page        int
	size        int
	interactive bool
}

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	opts := previewOpts{page: 1, size: dataset.DefaultPageSize}

	cmd := &cobra.Command{
		Use:   "preview <data>",
		Short: "Show a data file as a paginated table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := pipeline.LoadFile(args[0])
			if err != nil {
				return err
			}
			if opts.interactive {
				return runPreviewTUI(ds, opts.size)
			}
			return writePreview(c.out, ds, opts.size, opts.page)
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", opts.page, "page number (1-based)")
	cmd.Flags().IntVar(&opts.size, "size", opts.size, "rows per page")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "page through the table interactively")

	return cmd
}

// writePreview prints one page with a summary line.
func writePreview(w io.Writer, ds *dataset.Dataset, size, number int) error {
	page, err := dataset.Paginate(ds, size, number)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, StyleTitle.Render(ds.Name))
	fmt.Fprintln(w, renderPageTable(ds, page, -1))
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("page %d/%d · %d rows · %d columns (%d numeric)",
		page.Number, page.TotalPages, page.TotalRows, len(ds.Columns), len(ds.NumericNames()))))
	return nil
}

func runPreviewTUI(ds *dataset.Dataset, size int) error {
	model, err := NewPreviewModel(ds, size)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
