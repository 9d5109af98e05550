package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphypad/pkg/dataset"
	dsio "github.com/matzehuels/graphypad/pkg/io"
	"github.com/matzehuels/graphypad/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // PNG output path
	code     string   // Python output path, "-" for stdout
	saveData string   // dataset export path (JSON)
	derive   []string // derived columns as name=source*factor
	dpi      float64  // raster resolution, 0 for the configured value
	noCache  bool     // bypass the render cache
	req      requestFlags
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{output: "chart.png"}

	cmd := &cobra.Command{
		Use:   "render <data>",
		Short: "Render a chart as PNG and matplotlib code",
		Long: `Render a chart from a CSV, TXT, XLSX or exported JSON data file.

The chart is described by a request file (--request), by flags, or both;
flags override values from the file.`,
		Example: `  graphypad render data.csv -t line -x time -y temp,rain -o weather.png
  graphypad render data.xlsx --request chart.yaml --code chart.py
  graphypad render data.csv -t composite -x month -y sales,margin --kind margin=line --axis margin=1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("dpi") && opts.dpi <= 0 {
				return fmt.Errorf("--dpi must be positive")
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "PNG output file")
	cmd.Flags().StringVar(&opts.code, "code", "", "write the matplotlib code to this file (- for stdout)")
	cmd.Flags().StringVar(&opts.saveData, "save-data", "", "export the dataset, derived columns included, as JSON")
	cmd.Flags().StringArrayVar(&opts.derive, "derive", nil, "add a derived column, e.g. temp_f=temp*1.8 (repeatable)")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", 0, "raster resolution (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	opts.req.register(cmd)

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	req, err := opts.req.request(cmd)
	if err != nil {
		return err
	}

	ds, err := pipeline.LoadFile(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded dataset", "file", ds.Name, "rows", ds.Rows(), "columns", len(ds.Columns), "encoding", ds.Encoding)

	for _, expr := range opts.derive {
		ds, err = applyDerive(ds, expr)
		if err != nil {
			return err
		}
	}

	if opts.dpi > 0 {
		c.Config.Render.DPI = opts.dpi
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, os.Stderr, "Rendering "+req.ChartType+" chart...")
	spinner.Start()
	result, err := runner.Execute(ctx, ds, req)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Rendered " + string(result.Spec.Type) + " chart")

	if err := os.WriteFile(opts.output, result.Image, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := writeCode(opts.code, result.Code); err != nil {
		return err
	}
	if opts.saveData != "" {
		if err := dsio.ExportJSON(ds, opts.saveData); err != nil {
			return err
		}
	}

	printSuccess("%s chart", result.Spec.Type.DisplayName())
	printStats(result.Stats.Series, result.Stats.ImageBytes, result.CacheInfo.RenderHit)
	printFile(opts.output)
	if opts.code != "" && opts.code != "-" {
		printFile(opts.code)
	}
	if opts.saveData != "" {
		printFile(opts.saveData)
	}
	if opts.code == "" {
		printNextStep("Get the matplotlib code", "graphypad render "+path+" --code chart.py")
	}
	return nil
}

// applyDerive parses name=source*factor (or source*factor for the default
// name) and adds the column.
func applyDerive(ds *dataset.Dataset, expr string) (*dataset.Dataset, error) {
	name, rhs, ok := strings.Cut(expr, "=")
	if !ok {
		name, rhs = "", expr
	}
	source, factorStr, ok := strings.Cut(rhs, "*")
	if !ok {
		return nil, fmt.Errorf("invalid --derive %q (want name=source*factor)", expr)
	}
	factor, err := strconv.ParseFloat(strings.TrimSpace(factorStr), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --derive factor %q: %w", factorStr, err)
	}
	return dataset.Derive(ds, strings.TrimSpace(source), strings.TrimSpace(name), factor)
}

func writeCode(path, code string) error {
	switch path {
	case "":
		return nil
	case "-":
		_, err := fmt.Print(code)
		return err
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write code: %w", err)
	}
	return nil
}
