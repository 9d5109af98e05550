package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphypad/pkg/chart"
)

// listFields are request fields that travel as JSON text. Request files may
// write them as native lists or mappings instead.
var listFields = []string{"y_axis_list", "series_kinds", "axes", "axis_labels"}

// loadRequest reads a chart request from a YAML or JSON file.
func loadRequest(path string) (chart.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chart.Request{}, fmt.Errorf("read request: %w", err)
	}
	return parseRequest(data, filepath.Ext(path))
}

// parseRequest decodes a request document. ext selects strict JSON for
// ".json"; anything else is read as YAML.
func parseRequest(data []byte, ext string) (chart.Request, error) {
	var doc map[string]any
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return chart.Request{}, fmt.Errorf("parse request: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &doc); err != nil {
		return chart.Request{}, fmt.Errorf("parse request: %w", err)
	}

	for _, key := range listFields {
		v, ok := doc[key]
		if !ok {
			continue
		}
		if _, isString := v.(string); isString {
			continue
		}
		enc, err := json.Marshal(v)
		if err != nil {
			return chart.Request{}, fmt.Errorf("request field %s: %w", key, err)
		}
		doc[key] = string(enc)
	}

	// Round-trip through YAML so the struct tags of chart.Request apply.
	norm, err := yaml.Marshal(doc)
	if err != nil {
		return chart.Request{}, err
	}
	var req chart.Request
	dec := yaml.NewDecoder(strings.NewReader(string(norm)))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		return chart.Request{}, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}

// =============================================================================
// Request Flags
// =============================================================================

// requestFlags holds chart options given on the command line. Only flags the
// user set override the request file.
type requestFlags struct {
	file string

	chartType string
	x         string
	y         []string
	kinds     map[string]string
	axes      map[string]int
	title     string
	xName     string
	xUnit     string
	yName     string
	yUnit     string
	aspect    string
	tickDir   string

	width, height float64
	lineWidth     float64
	markerSize    float64
	xMin, xMax    float64
	yMin, yMax    float64
	majorGrid     bool
	minorGrid     bool
	minorTicks    bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.file, "request", "r", "", "chart request file (YAML or JSON)")
	fl.StringVarP(&f.chartType, "type", "t", "", "chart type: line, scatter, bar, composite, histogram, pie, box, violin")
	fl.StringVarP(&f.x, "x-axis", "x", "", "X column")
	fl.StringSliceVarP(&f.y, "y-axis", "y", nil, "Y columns (comma-separated)")
	fl.StringToStringVar(&f.kinds, "kind", nil, "series kind per column for composite charts (col=line|scatter|bar)")
	fl.StringToIntVar(&f.axes, "axis", nil, "axis index per column for composite charts (col=1)")
	fl.StringVar(&f.title, "title", "", "chart title")
	fl.StringVar(&f.xName, "x-name", "", "X axis name")
	fl.StringVar(&f.xUnit, "x-unit", "", "X axis unit")
	fl.StringVar(&f.yName, "y-name", "", "Y axis name")
	fl.StringVar(&f.yUnit, "y-unit", "", "Y axis unit")
	fl.StringVar(&f.aspect, "aspect", "", "aspect ratio: auto, equal or a number")
	fl.StringVar(&f.tickDir, "tick-direction", "", "tick direction: in, out or inout")
	fl.Float64Var(&f.width, "width", 0, "figure width in inches")
	fl.Float64Var(&f.height, "height", 0, "figure height in inches")
	fl.Float64Var(&f.lineWidth, "line-width", 0, "line width in points")
	fl.Float64Var(&f.markerSize, "marker-size", 0, "marker size in points")
	fl.Float64Var(&f.xMin, "x-min", 0, "lower X limit")
	fl.Float64Var(&f.xMax, "x-max", 0, "upper X limit")
	fl.Float64Var(&f.yMin, "y-min", 0, "lower Y limit")
	fl.Float64Var(&f.yMax, "y-max", 0, "upper Y limit")
	fl.BoolVar(&f.majorGrid, "grid", false, "draw the major grid")
	fl.BoolVar(&f.minorGrid, "minor-grid", false, "draw the minor grid")
	fl.BoolVar(&f.minorTicks, "minor-ticks", false, "draw minor ticks")
}

// request builds the chart request from the request file, if any, and the
// flags the user changed.
func (f *requestFlags) request(cmd *cobra.Command) (chart.Request, error) {
	var req chart.Request
	if f.file != "" {
		r, err := loadRequest(f.file)
		if err != nil {
			return req, err
		}
		req = r
	}

	changed := cmd.Flags().Changed
	setStr := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	setNum := func(name string, dst **float64, v float64) {
		if changed(name) {
			*dst = &v
		}
	}
	setBool := func(name string, dst **bool, v bool) {
		if changed(name) {
			*dst = &v
		}
	}

	setStr("type", &req.ChartType, f.chartType)
	setStr("x-axis", &req.XAxis, f.x)
	setStr("title", &req.Title, f.title)
	setStr("x-name", &req.XName, f.xName)
	setStr("x-unit", &req.XUnit, f.xUnit)
	setStr("y-name", &req.YName, f.yName)
	setStr("y-unit", &req.YUnit, f.yUnit)
	setStr("aspect", &req.Aspect, f.aspect)
	setStr("tick-direction", &req.TickDirection, f.tickDir)
	setNum("width", &req.FigWidth, f.width)
	setNum("height", &req.FigHeight, f.height)
	setNum("line-width", &req.LineWidth, f.lineWidth)
	setNum("marker-size", &req.MarkerSize, f.markerSize)
	setNum("x-min", &req.XMin, f.xMin)
	setNum("x-max", &req.XMax, f.xMax)
	setNum("y-min", &req.YMin, f.yMin)
	setNum("y-max", &req.YMax, f.yMax)
	setBool("grid", &req.MajorGrid, f.majorGrid)
	setBool("minor-grid", &req.MinorGrid, f.minorGrid)
	setBool("minor-ticks", &req.MinorTicks, f.minorTicks)

	if changed("y-axis") {
		req.YAxisList = mustJSON(f.y)
	}
	if changed("kind") {
		req.SeriesKinds = mustJSON(f.kinds)
	}
	if changed("axis") {
		req.Axes = mustJSON(f.axes)
	}

	if req.ChartType == "" {
		req.ChartType = string(chart.Line)
	}
	return req, nil
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
