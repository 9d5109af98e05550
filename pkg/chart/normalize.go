package chart

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	DefaultMarkerSize   = 8.0
	DefaultLineWidth    = 3.0
	DefaultBarLineWidth = 1.5
	DefaultWidth        = 10.0
	DefaultHeight       = 6.0
	DefaultTitleSize    = 24.0
	DefaultLabelSize    = 18.0
	DefaultTickSize     = 14.0
	DefaultTickDir      = TickIn
	DefaultMajorGrid    = true
	DefaultMinorGrid    = false
	DefaultMinorTicks   = false
)

// Limits on user-supplied sizes. Figures are rasterized, so an unbounded
// figure size would allocate an unbounded canvas.
const (
	MaxFigureSize = 40.0  // inches
	MaxFontSize   = 200.0 // points
	MaxStrokeSize = 100.0 // points
)

// =============================================================================
// Normalize
// =============================================================================

// Normalize validates req against ds and resolves it into a ChartSpec.
// Every failure is a validation error; no rendering resource is touched.
func Normalize(req Request, ds *dataset.Dataset) (*ChartSpec, error) {
	typ := Line
	if strings.TrimSpace(req.ChartType) != "" {
		t, err := ParseChartType(req.ChartType)
		if err != nil {
			return nil, err
		}
		typ = t
	}

	ys, err := parseYColumns(req.YAxisList, ds)
	if err != nil {
		return nil, err
	}

	x := ""
	if typ.UsesX() {
		x = strings.TrimSpace(req.XAxis)
		if x == "" {
			return nil, errors.New(errors.ErrCodeInvalidColumn, "x_axis is required for %s charts", typ)
		}
		if !ds.Has(x) {
			return nil, errors.Column(errors.ErrCodeInvalidColumn, x, "unknown column %q", x)
		}
	}

	if typ == Pie && len(ys) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			"pie charts take exactly one value column, got %d", len(ys))
	}

	spec := &ChartSpec{
		Type:     typ,
		XColumn:  x,
		YColumns: ys,
	}

	if spec.SeriesKinds, err = resolveKinds(typ, req.SeriesKinds, ys, ds); err != nil {
		return nil, err
	}
	if spec.Axes, err = resolveAxes(typ, req.Axes, ys, ds); err != nil {
		return nil, err
	}
	if spec.Labels, err = resolveLabels(req, spec); err != nil {
		return nil, err
	}
	if spec.Style, err = resolveStyle(req, typ); err != nil {
		return nil, err
	}
	if spec.Ranges, err = resolveRanges(req); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseYColumns(raw string, ds *dataset.Dataset) ([]string, error) {
	var ys []string
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &ys); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "y_axis_list must be a JSON array of column names")
		}
	}
	if len(ys) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidColumn, "select at least one Y column")
	}
	seen := make(map[string]bool, len(ys))
	for _, y := range ys {
		if !ds.Has(y) {
			return nil, errors.Column(errors.ErrCodeInvalidColumn, y, "unknown column %q", y)
		}
		if seen[y] {
			return nil, errors.Column(errors.ErrCodeInvalidColumn, y, "column %q selected twice", y)
		}
		seen[y] = true
	}
	return ys, nil
}

// resolveKinds fills the plot kind of every Y column. Entries for columns
// that exist but are not selected are ignored.
func resolveKinds(typ ChartType, raw string, ys []string, ds *dataset.Dataset) (map[string]PlotKind, error) {
	if k, ok := typ.fixedKind(); ok {
		out := make(map[string]PlotKind, len(ys))
		for _, y := range ys {
			out[y] = k
		}
		return out, nil
	}
	if typ != Composite {
		return nil, nil
	}

	given := map[string]string{}
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &given); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "series_kinds must be a JSON object of column to kind")
		}
	}
	for _, c := range sortedKeys(given) {
		if !ds.Has(c) {
			return nil, errors.Column(errors.ErrCodeInvalidColumn, c, "unknown column %q in series_kinds", c)
		}
	}

	out := make(map[string]PlotKind, len(ys))
	for _, y := range ys {
		out[y] = KindLine
		if s, ok := given[y]; ok && strings.TrimSpace(s) != "" {
			k, err := ParsePlotKind(s)
			if err != nil {
				return nil, err
			}
			out[y] = k
		}
	}
	return out, nil
}

// resolveAxes assigns every Y column an axis index. Only Composite charts
// read the request; the used indices must form 0..n with no gaps.
func resolveAxes(typ ChartType, raw string, ys []string, ds *dataset.Dataset) (map[string]int, error) {
	out := make(map[string]int, len(ys))
	for _, y := range ys {
		out[y] = 0
	}
	if typ != Composite || strings.TrimSpace(raw) == "" {
		return out, nil
	}

	given := map[string]int{}
	if err := json.Unmarshal([]byte(raw), &given); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "axes must be a JSON object of column to axis index")
	}
	for _, c := range sortedKeys(given) {
		i := given[c]
		if !ds.Has(c) {
			return nil, errors.Column(errors.ErrCodeInvalidColumn, c, "unknown column %q in axes", c)
		}
		if i < 0 {
			return nil, errors.Column(errors.ErrCodeInvalidAxis, c, "axis index for %q must be non-negative, got %d", c, i)
		}
		if _, selected := out[c]; selected {
			out[c] = i
		}
	}

	used := map[int]bool{}
	for _, i := range out {
		used[i] = true
	}
	for i := range len(used) {
		if !used[i] {
			return nil, errors.New(errors.ErrCodeInvalidAxis,
				"axis indices must be contiguous from 0; axis %d has no columns", i)
		}
	}
	return out, nil
}

func resolveLabels(req Request, spec *ChartSpec) (Labels, error) {
	l := Labels{
		Title: strings.TrimSpace(req.Title),
		X:     AxisLabel{Name: req.XName, Unit: req.XUnit},
		Y:     map[int]AxisLabel{},
	}

	used := map[int]bool{}
	for _, i := range spec.Axes {
		used[i] = true
	}

	if strings.TrimSpace(req.AxisLabels) != "" {
		var given map[string]AxisLabel
		if err := json.Unmarshal([]byte(req.AxisLabels), &given); err != nil {
			return Labels{}, errors.Wrap(errors.ErrCodeInvalidJSON, err, "axis_labels must be a JSON object keyed by axis index")
		}
		for _, k := range sortedKeys(given) {
			v := given[k]
			i, err := strconv.Atoi(k)
			if err != nil || i < 0 {
				return Labels{}, errors.New(errors.ErrCodeInvalidAxis, "axis_labels key %q is not an axis index", k)
			}
			if used[i] && !v.IsZero() {
				l.Y[i] = v
			}
		}
	}
	if y0 := (AxisLabel{Name: req.YName, Unit: req.YUnit}); !y0.IsZero() {
		l.Y[0] = y0
	}

	if l.Title == "" {
		l.Title = defaultTitle(spec)
	}
	return l, nil
}

func defaultTitle(s *ChartSpec) string {
	ys := strings.Join(s.YColumns, ", ")
	if s.Type.IsXY() {
		return ys + " vs " + s.XColumn
	}
	return s.Type.DisplayName() + ": " + ys
}

func resolveStyle(req Request, typ ChartType) (Style, error) {
	lineWidth := DefaultLineWidth
	if typ == Bar {
		lineWidth = DefaultBarLineWidth
	}

	st := Style{
		MarkerSize: orDefault(req.MarkerSize, DefaultMarkerSize),
		LineWidth:  orDefault(req.LineWidth, lineWidth),
		Width:      orDefault(req.FigWidth, DefaultWidth),
		Height:     orDefault(req.FigHeight, DefaultHeight),
		TitleSize:  orDefault(req.TitleSize, DefaultTitleSize),
		LabelSize:  orDefault(req.LabelSize, DefaultLabelSize),
		TickSize:   orDefault(req.TickSize, DefaultTickSize),
		MajorGrid:  orDefault(req.MajorGrid, DefaultMajorGrid),
		MinorGrid:  orDefault(req.MinorGrid, DefaultMinorGrid),
		MinorTicks: orDefault(req.MinorTicks, DefaultMinorTicks),
		XTicks:     TickInterval{Major: orDefault(req.XMajorTick, 0), Minor: orDefault(req.XMinorTick, 0)},
		YTicks:     TickInterval{Major: orDefault(req.YMajorTick, 0), Minor: orDefault(req.YMinorTick, 0)},
	}

	dir, err := parseTickDirection(req.TickDirection)
	if err != nil {
		return Style{}, err
	}
	st.TickDirection = dir

	checks := []struct {
		name  string
		value float64
		max   float64
	}{
		{"marker_size", st.MarkerSize, MaxStrokeSize},
		{"line_width", st.LineWidth, MaxStrokeSize},
		{"fig_width", st.Width, MaxFigureSize},
		{"fig_height", st.Height, MaxFigureSize},
		{"font_title", st.TitleSize, MaxFontSize},
		{"font_label", st.LabelSize, MaxFontSize},
		{"font_tick", st.TickSize, MaxFontSize},
	}
	for _, c := range checks {
		if !(c.value > 0) || c.value > c.max {
			return Style{}, errors.New(errors.ErrCodeInvalidStyle, "%s must be in (0, %g], got %g", c.name, c.max, c.value)
		}
	}

	intervals := []struct {
		name  string
		value float64
	}{
		{"x_major_tick", st.XTicks.Major},
		{"x_minor_tick", st.XTicks.Minor},
		{"y_major_tick", st.YTicks.Major},
		{"y_minor_tick", st.YTicks.Minor},
	}
	for _, c := range intervals {
		if c.value < 0 || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return Style{}, errors.New(errors.ErrCodeInvalidStyle, "%s must be positive, got %g", c.name, c.value)
		}
	}
	return st, nil
}

func resolveRanges(req Request) (Ranges, error) {
	x, err := resolveRange("x", req.XMin, req.XMax)
	if err != nil {
		return Ranges{}, err
	}
	y, err := resolveRange("y", req.YMin, req.YMax)
	if err != nil {
		return Ranges{}, err
	}
	aspect, err := ParseAspect(req.Aspect)
	if err != nil {
		return Ranges{}, err
	}
	return Ranges{X: x, Y: y, Aspect: aspect}, nil
}

// resolveRange keeps each bound independently; a lone min or max is a
// half-open range.
func resolveRange(axis string, lo, hi *float64) (Range, error) {
	var r Range
	for _, b := range []*float64{lo, hi} {
		if b != nil && (math.IsNaN(*b) || math.IsInf(*b, 0)) {
			return Range{}, errors.New(errors.ErrCodeInvalidRange, "%s bounds must be finite", axis)
		}
	}
	if lo != nil {
		r.Min = ptr(*lo)
	}
	if hi != nil {
		r.Max = ptr(*hi)
	}
	if r.IsSet() && *r.Min >= *r.Max {
		return Range{}, errors.New(errors.ErrCodeInvalidRange, "%s_min (%g) must be less than %s_max (%g)", axis, *r.Min, axis, *r.Max)
	}
	return r, nil
}

func orDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// sortedKeys returns map keys in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
