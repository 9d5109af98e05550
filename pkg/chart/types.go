package chart

import (
	"strconv"
	"strings"

	"github.com/matzehuels/graphypad/pkg/errors"
)

// ChartType selects the drawing rules for a chart.
type ChartType string

const (
	Line       ChartType = "line"
	Scatter    ChartType = "scatter"
	Bar        ChartType = "bar"
	Composite  ChartType = "composite"
	Histogram  ChartType = "histogram"
	Pie        ChartType = "pie"
	BoxPlot    ChartType = "box"
	ViolinPlot ChartType = "violin"
)

// ChartTypes lists every chart type in menu order.
var ChartTypes = []ChartType{Line, Scatter, Bar, Composite, Histogram, Pie, BoxPlot, ViolinPlot}

var chartTypeAliases = map[string]ChartType{
	"hist":       Histogram,
	"boxplot":    BoxPlot,
	"violinplot": ViolinPlot,
	"combo":      Composite,
}

// ParseChartType parses a chart type name. Matching is case-insensitive and
// accepts a few common aliases such as "hist" and "boxplot".
func ParseChartType(s string) (ChartType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, t := range ChartTypes {
		if string(t) == key {
			return t, nil
		}
	}
	if t, ok := chartTypeAliases[key]; ok {
		return t, nil
	}
	return "", errors.New(errors.ErrCodeInvalidChartType, "unknown chart type %q", s)
}

// UsesX reports whether the chart type plots against an X column.
func (t ChartType) UsesX() bool {
	switch t {
	case Line, Scatter, Bar, Composite, Pie:
		return true
	}
	return false
}

// IsXY reports whether the chart draws series against a continuous X axis.
func (t ChartType) IsXY() bool {
	switch t {
	case Line, Scatter, Bar, Composite:
		return true
	}
	return false
}

// DisplayName returns a human-readable name such as "Box Plot".
func (t ChartType) DisplayName() string {
	switch t {
	case BoxPlot:
		return "Box Plot"
	case ViolinPlot:
		return "Violin Plot"
	case "":
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// PlotKind is how one series of a Line, Scatter, Bar or Composite chart is drawn.
type PlotKind string

const (
	KindLine    PlotKind = "line"
	KindScatter PlotKind = "scatter"
	KindBar     PlotKind = "bar"
)

// ParsePlotKind parses a per-series plot kind.
func ParsePlotKind(s string) (PlotKind, error) {
	switch PlotKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindLine:
		return KindLine, nil
	case KindScatter:
		return KindScatter, nil
	case KindBar:
		return KindBar, nil
	}
	return "", errors.New(errors.ErrCodeInvalidRequest, "unknown series kind %q (want line, scatter or bar)", s)
}

// fixedKind returns the plot kind every series of a single-type chart uses.
func (t ChartType) fixedKind() (PlotKind, bool) {
	switch t {
	case Line:
		return KindLine, true
	case Scatter:
		return KindScatter, true
	case Bar:
		return KindBar, true
	}
	return "", false
}

// AxisLabel is the free-text name and unit configured for one axis.
type AxisLabel struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// IsZero reports whether neither name nor unit is set.
func (a AxisLabel) IsZero() bool { return a.Name == "" && a.Unit == "" }

// Text renders the label, falling back to def when nothing is configured.
func (a AxisLabel) Text(def string) string { return FormatLabel(a.Name, a.Unit, def) }

// FormatLabel builds axis label text from a name and a unit:
//
//	FormatLabel("", "", "v")      // "v"
//	FormatLabel("Speed", "m/s", "") // "Speed (m/s)"
//	FormatLabel("Speed", "", "")  // "Speed"
//	FormatLabel("", "m/s", "")    // "(m/s)"
func FormatLabel(name, unit, def string) string {
	switch {
	case name != "" && unit != "":
		return name + " (" + unit + ")"
	case name != "":
		return name
	case unit != "":
		return "(" + unit + ")"
	default:
		return def
	}
}

// Labels holds the title and the per-axis name/unit pairs. Label text is
// derived on demand with FormatLabel and never stored.
type Labels struct {
	Title string
	X     AxisLabel
	// Y is keyed by axis index. Only configured axes have entries.
	Y map[int]AxisLabel
}

// TickDirection is where tick marks point relative to the plot area.
type TickDirection string

const (
	TickIn    TickDirection = "in"
	TickOut   TickDirection = "out"
	TickInOut TickDirection = "inout"
)

func parseTickDirection(s string) (TickDirection, error) {
	switch TickDirection(strings.ToLower(strings.TrimSpace(s))) {
	case "", TickIn:
		return TickIn, nil
	case TickOut:
		return TickOut, nil
	case TickInOut:
		return TickInOut, nil
	}
	return "", errors.New(errors.ErrCodeInvalidStyle, "unknown tick direction %q (want in, out or inout)", s)
}

// TickInterval overrides automatic tick spacing. Zero means automatic.
type TickInterval struct {
	Major float64
	Minor float64
}

// Style holds sizes and cosmetic switches. Sizes are in points except
// Width and Height, which are in inches.
type Style struct {
	MarkerSize float64
	LineWidth  float64
	Width      float64
	Height     float64

	TitleSize float64
	LabelSize float64
	TickSize  float64

	TickDirection TickDirection
	MajorGrid     bool
	MinorGrid     bool
	MinorTicks    bool

	XTicks TickInterval
	YTicks TickInterval
}

// Range is an optional lower and upper bound. Either end may be unset.
type Range struct {
	Min *float64
	Max *float64
}

// IsSet reports whether both bounds are present.
func (r Range) IsSet() bool { return r.Min != nil && r.Max != nil }

// IsZero reports whether neither bound is present.
func (r Range) IsZero() bool { return r.Min == nil && r.Max == nil }

// AspectMode selects how data units map to screen units.
type AspectMode string

const (
	AspectAuto  AspectMode = "auto"
	AspectEqual AspectMode = "equal"
	AspectRatio AspectMode = "ratio"
)

// Aspect is the aspect-ratio setting. Ratio is used only in AspectRatio mode
// and is the screen height of one Y unit divided by that of one X unit.
type Aspect struct {
	Mode  AspectMode
	Ratio float64
}

// String renders the aspect in request form: "auto", "equal" or the ratio.
func (a Aspect) String() string {
	switch a.Mode {
	case AspectEqual:
		return string(AspectEqual)
	case AspectRatio:
		return strconv.FormatFloat(a.Ratio, 'g', -1, 64)
	default:
		return string(AspectAuto)
	}
}

// ParseAspect parses "auto", "equal" or a positive number.
func ParseAspect(s string) (Aspect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(AspectAuto):
		return Aspect{Mode: AspectAuto}, nil
	case string(AspectEqual):
		return Aspect{Mode: AspectEqual}, nil
	}
	r, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !(r > 0) || r > 1e6 {
		return Aspect{}, errors.New(errors.ErrCodeInvalidRange, "aspect must be auto, equal or a positive number, got %q", s)
	}
	return Aspect{Mode: AspectRatio, Ratio: r}, nil
}

// Ranges holds the primary-axis bounds and the aspect setting.
type Ranges struct {
	X      Range
	Y      Range
	Aspect Aspect
}

// ChartSpec is the fully resolved description of one chart. It is built by
// Normalize and must not be modified afterwards.
type ChartSpec struct {
	Type ChartType
	// XColumn is empty for Histogram, BoxPlot and ViolinPlot.
	XColumn  string
	YColumns []string
	// SeriesKinds maps each Y column to its plot kind for Line, Scatter,
	// Bar and Composite charts; it is nil for the other types.
	SeriesKinds map[string]PlotKind
	// Axes maps each Y column to its axis index. Only Composite charts use
	// indices other than 0.
	Axes   map[string]int
	Labels Labels
	Style  Style
	Ranges Ranges
}

// AxisIndices returns the distinct axis indices in use, ascending.
func (s *ChartSpec) AxisIndices() []int {
	hi := 0
	for _, i := range s.Axes {
		hi = max(hi, i)
	}
	used := make([]bool, hi+1)
	for _, i := range s.Axes {
		used[i] = true
	}
	var out []int
	for i, u := range used {
		if u {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		out = []int{0}
	}
	return out
}

// ColumnsOnAxis returns the Y columns assigned to axis, in Y order.
func (s *ChartSpec) ColumnsOnAxis(axis int) []string {
	var out []string
	for _, c := range s.YColumns {
		if s.Axes[c] == axis {
			out = append(out, c)
		}
	}
	return out
}

// XLabel returns the X axis label text. It falls back to the X column name.
func (s *ChartSpec) XLabel() string {
	return s.Labels.X.Text(s.XColumn)
}

// YLabel returns the label text for an axis. When exactly one column is on
// that axis, its name is the fallback; otherwise the fallback is empty.
func (s *ChartSpec) YLabel(axis int) string {
	def := ""
	if cols := s.ColumnsOnAxis(axis); len(cols) == 1 {
		def = cols[0]
	}
	return s.Labels.Y[axis].Text(def)
}

// Kind returns the plot kind of a Y column.
func (s *ChartSpec) Kind(column string) PlotKind {
	if k, ok := s.SeriesKinds[column]; ok {
		return k
	}
	if k, ok := s.Type.fixedKind(); ok {
		return k
	}
	return KindLine
}
