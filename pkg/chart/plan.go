package chart

import (
	"fmt"

	"github.com/matzehuels/graphypad/pkg/dataset"
)

// DefaultDPI is the raster resolution of rendered charts.
const DefaultDPI = 100.0

// XMode describes how the X axis of a plan is laid out.
type XMode int

const (
	// XNone means the chart has no data-driven X axis (Pie).
	XNone XMode = iota
	// XNumeric plots against the X column's values.
	XNumeric
	// XCategorical plots against row slots 0..n-1 labeled with the X values.
	XCategorical
	// XPositions places one item per Y column at 1..k (Box, Violin).
	XPositions
)

// Source describes where the plotted data came from.
type Source struct {
	Name        string
	Format      string
	Encoding    string
	Derivations []dataset.Derivation
}

// Figure is the output size in inches and the raster resolution.
type Figure struct {
	Width  float64
	Height float64
	DPI    float64
}

// Fonts are text sizes in points.
type Fonts struct {
	Title float64
	Label float64
	Tick  float64
}

// Tick is a fixed tick position with its label.
type Tick struct {
	Value float64
	Label string
}

// Axis is one Y axis. Axis 0 is the native left axis; every other index is
// a right-hand twin sharing X.
type Axis struct {
	Index int
	Label string
	// Offset moves the spine outward by this fraction of the plot width.
	Offset float64
}

// Twin reports whether the axis is a right-hand twin.
func (a Axis) Twin() bool { return a.Index > 0 }

// Var is the variable name the axis has in generated code.
func (a Axis) Var() string {
	if a.Index == 0 {
		return "ax"
	}
	return fmt.Sprintf("ax%d", a.Index)
}

// Series identifies one drawn data series.
type Series struct {
	Column string
	Axis   int
	// Color indexes the ten-color category palette.
	Color int
}

// Op is one resolved draw operation.
type Op interface {
	// Name is the operation name used in errors and logs.
	Name() string
}

// LineOp draws a line with circle markers. NaN in X or Y breaks the line.
type LineOp struct {
	Series
	X, Y       []float64
	LineWidth  float64
	MarkerSize float64
}

// ScatterOp draws unconnected markers. Size is the marker area in points².
type ScatterOp struct {
	Series
	X, Y  []float64
	Size  float64
	Alpha float64
}

// BarOp draws one bar per finite Y at X+Offset with the given width, all in
// data units.
type BarOp struct {
	Series
	X, Y   []float64
	Width  float64
	Offset float64
}

// HistogramOp draws side-by-side bars of counts over shared bins.
type HistogramOp struct {
	Columns []string
	// Data holds each column with missing values dropped.
	Data [][]float64
	// Edges are the Bins+1 shared bin edges.
	Edges  []float64
	Counts [][]float64
	// Width is each series' bar width; Offsets are bar centers measured
	// from the left edge of the bin.
	Width   float64
	Offsets []float64
	Bins    int
	Alpha   float64
}

// PieOp draws one wedge per row, starting at StartAngle degrees and going
// clockwise.
type PieOp struct {
	Column      string
	LabelColumn string
	Labels      []string
	Values      []float64
	// Dropped counts rows left out because the value was missing.
	Dropped    int
	StartAngle float64
	Clockwise  bool
	// Format is the printf verb for percentage labels.
	Format string
}

// BoxOp draws one box per column at Positions.
type BoxOp struct {
	Columns   []string
	Data      [][]float64
	Positions []float64
	Width     float64
}

// ViolinOp draws one violin per column at Positions with a mean marker.
type ViolinOp struct {
	Columns   []string
	Data      [][]float64
	Positions []float64
	Width     float64
	Means     []float64
	Bodies    []Violin
}

// Violin is the outline of one violin: Density is the half width in data
// units at each coordinate.
type Violin struct {
	Coords  []float64
	Density []float64
	Min     float64
	Max     float64
}

func (LineOp) Name() string      { return "line" }
func (ScatterOp) Name() string   { return "scatter" }
func (BarOp) Name() string       { return "bar" }
func (HistogramOp) Name() string { return "histogram" }
func (PieOp) Name() string       { return "pie" }
func (BoxOp) Name() string       { return "box" }
func (ViolinOp) Name() string    { return "violin" }

// Grid says which grid lines are drawn on the primary axis.
type Grid struct {
	Major bool
	Minor bool
}

// Plan is the ordered list of draw operations for one chart together with
// everything needed to lay it out. The renderer draws a Plan and the code
// emitter prints it, so both always describe the same chart.
type Plan struct {
	Type   ChartType
	Source Source
	Figure Figure
	Fonts  Fonts

	Title   string
	XLabel  string
	XColumn string
	XMode   XMode
	// XTicks are fixed X tick positions for categorical and positional axes.
	XTicks []Tick

	// Axes are in creation order: 0 first, then twins by index.
	Axes []Axis
	Ops  []Op

	Legend        bool
	Grid          Grid
	TickDirection TickDirection
	// MinorTicks turns minor ticks on; minor intervals and the minor grid
	// only take effect when it is set.
	MinorTicks bool
	XInterval  TickInterval
	YInterval  TickInterval

	// XRange and YRange are already gated by chart type.
	XRange Range
	YRange Range
	Aspect Aspect
}

// SeriesCount returns the number of drawn series.
func (p *Plan) SeriesCount() int {
	n := 0
	for _, op := range p.Ops {
		switch o := op.(type) {
		case HistogramOp:
			n += len(o.Columns)
		case BoxOp:
			n += len(o.Columns)
		case ViolinOp:
			n += len(o.Columns)
		default:
			n++
		}
	}
	return n
}

// Axis returns the axis with the given index.
func (p *Plan) Axis(index int) (Axis, bool) {
	for _, a := range p.Axes {
		if a.Index == index {
			return a, true
		}
	}
	return Axis{}, false
}

// OpsOnAxis returns the operations drawn on an axis, in order. Operations
// without a series belong to axis 0.
func (p *Plan) OpsOnAxis(index int) []Op {
	var out []Op
	for _, op := range p.Ops {
		axis := 0
		if s, ok := SeriesOf(op); ok {
			axis = s.Axis
		}
		if axis == index {
			out = append(out, op)
		}
	}
	return out
}

// UsesSlots reports whether series are drawn against row slots.
func (p *Plan) UsesSlots() bool { return p.XMode == XCategorical }

// SeriesOf returns the series of a Line, Scatter or Bar operation.
func SeriesOf(op Op) (Series, bool) {
	switch o := op.(type) {
	case LineOp:
		return o.Series, true
	case ScatterOp:
		return o.Series, true
	case BarOp:
		return o.Series, true
	}
	return Series{}, false
}
