package chart

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/errors"
)

// PlanOption adjusts a plan while it is built.
type PlanOption func(*Plan)

// WithDPI sets the raster resolution.
func WithDPI(dpi float64) PlanOption {
	return func(p *Plan) {
		if dpi > 0 {
			p.Figure.DPI = dpi
		}
	}
}

// BuildPlan resolves spec against ds into the ordered draw operations.
// Data problems found here (missing column, text where numbers are needed,
// nothing left after dropping missing values) are render errors.
func BuildPlan(spec *ChartSpec, ds *dataset.Dataset, opts ...PlanOption) (*Plan, error) {
	st := spec.Style
	p := &Plan{
		Type: spec.Type,
		Source: Source{
			Name:        ds.Name,
			Format:      ds.Format,
			Encoding:    ds.Encoding,
			Derivations: ds.Derivations,
		},
		Figure:        Figure{Width: st.Width, Height: st.Height, DPI: DefaultDPI},
		Fonts:         Fonts{Title: st.TitleSize, Label: st.LabelSize, Tick: st.TickSize},
		Title:         spec.Labels.Title,
		XColumn:       spec.XColumn,
		TickDirection: st.TickDirection,
	}
	for _, opt := range opts {
		opt(p)
	}

	var err error
	switch spec.Type {
	case Line, Scatter, Bar, Composite:
		err = planXY(p, spec, ds)
	case Histogram:
		err = planHistogram(p, spec, ds)
	case Pie:
		err = planPie(p, spec, ds)
	case BoxPlot, ViolinPlot:
		err = planDistribution(p, spec, ds)
	default:
		err = errors.New(errors.ErrCodeInvalidChartType, "unknown chart type %q", spec.Type)
	}
	if err != nil {
		return nil, err
	}

	applyCosmetics(p, spec)
	return p, nil
}

// planXY handles Line, Scatter, Bar and Composite charts. A non-numeric X
// column moves every series onto row slots labeled with the X values.
func planXY(p *Plan, spec *ChartSpec, ds *dataset.Dataset) error {
	xcol, ok := ds.Column(spec.XColumn)
	if !ok {
		return errors.Render(errors.ErrCodeRenderMissingColumn, string(spec.Type), spec.XColumn,
			"column %q not found", spec.XColumn)
	}

	var xs []float64
	slot := 1.0
	if xcol.IsNumeric() {
		p.XMode = XNumeric
		xs = xcol.Floats()
		slot = minPositiveGap(xs)
	} else {
		p.XMode = XCategorical
		xs = make([]float64, xcol.Len())
		for i, label := range xcol.Strings() {
			xs[i] = float64(i)
			p.XTicks = append(p.XTicks, Tick{Value: float64(i), Label: label})
		}
	}

	for _, idx := range spec.AxisIndices() {
		p.Axes = append(p.Axes, Axis{Index: idx, Label: spec.YLabel(idx), Offset: spineOffset(idx)})
	}

	nbars := 0
	for _, y := range spec.YColumns {
		if spec.Kind(y) == KindBar {
			nbars++
		}
	}
	width, offsets := barGeometry(slot, nbars)

	st := spec.Style
	bar := 0
	for i, y := range spec.YColumns {
		kind := spec.Kind(y)
		ys, err := numericSeries(ds, y, string(kind), xs)
		if err != nil {
			return err
		}
		s := Series{Column: y, Axis: spec.Axes[y], Color: i}
		switch kind {
		case KindScatter:
			p.Ops = append(p.Ops, ScatterOp{Series: s, X: xs, Y: ys, Size: st.MarkerSize * ScatterScale, Alpha: ScatterAlpha})
		case KindBar:
			p.Ops = append(p.Ops, BarOp{Series: s, X: xs, Y: ys, Width: width, Offset: offsets[bar]})
			bar++
		default:
			p.Ops = append(p.Ops, LineOp{Series: s, X: xs, Y: ys, LineWidth: st.LineWidth, MarkerSize: st.MarkerSize})
		}
	}
	return nil
}

// spineOffset is the outward offset of a twin axis spine: none for axes 0
// and 1, then one step per additional axis.
func spineOffset(idx int) float64 {
	if idx < 2 {
		return 0
	}
	return TwinSpineOffset * float64(idx-1)
}

func planHistogram(p *Plan, spec *ChartSpec, ds *dataset.Dataset) error {
	data := make([][]float64, len(spec.YColumns))
	for i, y := range spec.YColumns {
		vals, err := numericValues(ds, y, "histogram")
		if err != nil {
			return err
		}
		data[i] = vals
	}

	edges, counts := histogram(data, HistogramBins)
	width, offsets := histogramBars(edges[1]-edges[0], len(data))

	p.XMode = XNumeric
	p.Axes = []Axis{{Index: 0, Label: spec.YLabel(0)}}
	p.Ops = []Op{HistogramOp{
		Columns: spec.YColumns,
		Data:    data,
		Edges:   edges,
		Counts:  counts,
		Width:   width,
		Offsets: offsets,
		Bins:    HistogramBins,
		Alpha:   HistogramAlpha,
	}}
	return nil
}

func planPie(p *Plan, spec *ChartSpec, ds *dataset.Dataset) error {
	valueName := spec.YColumns[0]
	labels, ok := ds.Column(spec.XColumn)
	if !ok {
		return errors.Render(errors.ErrCodeRenderMissingColumn, "pie", spec.XColumn, "column %q not found", spec.XColumn)
	}
	col, ok := ds.Column(valueName)
	if !ok {
		return errors.Render(errors.ErrCodeRenderMissingColumn, "pie", valueName, "column %q not found", valueName)
	}

	op := PieOp{
		Column:      valueName,
		LabelColumn: spec.XColumn,
		StartAngle:  PieStartAngle,
		Clockwise:   true,
		Format:      PiePercentFmt,
	}
	names := labels.Strings()
	var sum float64
	for i, v := range col.Values {
		switch v.Kind {
		case dataset.Text:
			return errors.Render(errors.ErrCodeRenderNonNumeric, "pie", valueName,
				"column %q is not numeric", valueName)
		case dataset.Missing:
			op.Dropped++
			continue
		}
		if v.Num < 0 || math.IsInf(v.Num, 0) {
			return errors.Render(errors.ErrCodeRenderInvalidValue, "pie", valueName,
				"pie values must be finite and non-negative, got %v in row %d", v.Num, i)
		}
		op.Values = append(op.Values, v.Num)
		op.Labels = append(op.Labels, names[i])
		sum += v.Num
	}
	if len(op.Values) == 0 {
		return errors.Render(errors.ErrCodeRenderEmptySeries, "pie", valueName,
			"column %q has no values", valueName)
	}
	if sum == 0 {
		return errors.Render(errors.ErrCodeRenderInvalidValue, "pie", valueName,
			"pie values of %q sum to zero", valueName)
	}

	p.XMode = XNone
	p.Axes = []Axis{{Index: 0}}
	p.Ops = []Op{op}
	return nil
}

// planDistribution handles BoxPlot and ViolinPlot: one item per column at
// positions 1..k, each column's missing values dropped on its own.
func planDistribution(p *Plan, spec *ChartSpec, ds *dataset.Dataset) error {
	name := "box"
	if spec.Type == ViolinPlot {
		name = "violin"
	}

	k := len(spec.YColumns)
	data := make([][]float64, k)
	positions := make([]float64, k)
	for i, y := range spec.YColumns {
		vals, err := numericValues(ds, y, name)
		if err != nil {
			return err
		}
		data[i] = vals
		positions[i] = float64(i + 1)
		p.XTicks = append(p.XTicks, Tick{Value: positions[i], Label: y})
	}

	p.XMode = XPositions
	p.Axes = []Axis{{Index: 0, Label: spec.YLabel(0)}}

	if spec.Type == BoxPlot {
		p.Ops = []Op{BoxOp{Columns: spec.YColumns, Data: data, Positions: positions, Width: boxWidth(k)}}
		return nil
	}

	op := ViolinOp{Columns: spec.YColumns, Data: data, Positions: positions, Width: ViolinWidth}
	for _, d := range data {
		op.Means = append(op.Means, stat.Mean(d, nil))
		op.Bodies = append(op.Bodies, kde(d, ViolinPoints, ViolinWidth))
	}
	p.Ops = []Op{op}
	return nil
}

// numericSeries returns column name as floats aligned with xs. It fails when
// the column holds text or when no row has both a finite X and a finite Y.
func numericSeries(ds *dataset.Dataset, name, op string, xs []float64) ([]float64, error) {
	col, ok := ds.Column(name)
	if !ok {
		return nil, errors.Render(errors.ErrCodeRenderMissingColumn, op, name, "column %q not found", name)
	}
	if _, numeric := col.Numbers(); !numeric {
		return nil, errors.Render(errors.ErrCodeRenderNonNumeric, op, name, "column %q is not numeric", name)
	}
	ys := col.Floats()
	for i, y := range ys {
		if finite(y) && finite(xs[i]) {
			return ys, nil
		}
	}
	return nil, errors.Render(errors.ErrCodeRenderEmptySeries, op, name,
		"column %q has no plottable values", name)
}

// numericValues returns the non-missing values of a numeric column.
func numericValues(ds *dataset.Dataset, name, op string) ([]float64, error) {
	col, ok := ds.Column(name)
	if !ok {
		return nil, errors.Render(errors.ErrCodeRenderMissingColumn, op, name, "column %q not found", name)
	}
	vals, numeric := col.Numbers()
	if !numeric {
		return nil, errors.Render(errors.ErrCodeRenderNonNumeric, op, name, "column %q is not numeric", name)
	}
	if len(vals) == 0 {
		return nil, errors.Render(errors.ErrCodeRenderEmptySeries, op, name,
			"column %q has no values after dropping missing ones", name)
	}
	return vals, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// applyCosmetics resolves labels, legend, grid, ticks, ranges and aspect,
// gating each by chart type.
func applyCosmetics(p *Plan, spec *ChartSpec) {
	st := spec.Style
	typ := spec.Type

	switch {
	case typ == Pie:
		p.XLabel = ""
	case typ.IsXY():
		p.XLabel = spec.XLabel()
	default:
		p.XLabel = spec.Labels.X.Text("")
	}

	switch typ {
	case Pie:
		p.Legend = false
	case Histogram:
		p.Legend = true
	default:
		p.Legend = p.SeriesCount() > 1
	}

	if typ == Pie {
		return
	}

	if typ != BoxPlot && typ != ViolinPlot {
		p.Grid = Grid{Major: st.MajorGrid, Minor: st.MinorGrid && st.MinorTicks}
	}
	p.MinorTicks = st.MinorTicks

	p.YInterval = st.YTicks
	if len(p.XTicks) == 0 {
		p.XInterval = st.XTicks
	}
	if !p.MinorTicks {
		p.XInterval.Minor = 0
		p.YInterval.Minor = 0
	}

	if typ == Line || typ == Scatter || (typ == Composite && p.XMode == XNumeric) {
		p.XRange = spec.Ranges.X
	}
	p.YRange = spec.Ranges.Y

	p.Aspect = Aspect{Mode: AspectAuto}
	if typ == Line || typ == Scatter || typ == Composite {
		p.Aspect = spec.Ranges.Aspect
	}
}
