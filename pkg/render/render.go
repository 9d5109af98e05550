package render

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/graphypad/pkg/chart"
	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/errors"
)

// outerPad is the blank border around the figure.
const outerPad = vg.Length(8)

var (
	majorGridStyle = draw.LineStyle{
		Color:  withAlpha(gridColor, 0.3),
		Width:  vg.Points(0.8),
		Dashes: []vg.Length{vg.Points(3.7), vg.Points(1.6)},
	}
	minorGridStyle = draw.LineStyle{
		Color:  withAlpha(gridColor, 0.15),
		Width:  vg.Points(0.6),
		Dashes: []vg.Length{vg.Points(1), vg.Points(1.65)},
	}
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithBackground sets the figure background color (default white).
func WithBackground(c color.Color) Option {
	return func(r *Renderer) { r.background = c }
}

// WithDPI sets the raster resolution used by RenderSpec.
func WithDPI(dpi float64) Option {
	return func(r *Renderer) { r.dpi = dpi }
}

// Renderer draws chart plans as PNG images. It holds no per-request state:
// every call owns its canvas, so one Renderer serves concurrent requests.
type Renderer struct {
	background color.Color
	dpi        float64
}

// New returns a Renderer with the given options applied.
func New(opts ...Option) *Renderer {
	r := &Renderer{background: color.White, dpi: chart.DefaultDPI}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderSpec plans spec against ds and renders the result.
func (r *Renderer) RenderSpec(spec *chart.ChartSpec, ds *dataset.Dataset) ([]byte, error) {
	plan, err := chart.BuildPlan(spec, ds, chart.WithDPI(r.dpi))
	if err != nil {
		return nil, err
	}
	return r.Render(plan)
}

// Render draws plan and encodes it as PNG. Identical plans produce
// identical bytes. On failure no image is returned.
func (r *Renderer) Render(plan *chart.Plan) (img []byte, err error) {
	s, err := acquire(plan.Figure, r.background)
	if err != nil {
		return nil, err
	}
	defer s.release()
	defer func() {
		if v := recover(); v != nil {
			img = nil
			err = errors.Render(errors.ErrCodeRenderCanvas, string(plan.Type), "", "drawing failed: %v", v)
		}
	}()

	if err := drawPlan(s.canvas(), plan); err != nil {
		return nil, err
	}
	return s.encode()
}

func drawPlan(c draw.Canvas, plan *chart.Plan) error {
	c = draw.Crop(c, outerPad, -outerPad, outerPad, -outerPad)

	p := plot.New()
	p.Title.Text = plan.Title
	p.Title.Padding = vg.Points(8)
	styleText(&p.Title.TextStyle, plan.Fonts.Title)
	styleAxis(&p.X, plan.Fonts, plan.TickDirection)
	styleAxis(&p.Y, plan.Fonts, plan.TickDirection)

	if plan.Type == chart.Pie {
		return drawPie(c, p, plan)
	}

	if plan.Grid.Major {
		g := plotter.NewGrid()
		g.Vertical = majorGridStyle
		g.Horizontal = majorGridStyle
		p.Add(g)
	}
	if plan.Grid.Minor {
		p.Add(minorGrid{style: minorGridStyle})
	}

	twins := make(map[int]*twinAxis)
	var order []*twinAxis
	for _, a := range plan.Axes {
		if a.Twin() {
			t := &twinAxis{axis: a}
			twins[a.Index] = t
			order = append(order, t)
		}
	}

	entries := make([][]legendEntry, len(plan.Ops))
	for i, op := range plan.Ops {
		layer, legend, err := plottersFor(op)
		if err != nil {
			return err
		}
		entries[i] = legend
		axis := 0
		if s, ok := chart.SeriesOf(op); ok {
			axis = s.Axis
		}
		if t, ok := twins[axis]; ok {
			t.plotters = append(t.plotters, layer...)
		} else {
			p.Add(layer...)
		}
	}

	p.X.Min, p.X.Max = xLimits(plan)
	p.Y.Min, p.Y.Max = yLimits(plan, 0)
	p.X.Tick.Marker = xTicker(plan)
	p.Y.Tick.Marker = yTicker(plan.YInterval, plan.MinorTicks)
	p.X.Label.Text = plan.XLabel
	if a, ok := plan.Axis(0); ok {
		p.Y.Label.Text = a.Label
	}

	for _, t := range order {
		t.y = p.Y
		t.y.Min, t.y.Max = yLimits(plan, t.axis.Index)
		t.y.Label.Text = t.axis.Label
		t.y.Tick.Marker = majorOnly{Ticker: plot.DefaultTicks{}, minor: plan.MinorTicks}
		p.Add(t)
	}

	if plan.TickDirection != chart.TickOut {
		p.Add(innerTicks{length: tickLength})
	}
	p.Add(frame{style: p.X.LineStyle})

	if plan.Legend {
		p.Legend.Top = true
		p.Legend.XOffs = -vg.Points(6)
		p.Legend.YOffs = -vg.Points(6)
		styleText(&p.Legend.TextStyle, plan.Fonts.Tick)
		// Entries follow axis creation order, like a combined legend over
		// twin axes.
		for _, a := range plan.Axes {
			for i, op := range plan.Ops {
				axis := 0
				if s, ok := chart.SeriesOf(op); ok {
					axis = s.Axis
				}
				if axis != a.Index {
					continue
				}
				for _, e := range entries[i] {
					p.Legend.Add(e.name, e.thumb)
				}
			}
		}
	}

	area := c
	if margin := twinMargin(p, c, order, plan.TickDirection); margin > 0 {
		area = draw.Crop(c, 0, -margin, 0, 0)
	}
	area = fitAspect(p, area, plan.Aspect)

	p.Draw(area)
	dc := p.DataCanvas(area)
	for _, t := range order {
		t.drawSpine(dc, plan.TickDirection)
	}
	return nil
}

func drawPie(c draw.Canvas, p *plot.Plot, plan *chart.Plan) error {
	if len(plan.Ops) != 1 {
		return errors.Render(errors.ErrCodeRenderEmptySeries, "pie", "", "pie plan has %d operations", len(plan.Ops))
	}
	op, ok := plan.Ops[0].(chart.PieOp)
	if !ok {
		return errors.Render(errors.ErrCodeRenderInvalidValue, "pie", "", "unexpected %s operation", plan.Ops[0].Name())
	}

	p.HideAxes()
	p.X.Min, p.X.Max = -1, 1
	p.Y.Min, p.Y.Max = -1, 1

	label := p.Title.TextStyle
	styleText(&label, plan.Fonts.Tick)
	label.Rotation = 0
	p.Add(&pieChart{op: op, text: label})
	p.Draw(c)
	return nil
}

type legendEntry struct {
	name  string
	thumb plot.Thumbnailer
}

// plottersFor builds the plotters that draw one operation and the legend
// entries it contributes.
func plottersFor(op chart.Op) ([]plot.Plotter, []legendEntry, error) {
	switch o := op.(type) {
	case chart.LineOp:
		l := newLineSeries(o)
		return []plot.Plotter{l}, []legendEntry{{o.Column, l}}, nil
	case chart.ScatterOp:
		s := newScatterSeries(o)
		return []plot.Plotter{s}, []legendEntry{{o.Column, s}}, nil
	case chart.BarOp:
		b := newBarSeries(o)
		return []plot.Plotter{b}, []legendEntry{{o.Column, b}}, nil
	case chart.HistogramOp:
		var layer []plot.Plotter
		var legend []legendEntry
		for i, b := range newHistogramBars(o) {
			layer = append(layer, b)
			legend = append(legend, legendEntry{o.Columns[i], b})
		}
		return layer, legend, nil
	case chart.BoxOp:
		items, err := newBoxItems(o)
		if err != nil {
			return nil, nil, errors.Render(errors.ErrCodeRenderInvalidValue, "box", "", "%v", err)
		}
		var layer []plot.Plotter
		var legend []legendEntry
		for i, it := range items {
			layer = append(layer, it)
			legend = append(legend, legendEntry{o.Columns[i], swatch{fill: Color(i)}})
		}
		return layer, legend, nil
	case chart.ViolinOp:
		var legend []legendEntry
		for i, c := range o.Columns {
			legend = append(legend, legendEntry{c, swatch{fill: withAlpha(Color(i), violinAlpha)}})
		}
		return []plot.Plotter{newViolins(o)}, legend, nil
	}
	return nil, nil, errors.Render(errors.ErrCodeRenderInvalidValue, op.Name(), "", "cannot draw %s here", op.Name())
}

func styleText(s *text.Style, size float64) {
	s.Font.Typeface = "Liberation"
	s.Font.Variant = "Sans"
	s.Font.Size = vg.Points(size)
}

func styleAxis(a *plot.Axis, fonts chart.Fonts, dir chart.TickDirection) {
	styleText(&a.Label.TextStyle, fonts.Label)
	styleText(&a.Tick.Label, fonts.Tick)
	a.Padding = 0
	a.LineStyle.Color = spineColor
	a.Tick.LineStyle.Color = spineColor
	a.Tick.Length = tickLength
	if dir == chart.TickIn {
		a.Tick.Length = 0
	}
}
