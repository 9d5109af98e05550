package render

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/graphypad/pkg/chart"
)

// dataMargin pads automatic limits by this fraction of the data span.
const dataMargin = 0.05

const (
	tickPad  = vg.Length(3)
	labelPad = vg.Length(4)
)

// =============================================================================
// Limits
// =============================================================================

// span accumulates the finite extent of plotted data. A sticky span keeps a
// zero baseline on the edge instead of padding past it.
type span struct {
	lo, hi float64
	sticky bool
}

func newSpan() span { return span{lo: math.Inf(1), hi: math.Inf(-1)} }

func (s *span) include(vs ...float64) {
	for _, v := range vs {
		if finite(v) {
			s.lo = math.Min(s.lo, v)
			s.hi = math.Max(s.hi, v)
		}
	}
}

// includePairs adds the values of vs at rows where both series are finite.
func (s *span) includePairs(vs, other []float64) {
	for i, v := range vs {
		if finite(v) && finite(other[i]) {
			s.include(v)
		}
	}
}

// limits pads the span and then applies user bounds. A bound that would
// invert the range moves the free end one unit past it, or further when one
// unit is below float64 resolution at that magnitude.
func (s span) limits(user chart.Range) (lo, hi float64) {
	lo, hi = s.lo, s.hi
	if lo > hi {
		lo, hi = 0, 1
	}
	if lo == hi {
		d := gap(lo) / 2
		lo, hi = lo-d, hi+d
	}
	pad := (hi - lo) * dataMargin
	if !(s.sticky && lo == 0) {
		lo -= pad
	}
	if !(s.sticky && hi == 0) {
		hi += pad
	}

	if user.Min != nil {
		lo = *user.Min
	}
	if user.Max != nil {
		hi = *user.Max
	}
	if lo >= hi {
		if user.Max == nil {
			hi = lo + gap(lo)
		} else {
			lo = hi - gap(hi)
		}
	}
	return lo, hi
}

// gap is one unit, widened for large magnitudes so that v±gap(v) stays
// distinct from v.
func gap(v float64) float64 {
	return math.Max(1, math.Abs(v)*1e-9)
}

func xLimits(p *chart.Plan) (float64, float64) {
	if p.XMode == chart.XPositions {
		return 0.5, float64(len(p.XTicks)) + 0.5
	}
	s := newSpan()
	for _, op := range p.Ops {
		switch o := op.(type) {
		case chart.LineOp:
			s.includePairs(o.X, o.Y)
		case chart.ScatterOp:
			s.includePairs(o.X, o.Y)
		case chart.BarOp:
			for i, x := range o.X {
				if finite(o.Y[i]) {
					s.include(x+o.Offset-o.Width/2, x+o.Offset+o.Width/2)
				}
			}
		case chart.HistogramOp:
			s.include(o.Edges[0], o.Edges[len(o.Edges)-1])
		}
	}
	return s.limits(p.XRange)
}

// yLimits computes the limits of one axis. User bounds apply to axis 0 only.
func yLimits(p *chart.Plan, axis int) (float64, float64) {
	s := newSpan()
	for _, op := range p.OpsOnAxis(axis) {
		switch o := op.(type) {
		case chart.LineOp:
			s.includePairs(o.Y, o.X)
		case chart.ScatterOp:
			s.includePairs(o.Y, o.X)
		case chart.BarOp:
			s.includePairs(o.Y, o.X)
			s.include(0)
			s.sticky = true
		case chart.HistogramOp:
			for _, c := range o.Counts {
				s.include(c...)
			}
			s.include(0)
			s.sticky = true
		case chart.BoxOp:
			for _, d := range o.Data {
				s.include(floats.Min(d), floats.Max(d))
			}
		case chart.ViolinOp:
			for _, b := range o.Bodies {
				s.include(b.Min, b.Max)
			}
		}
	}
	var user chart.Range
	if axis == 0 {
		user = p.YRange
	}
	return s.limits(user)
}

// fitAspect shrinks the canvas so one Y data unit spans ratio times the
// screen length of one X data unit. The plot area is kept centered.
func fitAspect(p *plot.Plot, c draw.Canvas, a chart.Aspect) draw.Canvas {
	ratio := 1.0
	switch a.Mode {
	case chart.AspectEqual:
	case chart.AspectRatio:
		ratio = a.Ratio
	default:
		return c
	}

	dc := p.DataCanvas(c)
	w, h := dc.Max.X-dc.Min.X, dc.Max.Y-dc.Min.Y
	xspan, yspan := p.X.Max-p.X.Min, p.Y.Max-p.Y.Min
	if w <= 0 || h <= 0 || !(xspan > 0) || !(yspan > 0) {
		return c
	}

	if want := w * vg.Length(ratio*yspan/xspan); want < h {
		d := (h - want) / 2
		return draw.Crop(c, 0, 0, d, -d)
	}
	want := h * vg.Length(xspan/(ratio*yspan))
	d := (w - want) / 2
	return draw.Crop(c, d, -d, 0, 0)
}

// =============================================================================
// Twin axes
// =============================================================================

// twinAxis is a right-hand Y axis sharing X with the primary plot. Its
// plotters draw through a shadow copy of the plot whose Y axis is replaced,
// so they map their values onto the same plot area with their own range.
type twinAxis struct {
	axis     chart.Axis
	y        plot.Axis
	plotters []plot.Plotter
}

func (t *twinAxis) Plot(c draw.Canvas, plt *plot.Plot) {
	shadow := *plt
	shadow.Y = t.y
	for _, d := range t.plotters {
		d.Plot(c, &shadow)
	}
}

func (t *twinAxis) ticks() []plot.Tick {
	var out []plot.Tick
	for _, tk := range t.y.Tick.Marker.Ticks(t.y.Min, t.y.Max) {
		if tk.Value >= t.y.Min && tk.Value <= t.y.Max {
			out = append(out, tk)
		}
	}
	return out
}

func outward(dir chart.TickDirection) vg.Length {
	if dir == chart.TickIn {
		return 0
	}
	return tickLength
}

// extent is the horizontal room the spine decorations take right of the spine.
func (t *twinAxis) extent(dir chart.TickDirection) vg.Length {
	var widest vg.Length
	for _, tk := range t.ticks() {
		if !tk.IsMinor() {
			widest = max(widest, t.y.Tick.Label.Width(tk.Label))
		}
	}
	w := outward(dir) + tickPad + widest
	if t.y.Label.Text != "" {
		w += labelPad + t.y.Label.TextStyle.Height(t.y.Label.Text)
	}
	return w
}

// drawSpine draws the spine, ticks, tick labels and label of the axis to
// the right of the data canvas c, moved outward by the axis offset.
func (t *twinAxis) drawSpine(c draw.Canvas, dir chart.TickDirection) {
	x := c.Max.X + vg.Length(t.axis.Offset)*(c.Max.X-c.Min.X)
	c.StrokeLine2(t.y.LineStyle, x, c.Min.Y, x, c.Max.Y)

	out := outward(dir)
	var widest vg.Length
	for _, tk := range t.ticks() {
		y := c.Y(t.y.Norm(tk.Value))
		l := tickLength
		if tk.IsMinor() {
			l /= 2
		}
		switch dir {
		case chart.TickIn:
			c.StrokeLine2(t.y.Tick.LineStyle, x-l, y, x, y)
		case chart.TickOut:
			c.StrokeLine2(t.y.Tick.LineStyle, x, y, x+l, y)
		default:
			c.StrokeLine2(t.y.Tick.LineStyle, x-l, y, x+l, y)
		}
		if tk.IsMinor() {
			continue
		}
		sty := t.y.Tick.Label
		sty.XAlign, sty.YAlign = text.XLeft, text.YCenter
		c.FillText(sty, vg.Point{X: x + out + tickPad, Y: y}, tk.Label)
		widest = max(widest, sty.Width(tk.Label))
	}

	if t.y.Label.Text == "" {
		return
	}
	sty := t.y.Label.TextStyle
	sty.Rotation = math.Pi / 2
	sty.XAlign, sty.YAlign = text.XCenter, text.YTop
	pt := vg.Point{X: x + out + tickPad + widest + labelPad, Y: (c.Min.Y + c.Max.Y) / 2}
	c.FillText(sty, pt, t.y.Label.Text)
}

// twinMargin is the room to reserve right of the plot so every twin spine
// and its decorations fit. Spine offsets are fractions of the plot width,
// which itself shrinks by the reserved margin.
func twinMargin(p *plot.Plot, c draw.Canvas, twins []*twinAxis, dir chart.TickDirection) vg.Length {
	if len(twins) == 0 {
		return 0
	}
	dc := p.DataCanvas(c)
	avail := c.Max.X - dc.Min.X
	var margin vg.Length
	for _, t := range twins {
		f := vg.Length(t.axis.Offset)
		margin = max(margin, (f*avail+t.extent(dir))/(1+f))
	}
	return margin
}
