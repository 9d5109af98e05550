package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/graphypad/pkg/chart"
)

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// =============================================================================
// Line and scatter
// =============================================================================

// lineSeries connects consecutive finite points; a NaN in X or Y ends the
// current segment. Every finite point gets a circle marker.
type lineSeries struct {
	xs, ys []float64
	line   draw.LineStyle
	glyph  draw.GlyphStyle
}

func newLineSeries(op chart.LineOp) *lineSeries {
	c := Color(op.Color)
	return &lineSeries{
		xs:    op.X,
		ys:    op.Y,
		line:  draw.LineStyle{Color: c, Width: vg.Length(op.LineWidth)},
		glyph: draw.GlyphStyle{Color: c, Radius: vg.Length(op.MarkerSize / 2), Shape: draw.CircleGlyph{}},
	}
}

func (l *lineSeries) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	var lines [][]vg.Point
	var cur []vg.Point
	for i := range l.xs {
		if !finite(l.xs[i]) || !finite(l.ys[i]) {
			if len(cur) > 0 {
				lines = append(lines, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, vg.Point{X: trX(l.xs[i]), Y: trY(l.ys[i])})
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}

	c.StrokeLines(l.line, c.ClipLinesXY(lines...)...)
	for _, seg := range lines {
		for _, pt := range seg {
			if c.Contains(pt) {
				c.DrawGlyph(l.glyph, pt)
			}
		}
	}
}

func (l *lineSeries) Thumbnail(c *draw.Canvas) {
	y := c.Center().Y
	c.StrokeLine2(l.line, c.Min.X, y, c.Max.X, y)
	c.DrawGlyph(l.glyph, c.Center())
}

// scatterSeries draws unconnected filled markers. Size is an area in
// points², so the radius is sqrt(size)/2.
type scatterSeries struct {
	xs, ys []float64
	glyph  draw.GlyphStyle
}

func newScatterSeries(op chart.ScatterOp) *scatterSeries {
	return &scatterSeries{
		xs: op.X,
		ys: op.Y,
		glyph: draw.GlyphStyle{
			Color:  withAlpha(Color(op.Color), op.Alpha),
			Radius: vg.Length(math.Sqrt(op.Size) / 2),
			Shape:  draw.CircleGlyph{},
		},
	}
}

func (s *scatterSeries) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for i := range s.xs {
		if !finite(s.xs[i]) || !finite(s.ys[i]) {
			continue
		}
		pt := vg.Point{X: trX(s.xs[i]), Y: trY(s.ys[i])}
		if c.Contains(pt) {
			c.DrawGlyph(s.glyph, pt)
		}
	}
}

func (s *scatterSeries) Thumbnail(c *draw.Canvas) {
	c.DrawGlyph(s.glyph, c.Center())
}

// =============================================================================
// Bars
// =============================================================================

// barSeries draws one bar per finite Y from zero, centered at X+offset.
// Width and offset are in data units, so grouped bars keep their geometry
// whatever the canvas size.
type barSeries struct {
	xs, ys []float64
	width  float64
	offset float64
	fill   color.Color
}

func newBarSeries(op chart.BarOp) *barSeries {
	return &barSeries{xs: op.X, ys: op.Y, width: op.Width, offset: op.Offset, fill: Color(op.Color)}
}

// newHistogramBars returns one bar series per histogram column.
func newHistogramBars(op chart.HistogramOp) []*barSeries {
	left := op.Edges[:len(op.Edges)-1]
	out := make([]*barSeries, len(op.Counts))
	for i, counts := range op.Counts {
		out[i] = &barSeries{
			xs:     left,
			ys:     counts,
			width:  op.Width,
			offset: op.Offsets[i],
			fill:   withAlpha(Color(i), op.Alpha),
		}
	}
	return out
}

func (b *barSeries) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	base := trY(0)
	for i := range b.xs {
		if !finite(b.xs[i]) || !finite(b.ys[i]) {
			continue
		}
		center := b.xs[i] + b.offset
		x0, x1 := trX(center-b.width/2), trX(center+b.width/2)
		top := trY(b.ys[i])
		pts := []vg.Point{
			{X: x0, Y: base},
			{X: x0, Y: top},
			{X: x1, Y: top},
			{X: x1, Y: base},
		}
		if poly := c.ClipPolygonXY(pts); len(poly) > 0 {
			c.FillPolygon(b.fill, poly)
		}
	}
}

func (b *barSeries) Thumbnail(c *draw.Canvas) { fillThumbnail(c, b.fill) }

// swatch is a legend entry drawn as a filled rectangle.
type swatch struct{ fill color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) { fillThumbnail(c, s.fill) }

func fillThumbnail(c *draw.Canvas, fill color.Color) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(fill, c.ClipPolygonY(pts))
}

// =============================================================================
// Pie
// =============================================================================

// pieChart draws wedges around the canvas center with percentage labels
// inside and category labels outside. It ignores the plot axes.
type pieChart struct {
	op   chart.PieOp
	text text.Style
}

func (p *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	center := c.Center()
	radius := 0.8 * min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y) / 2
	total := floats.Sum(p.op.Values)

	dir := 1.0
	if p.op.Clockwise {
		dir = -1
	}
	angle := p.op.StartAngle * math.Pi / 180
	for i, v := range p.op.Values {
		sweep := v / total * 2 * math.Pi
		from, to := angle, angle+dir*sweep
		lo := math.Min(from, to)

		var path vg.Path
		path.Move(center)
		path.Line(polar(center, radius, lo))
		path.Arc(center, radius, lo, sweep)
		path.Close()
		c.SetColor(Color(i))
		c.Fill(path)

		mid := (from + to) / 2
		pct := p.text
		pct.XAlign, pct.YAlign = text.XCenter, text.YCenter
		c.FillText(pct, polar(center, 0.6*radius, mid), fmt.Sprintf(p.op.Format, v/total*100))

		name := p.text
		name.YAlign = text.YCenter
		name.XAlign = text.XLeft
		if math.Cos(mid) < 0 {
			name.XAlign = text.XRight
		}
		c.FillText(name, polar(center, 1.1*radius, mid), p.op.Labels[i])

		angle = to
	}
}

func polar(center vg.Point, r vg.Length, angle float64) vg.Point {
	return vg.Point{
		X: center.X + r*vg.Length(math.Cos(angle)),
		Y: center.Y + r*vg.Length(math.Sin(angle)),
	}
}

// =============================================================================
// Box and violin
// =============================================================================

// boxItem wraps a gonum box plot whose width is given in data units. The
// screen width is resolved from the axis transform at draw time.
type boxItem struct {
	*plotter.BoxPlot
	width float64
}

func newBoxItems(op chart.BoxOp) ([]boxItem, error) {
	items := make([]boxItem, len(op.Data))
	for i, data := range op.Data {
		bp, err := plotter.NewBoxPlot(vg.Points(20), op.Positions[i], plotter.Values(data))
		if err != nil {
			return nil, err
		}
		bp.FillColor = Color(i)
		bp.MedianStyle.Color = Color(1)
		bp.MedianStyle.Width = vg.Points(1.5)
		items[i] = boxItem{BoxPlot: bp, width: op.Width}
	}
	return items, nil
}

func (b boxItem) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)
	pos := b.Location
	if w := trX(pos+b.width/2) - trX(pos-b.width/2); w > 0 {
		b.BoxPlot.Width = w
	}
	b.BoxPlot.Plot(c, plt)
}

// violins draws KDE bodies mirrored around each position, with extrema
// caps, a center bar and a mean line.
type violins struct {
	op   chart.ViolinOp
	line draw.LineStyle
}

const violinAlpha = 0.3

func newViolins(op chart.ViolinOp) *violins {
	return &violins{op: op, line: draw.LineStyle{Color: Color(0), Width: vg.Points(1.5)}}
}

func (v *violins) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	half := v.op.Width / 4
	for i, body := range v.op.Bodies {
		pos := v.op.Positions[i]

		n := len(body.Coords)
		pts := make([]vg.Point, 0, 2*n)
		for k := 0; k < n; k++ {
			pts = append(pts, vg.Point{X: trX(pos + body.Density[k]), Y: trY(body.Coords[k])})
		}
		for k := n - 1; k >= 0; k-- {
			pts = append(pts, vg.Point{X: trX(pos - body.Density[k]), Y: trY(body.Coords[k])})
		}
		if poly := c.ClipPolygonXY(pts); len(poly) > 0 {
			c.FillPolygon(withAlpha(Color(i), violinAlpha), poly)
		}

		x := trX(pos)
		lines := [][]vg.Point{
			{{X: x, Y: trY(body.Min)}, {X: x, Y: trY(body.Max)}},
			{{X: trX(pos - half), Y: trY(body.Min)}, {X: trX(pos + half), Y: trY(body.Min)}},
			{{X: trX(pos - half), Y: trY(body.Max)}, {X: trX(pos + half), Y: trY(body.Max)}},
			{{X: trX(pos - half), Y: trY(v.op.Means[i])}, {X: trX(pos + half), Y: trY(v.op.Means[i])}},
		}
		c.StrokeLines(v.line, c.ClipLinesXY(lines...)...)
	}
}

// =============================================================================
// Frame
// =============================================================================

// frame closes the plot area with top and right spines.
type frame struct {
	style draw.LineStyle
}

func (f frame) Plot(c draw.Canvas, _ *plot.Plot) {
	c.StrokeLine2(f.style, c.Min.X, c.Max.Y, c.Max.X, c.Max.Y)
	c.StrokeLine2(f.style, c.Max.X, c.Min.Y, c.Max.X, c.Max.Y)
}
