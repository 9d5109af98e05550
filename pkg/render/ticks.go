package render

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/graphypad/pkg/chart"
)

// maxTicks bounds interval tickers; a tiny interval over a wide range falls
// back to automatic ticks.
const maxTicks = 1000

const tickLength = vg.Length(6)

// majorOnly drops minor ticks from the wrapped ticker unless minor is set.
type majorOnly struct {
	plot.Ticker
	minor bool
}

func (t majorOnly) Ticks(min, max float64) []plot.Tick {
	ticks := t.Ticker.Ticks(min, max)
	if t.minor {
		return ticks
	}
	out := make([]plot.Tick, 0, len(ticks))
	for _, tk := range ticks {
		if !tk.IsMinor() {
			out = append(out, tk)
		}
	}
	return out
}

// intervalTicker places ticks at fixed multiples. A zero interval defers to
// the fallback ticker for that tick class.
type intervalTicker struct {
	major, minor float64
	fallback     plot.Ticker
}

func (t intervalTicker) Ticks(min, max float64) []plot.Tick {
	ticks, ok := multiples(min, max, t.major, true)
	if !ok {
		ticks = nil
		for _, tk := range t.fallback.Ticks(min, max) {
			if !tk.IsMinor() {
				ticks = append(ticks, tk)
			}
		}
	}
	minors, ok := multiples(min, max, t.minor, false)
	if !ok {
		return ticks
	}

	majors := ticks
	for _, tk := range minors {
		if !nearAny(tk.Value, majors, t.minor*1e-6) {
			ticks = append(ticks, tk)
		}
	}
	return ticks
}

// multiples returns k*step for every integer k with k*step in [min, max].
// It reports false for a non-positive step or when more than maxTicks
// multiples fall in the range. Multiples that round to the same float64
// collapse into one tick.
func multiples(min, max, step float64, label bool) ([]plot.Tick, bool) {
	if !(step > 0) {
		return nil, false
	}
	eps := step * 1e-9
	first := math.Ceil((min - eps) / step)
	last := math.Floor((max + eps) / step)
	n := last - first + 1
	if !finite(n) || n > maxTicks {
		return nil, false
	}

	var out []plot.Tick
	for i := 0; i < int(n); i++ {
		v := roundTick((first+float64(i))*step, step)
		if len(out) > 0 && out[len(out)-1].Value == v {
			continue
		}
		tk := plot.Tick{Value: v}
		if label {
			tk.Label = strconv.FormatFloat(v, 'g', -1, 64)
		}
		out = append(out, tk)
	}
	return out, true
}

// roundTick strips accumulated float noise such as 0.30000000000000004,
// unless rounding would move the tick by a visible fraction of step.
func roundTick(v, step float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 12, 64), 64)
	if err != nil || math.Abs(r-v) > step*1e-6 {
		return v
	}
	if r == 0 {
		return 0
	}
	return r
}

func nearAny(v float64, ticks []plot.Tick, tol float64) bool {
	for _, tk := range ticks {
		if math.Abs(tk.Value-v) <= tol {
			return true
		}
	}
	return false
}

// xTicker returns the X tick marker for a plan: fixed labels for category
// and position axes, intervals when configured, automatic otherwise.
func xTicker(p *chart.Plan) plot.Ticker {
	if len(p.XTicks) > 0 {
		ticks := make(plot.ConstantTicks, len(p.XTicks))
		for i, t := range p.XTicks {
			ticks[i] = plot.Tick{Value: t.Value, Label: t.Label}
		}
		return ticks
	}
	return yTicker(p.XInterval, p.MinorTicks)
}

func yTicker(iv chart.TickInterval, minor bool) plot.Ticker {
	auto := majorOnly{Ticker: plot.DefaultTicks{}, minor: minor}
	if iv.Major > 0 || iv.Minor > 0 {
		return intervalTicker{major: iv.Major, minor: iv.Minor, fallback: auto}
	}
	return auto
}

// innerTicks draws tick marks pointing into the plot area along the bottom
// and left edges.
type innerTicks struct {
	length vg.Length
}

func (t innerTicks) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, tk := range plt.X.Tick.Marker.Ticks(plt.X.Min, plt.X.Max) {
		if tk.Value < plt.X.Min || tk.Value > plt.X.Max {
			continue
		}
		l := t.length
		if tk.IsMinor() {
			l /= 2
		}
		x := trX(tk.Value)
		c.StrokeLine2(plt.X.Tick.LineStyle, x, c.Min.Y, x, c.Min.Y+l)
	}
	for _, tk := range plt.Y.Tick.Marker.Ticks(plt.Y.Min, plt.Y.Max) {
		if tk.Value < plt.Y.Min || tk.Value > plt.Y.Max {
			continue
		}
		l := t.length
		if tk.IsMinor() {
			l /= 2
		}
		y := trY(tk.Value)
		c.StrokeLine2(plt.Y.Tick.LineStyle, c.Min.X, y, c.Min.X+l, y)
	}
}

// minorGrid draws dotted lines at minor tick positions.
type minorGrid struct {
	style draw.LineStyle
}

func (g minorGrid) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, tk := range plt.X.Tick.Marker.Ticks(plt.X.Min, plt.X.Max) {
		if tk.IsMinor() && tk.Value >= plt.X.Min && tk.Value <= plt.X.Max {
			x := trX(tk.Value)
			c.StrokeLine2(g.style, x, c.Min.Y, x, c.Max.Y)
		}
	}
	for _, tk := range plt.Y.Tick.Marker.Ticks(plt.Y.Min, plt.Y.Max) {
		if tk.IsMinor() && tk.Value >= plt.Y.Min && tk.Value <= plt.Y.Max {
			y := trY(tk.Value)
			c.StrokeLine2(g.style, c.Min.X, y, c.Max.X, y)
		}
	}
}
