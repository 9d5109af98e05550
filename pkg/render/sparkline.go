package render

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/matzehuels/graphypad/pkg/errors"
)

// Default and maximum sparkline size in pixels.
const (
	SparklineWidth  = 160
	SparklineHeight = 40

	MaxSparklineWidth  = 1600
	MaxSparklineHeight = 400
)

// Sparkline draws values in row order as a small axis-free trend line.
// Non-finite values are skipped. Width and height are in pixels; zero
// selects the defaults and sizes above the maximum are rejected.
func Sparkline(values []float64, width, height int) ([]byte, error) {
	if width <= 0 {
		width = SparklineWidth
	}
	if height <= 0 {
		height = SparklineHeight
	}
	if width > MaxSparklineWidth || height > MaxSparklineHeight {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"sparkline size %dx%d exceeds %dx%d", width, height, MaxSparklineWidth, MaxSparklineHeight)
	}

	var xs, ys []float64
	for i, v := range values {
		if finite(v) {
			xs = append(xs, float64(i))
			ys = append(ys, v)
		}
	}
	if len(ys) == 0 {
		return nil, errors.Render(errors.ErrCodeRenderEmptySeries, "sparkline", "", "no values to draw")
	}
	if len(ys) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}

	lo, hi := ys[0], ys[0]
	for _, y := range ys {
		lo, hi = min(lo, y), max(hi, y)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 4, Left: 4, Right: 4, Bottom: 4},
		},
		XAxis: chart.XAxis{Style: chart.Hidden()},
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 1.5,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderCanvas, err, "render sparkline")
	}
	return buf.Bytes(), nil
}
