package render

import (
	"bytes"
	"image/png"
	"math"
	"testing"
	"time"

	"gonum.org/v1/plot"

	"github.com/matzehuels/graphypad/pkg/chart"
	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/errors"
)

func nums(vs ...float64) []dataset.Value {
	out := make([]dataset.Value, len(vs))
	for i, v := range vs {
		out[i] = dataset.Num(v)
	}
	return out
}

func strs(vs ...string) []dataset.Value {
	out := make([]dataset.Value, len(vs))
	for i, v := range vs {
		out[i] = dataset.Str(v)
	}
	return out
}

func testData(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("data.csv",
		&dataset.Column{Name: "time", Values: nums(0, 1, 2, 3)},
		&dataset.Column{Name: "v", Values: []dataset.Value{dataset.Num(0), dataset.Num(5), dataset.NA, dataset.Num(15)}},
		&dataset.Column{Name: "rain", Values: nums(3, 0, 7, 2)},
		&dataset.Column{Name: "wind", Values: nums(10, 12, 9, 14)},
		&dataset.Column{Name: "city", Values: strs("Osaka", "Kyoto", "Nara", "Kobe")},
	)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func f(v float64) *float64 { return &v }

func buildPlan(t *testing.T, req chart.Request) *chart.Plan {
	t.Helper()
	ds := testData(t)
	spec, err := chart.Normalize(req, ds)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	p, err := chart.BuildPlan(spec, ds)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	return p
}

func TestRenderChartTypes(t *testing.T) {
	tests := []struct {
		name string
		req  chart.Request
	}{
		{"line", chart.Request{ChartType: "line", XAxis: "time", YAxisList: `["v"]`}},
		{"scatter", chart.Request{ChartType: "scatter", XAxis: "time", YAxisList: `["v","rain"]`}},
		{"bar categorical", chart.Request{ChartType: "bar", XAxis: "city", YAxisList: `["rain","wind"]`}},
		{"bar numeric", chart.Request{ChartType: "bar", XAxis: "time", YAxisList: `["rain"]`}},
		{"composite twin", chart.Request{ChartType: "composite", XAxis: "time", YAxisList: `["v","rain","wind"]`,
			SeriesKinds: `{"rain":"bar","wind":"scatter"}`, Axes: `{"rain":1,"wind":2}`,
			AxisLabels: `{"1":{"name":"Rain","unit":"mm"},"2":{"name":"Wind"}}`}},
		{"histogram", chart.Request{ChartType: "histogram", YAxisList: `["rain","wind"]`}},
		{"pie", chart.Request{ChartType: "pie", XAxis: "city", YAxisList: `["rain"]`}},
		{"box", chart.Request{ChartType: "box", YAxisList: `["rain","wind"]`}},
		{"violin", chart.Request{ChartType: "violin", YAxisList: `["rain","wind","v"]`}},
		{"styled", chart.Request{ChartType: "line", XAxis: "time", YAxisList: `["v"]`, TickDirection: "inout",
			MinorGrid: boolPtr(true), MinorTicks: boolPtr(true), XMajorTick: f(1), YMinorTick: f(2.5), XMin: f(-1), YMax: f(20), Aspect: "equal"}},
		{"ratio aspect", chart.Request{ChartType: "scatter", XAxis: "time", YAxisList: `["v"]`, Aspect: "0.2", TickDirection: "out"}},
	}

	r := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildPlan(t, tt.req)
			data, err := r.Render(p)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			if cfg.Width != 1000 || cfg.Height != 600 {
				t.Errorf("size = %dx%d, want 1000x600", cfg.Width, cfg.Height)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func TestRenderDeterministic(t *testing.T) {
	r := New()
	req := chart.Request{ChartType: "composite", XAxis: "time", YAxisList: `["v","rain"]`, Axes: `{"rain":1}`}

	first, err := r.Render(buildPlan(t, req))
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Render(buildPlan(t, req))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical plans rendered different bytes")
	}
}

func TestRenderFigureSize(t *testing.T) {
	p := buildPlan(t, chart.Request{ChartType: "line", XAxis: "time", YAxisList: `["v"]`, FigWidth: f(4), FigHeight: f(3)})
	p.Figure.DPI = 50

	data, err := New().Render(p)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 200 || cfg.Height != 150 {
		t.Errorf("size = %dx%d, want 200x150", cfg.Width, cfg.Height)
	}
}

func TestRenderSpec(t *testing.T) {
	ds := testData(t)
	spec, err := chart.Normalize(chart.Request{ChartType: "bar", XAxis: "city", YAxisList: `["rain"]`, FigWidth: f(2), FigHeight: f(2)}, ds)
	if err != nil {
		t.Fatal(err)
	}
	data, err := New(WithDPI(40)).RenderSpec(spec, ds)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 80 {
		t.Errorf("width = %d, want 80", cfg.Width)
	}

	spec, err = chart.Normalize(chart.Request{ChartType: "box", YAxisList: `["city"]`}, ds)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New().RenderSpec(spec, ds); !errors.Is(err, errors.ErrCodeRenderNonNumeric) {
		t.Errorf("RenderSpec(text column) error = %v, want RENDER_NON_NUMERIC", err)
	}
}

func TestRenderInvalidCanvas(t *testing.T) {
	tests := []struct {
		name string
		fig  chart.Figure
	}{
		{"zero width", chart.Figure{Width: 0, Height: 6, DPI: 100}},
		{"nan height", chart.Figure{Width: 10, Height: math.NaN(), DPI: 100}},
		{"dpi too high", chart.Figure{Width: 10, Height: 6, DPI: 5000}},
		{"too many pixels", chart.Figure{Width: 40, Height: 40, DPI: 600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildPlan(t, chart.Request{ChartType: "line", XAxis: "time", YAxisList: `["v"]`})
			p.Figure = tt.fig
			data, err := New().Render(p)
			if !errors.Is(err, errors.ErrCodeRenderCanvas) {
				t.Fatalf("error = %v, want RENDER_CANVAS", err)
			}
			if data != nil {
				t.Error("partial image returned")
			}
		})
	}
}

func TestRenderRecoversPanics(t *testing.T) {
	p := buildPlan(t, chart.Request{ChartType: "line", XAxis: "time", YAxisList: `["v"]`})
	op := p.Ops[0].(chart.LineOp)
	op.Y = op.Y[:1] // shorter than X: indexing past the end panics
	p.Ops[0] = op

	data, err := New().Render(p)
	if !errors.IsRender(err) {
		t.Fatalf("error = %v, want a render error", err)
	}
	if data != nil {
		t.Error("partial image returned")
	}
}

func TestSpanLimits(t *testing.T) {
	tests := []struct {
		name   string
		vals   []float64
		sticky bool
		user   chart.Range
		lo, hi float64
	}{
		{"padded", []float64{0, 10}, false, chart.Range{}, -0.5, 10.5},
		{"sticky zero", []float64{0, 10}, true, chart.Range{}, 0, 10.5},
		{"sticky negative", []float64{-10, 0}, true, chart.Range{}, -10.5, 0},
		{"single value", []float64{3}, false, chart.Range{}, 2.45, 3.55},
		{"empty", nil, false, chart.Range{}, -0.05, 1.05},
		{"user min", []float64{0, 10}, false, chart.Range{Min: f(2)}, 2, 10.5},
		{"user both", []float64{0, 10}, false, chart.Range{Min: f(2), Max: f(4)}, 2, 4},
		{"min past data", []float64{0, 10}, false, chart.Range{Min: f(20)}, 20, 21},
		{"max below data", []float64{0, 10}, false, chart.Range{Max: f(-5)}, -6, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSpan()
			s.include(tt.vals...)
			s.sticky = tt.sticky
			lo, hi := s.limits(tt.user)
			if math.Abs(lo-tt.lo) > 1e-9 || math.Abs(hi-tt.hi) > 1e-9 {
				t.Errorf("limits = (%v, %v), want (%v, %v)", lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestSpanLimitsLargeMagnitude(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		user chart.Range
	}{
		{"constant", []float64{1e17}, chart.Range{}},
		{"negative constant", []float64{-3e20}, chart.Range{}},
		{"min past data", []float64{0, 10}, chart.Range{Min: f(1e17)}},
		{"max below data", []float64{0, 10}, chart.Range{Max: f(-1e17)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSpan()
			s.include(tt.vals...)
			lo, hi := s.limits(tt.user)
			if !(lo < hi) {
				t.Errorf("limits = (%v, %v), want lo < hi", lo, hi)
			}
		})
	}
}

func TestIntervalTicker(t *testing.T) {
	tk := intervalTicker{major: 0.1, minor: 0.05, fallback: plot.DefaultTicks{}}
	ticks := tk.Ticks(0, 0.3)

	var majors, minors []float64
	for _, x := range ticks {
		if x.IsMinor() {
			minors = append(minors, x.Value)
		} else {
			majors = append(majors, x.Value)
		}
	}
	wantMajors := []float64{0, 0.1, 0.2, 0.3}
	if len(majors) != len(wantMajors) {
		t.Fatalf("majors = %v, want %v", majors, wantMajors)
	}
	for i := range wantMajors {
		if majors[i] != wantMajors[i] {
			t.Errorf("major %d = %v, want %v", i, majors[i], wantMajors[i])
		}
	}
	if len(minors) != 3 {
		t.Errorf("minors = %v, want 0.05, 0.15, 0.25", minors)
	}
	if ticks[3].Label != "0.3" {
		t.Errorf("label = %q, want 0.3", ticks[3].Label)
	}
}

func TestIntervalTickerTooDense(t *testing.T) {
	tk := intervalTicker{major: 1e-9, fallback: plot.DefaultTicks{}}
	if n := len(tk.Ticks(0, 100)); n > maxTicks {
		t.Errorf("got %d ticks, want fallback ticks", n)
	}
}

func TestMajorOnly(t *testing.T) {
	for _, minor := range []bool{false, true} {
		ticks := majorOnly{Ticker: plot.DefaultTicks{}, minor: minor}.Ticks(0, 100)
		hasMinor := false
		for _, tk := range ticks {
			hasMinor = hasMinor || tk.IsMinor()
		}
		if hasMinor != minor {
			t.Errorf("minor=%v: minor ticks present = %v", minor, hasMinor)
		}
	}
}

func TestColorWraps(t *testing.T) {
	if Color(10) != Color(0) || Color(-1) != Color(9) {
		t.Error("palette does not wrap")
	}
	if got := withAlpha(Color(0), 0.5).A; got != 128 {
		t.Errorf("alpha = %d, want 128", got)
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"trend", []float64{1, 3, 2, 5, 4}},
		{"with gaps", []float64{1, math.NaN(), 2, math.Inf(1), 3}},
		{"single", []float64{7}},
		{"constant", []float64{2, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Sparkline(tt.values, 0, 0)
			if err != nil {
				t.Fatalf("Sparkline: %v", err)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Width != SparklineWidth || cfg.Height != SparklineHeight {
				t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
			}
		})
	}

	if _, err := Sparkline([]float64{math.NaN()}, 0, 0); !errors.Is(err, errors.ErrCodeRenderEmptySeries) {
		t.Errorf("Sparkline(no values) error = %v", err)
	}
}

func TestSparklineSizeLimit(t *testing.T) {
	values := []float64{1, 2, 3}
	if _, err := Sparkline(values, MaxSparklineWidth, MaxSparklineHeight); err != nil {
		t.Fatalf("Sparkline(max size): %v", err)
	}
	for _, size := range [][2]int{{MaxSparklineWidth + 1, 40}, {160, MaxSparklineHeight + 1}, {100000, 100000}} {
		data, err := Sparkline(values, size[0], size[1])
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Sparkline(%dx%d) error = %v, want INVALID_INPUT", size[0], size[1], err)
		}
		if data != nil {
			t.Errorf("Sparkline(%dx%d) returned an image", size[0], size[1])
		}
	}
}

func TestIntervalTickerLargeMagnitude(t *testing.T) {
	done := make(chan []plot.Tick, 1)
	go func() {
		tk := intervalTicker{major: 1, minor: 0.5, fallback: plot.DefaultTicks{}}
		done <- tk.Ticks(1e17, 1e17+128)
	}()

	select {
	case ticks := <-done:
		if len(ticks) == 0 || len(ticks) > maxTicks {
			t.Errorf("got %d ticks", len(ticks))
		}
		for i := 1; i < len(ticks); i++ {
			if !ticks[i].IsMinor() && !ticks[i-1].IsMinor() && ticks[i].Value <= ticks[i-1].Value {
				t.Errorf("major ticks not increasing at %d: %v <= %v", i, ticks[i].Value, ticks[i-1].Value)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Ticks did not return")
	}
}

func TestMultiplesBounds(t *testing.T) {
	if _, ok := multiples(0, 10, 0, true); ok {
		t.Error("zero step accepted")
	}
	if _, ok := multiples(0, 10, math.NaN(), true); ok {
		t.Error("NaN step accepted")
	}
	if _, ok := multiples(0, 1e6, 1e-3, true); ok {
		t.Error("too many multiples accepted")
	}
	ticks, ok := multiples(-1, 1, 0.5, true)
	if !ok || len(ticks) != 5 {
		t.Errorf("multiples(-1, 1, 0.5) = %v, %v", ticks, ok)
	}
}

func TestRenderLargeMagnitude(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		req    chart.Request
	}{
		{"major interval", []float64{1e17, 1e17 + 64, 1e17 + 128},
			chart.Request{ChartType: "line", XAxis: "time", YAxisList: `["v"]`, YMajorTick: f(1)}},
		{"minor interval", []float64{1e17, 1e17 + 64, 1e17 + 128},
			chart.Request{ChartType: "line", XAxis: "time", YAxisList: `["v"]`, YMinorTick: f(0.25), MinorTicks: boolPtr(true)}},
		{"constant", []float64{1e17, 1e17, 1e17},
			chart.Request{ChartType: "line", XAxis: "time", YAxisList: `["v"]`}},
		{"constant scatter", []float64{-3e20, -3e20, -3e20},
			chart.Request{ChartType: "scatter", XAxis: "time", YAxisList: `["v"]`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := dataset.New("big.csv",
				&dataset.Column{Name: "time", Values: nums(0, 1, 2)},
				&dataset.Column{Name: "v", Values: nums(tt.values...)},
			)
			if err != nil {
				t.Fatal(err)
			}
			spec, err := chart.Normalize(tt.req, ds)
			if err != nil {
				t.Fatal(err)
			}

			type result struct {
				data []byte
				err  error
			}
			done := make(chan result, 1)
			go func() {
				data, err := New(WithDPI(20)).RenderSpec(spec, ds)
				done <- result{data, err}
			}()

			select {
			case res := <-done:
				if res.err != nil {
					t.Fatalf("RenderSpec: %v", res.err)
				}
				if _, err := png.DecodeConfig(bytes.NewReader(res.data)); err != nil {
					t.Fatalf("output is not a PNG: %v", err)
				}
			case <-time.After(20 * time.Second):
				t.Fatal("RenderSpec did not return")
			}
		})
	}
}
