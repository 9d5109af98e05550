package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/errors"
)

func plan(t *testing.T, ds *dataset.Dataset, req Request) *Plan {
	t.Helper()
	spec, err := Normalize(req, ds)
	require.NoError(t, err)
	p, err := BuildPlan(spec, ds)
	require.NoError(t, err)
	return p
}

func TestBuildPlanLine(t *testing.T) {
	p := plan(t, testData(t), Request{ChartType: "line", XAxis: "time", YAxisList: `["v"]`})

	assert.Equal(t, XNumeric, p.XMode)
	require.Len(t, p.Axes, 1)
	assert.Equal(t, "v", p.Axes[0].Label)
	assert.Equal(t, "time", p.XLabel)
	assert.Equal(t, "v vs time", p.Title)
	assert.False(t, p.Legend)
	assert.True(t, p.Grid.Major)
	assert.Equal(t, TickIn, p.TickDirection)

	require.Len(t, p.Ops, 1)
	op, ok := p.Ops[0].(LineOp)
	require.True(t, ok, "op is %T", p.Ops[0])
	assert.Equal(t, []float64{0, 1, 2}, op.X)
	assert.Equal(t, []float64{0, 5, 10}, op.Y)
	assert.Equal(t, 3.0, op.LineWidth)
	assert.Equal(t, 8.0, op.MarkerSize)
}

func TestBuildPlanGroupedBars(t *testing.T) {
	p := plan(t, testData(t), Request{ChartType: "bar", XAxis: "city", YAxisList: `["a","b"]`})

	assert.Equal(t, XCategorical, p.XMode)
	assert.True(t, p.UsesSlots())
	assert.Equal(t, []Tick{{0, "Osaka"}, {1, "Kyoto"}, {2, "Nara"}}, p.XTicks)
	assert.True(t, p.Legend)
	assert.Zero(t, p.XInterval)

	require.Len(t, p.Ops, 2)
	var total, sum float64
	for i, op := range p.Ops {
		bar, ok := op.(BarOp)
		require.True(t, ok)
		assert.Equal(t, i, bar.Color)
		assert.Equal(t, []float64{0, 1, 2}, bar.X)
		total += bar.Width
		sum += bar.Offset
	}
	assert.InDelta(t, 0.8, total, 1e-12)
	assert.InDelta(t, 0, sum, 1e-12)
	assert.InDelta(t, -0.2, p.Ops[0].(BarOp).Offset, 1e-12)
	assert.InDelta(t, 0.2, p.Ops[1].(BarOp).Offset, 1e-12)
}

func TestBarGeometry(t *testing.T) {
	tests := []struct {
		slot float64
		k    int
	}{
		{1, 1}, {1, 2}, {1, 3}, {0.5, 4}, {10, 7},
	}

	for _, tt := range tests {
		width, offsets := barGeometry(tt.slot, tt.k)
		if got := width * float64(tt.k); math.Abs(got-BarFill*tt.slot) > 1e-9 {
			t.Errorf("barGeometry(%v, %d): total width %v, want %v", tt.slot, tt.k, got, BarFill*tt.slot)
		}
		var sum float64
		for _, o := range offsets {
			sum += o
		}
		if math.Abs(sum) > 1e-9 {
			t.Errorf("barGeometry(%v, %d): offsets sum to %v", tt.slot, tt.k, sum)
		}
	}
}

func TestMinPositiveGap(t *testing.T) {
	tests := []struct {
		xs   []float64
		want float64
	}{
		{[]float64{0, 2, 3, 7}, 1},
		{[]float64{5, 1, 3}, 2},
		{[]float64{4}, 1},
		{[]float64{2, 2, 2}, 1},
		{[]float64{0, math.NaN(), 0.5}, 0.5},
	}

	for _, tt := range tests {
		if got := minPositiveGap(tt.xs); got != tt.want {
			t.Errorf("minPositiveGap(%v) = %v, want %v", tt.xs, got, tt.want)
		}
	}
}

func TestBuildPlanCompositeTwinAxis(t *testing.T) {
	ds, err := dataset.New("weather.csv",
		&dataset.Column{Name: "t", Values: nums(1, 2, 3)},
		&dataset.Column{Name: "temp", Values: nums(20, 22, 21)},
		&dataset.Column{Name: "rain", Values: nums(0, 5, 2)},
	)
	require.NoError(t, err)

	p := plan(t, ds, Request{
		ChartType:   "composite",
		XAxis:       "t",
		YAxisList:   `["temp","rain"]`,
		SeriesKinds: `{"temp":"line","rain":"bar"}`,
		Axes:        `{"temp":0,"rain":1}`,
	})

	require.Len(t, p.Axes, 2)
	assert.Equal(t, Axis{Index: 0, Label: "temp"}, p.Axes[0])
	assert.Equal(t, Axis{Index: 1, Label: "rain"}, p.Axes[1])
	assert.True(t, p.Axes[1].Twin())
	assert.Equal(t, "ax1", p.Axes[1].Var())

	require.Len(t, p.Ops, 2)
	line, ok := p.Ops[0].(LineOp)
	require.True(t, ok)
	assert.Equal(t, 0, line.Axis)
	bar, ok := p.Ops[1].(BarOp)
	require.True(t, ok)
	assert.Equal(t, 1, bar.Axis)
	assert.InDelta(t, 0.8, bar.Width, 1e-12)
	assert.Zero(t, bar.Offset)

	assert.Len(t, p.OpsOnAxis(0), 1)
	assert.Len(t, p.OpsOnAxis(1), 1)
	assert.True(t, p.Legend)
}

func TestSpineOffsets(t *testing.T) {
	ds, err := dataset.New("d.csv",
		&dataset.Column{Name: "x", Values: nums(1, 2)},
		&dataset.Column{Name: "a", Values: nums(1, 2)},
		&dataset.Column{Name: "b", Values: nums(1, 2)},
		&dataset.Column{Name: "c", Values: nums(1, 2)},
		&dataset.Column{Name: "d", Values: nums(1, 2)},
	)
	require.NoError(t, err)

	p := plan(t, ds, Request{ChartType: "composite", XAxis: "x", YAxisList: `["a","b","c","d"]`,
		Axes: `{"b":1,"c":2,"d":3}`})

	want := []float64{0, 0, 0.15, 0.30}
	require.Len(t, p.Axes, len(want))
	for i, a := range p.Axes {
		assert.Equal(t, i, a.Index)
		assert.InDelta(t, want[i], a.Offset, 1e-12, "axis %d", i)
	}
}

func TestBuildPlanHistogram(t *testing.T) {
	ds, err := dataset.New("d.csv",
		&dataset.Column{Name: "a", Values: append(nums(0, 1, 2, 3, 4, 5, 6, 7, 8, 9), dataset.NA)},
		&dataset.Column{Name: "b", Values: append(nums(10, 10, 10, 10, 10, 10, 10, 10, 10, 10), dataset.NA)},
	)
	require.NoError(t, err)

	p := plan(t, ds, Request{ChartType: "histogram", YAxisList: `["a","b"]`})
	require.Len(t, p.Ops, 1)
	op := p.Ops[0].(HistogramOp)

	assert.Len(t, op.Edges, HistogramBins+1)
	assert.Equal(t, 0.0, op.Edges[0])
	assert.Equal(t, 10.0, op.Edges[HistogramBins])
	for i, c := range op.Counts {
		var n float64
		for _, v := range c {
			n += v
		}
		assert.Equal(t, 10.0, n, "column %d loses no values", i)
	}
	assert.Equal(t, 10.0, op.Counts[1][HistogramBins-1], "maximum lands in the closed last bin")
	assert.True(t, p.Legend)
	assert.Equal(t, 2, p.SeriesCount())
	assert.InDelta(t, 0.8*0.5/2, op.Width, 1e-12)
}

func TestHistogramDegenerateRange(t *testing.T) {
	edges, counts := histogram([][]float64{{3, 3, 3}}, 4)
	assert.Equal(t, []float64{2.5, 2.75, 3, 3.25, 3.5}, edges)
	var n float64
	for _, v := range counts[0] {
		n += v
	}
	assert.Equal(t, 3.0, n)
}

func TestBuildPlanPie(t *testing.T) {
	ds, err := dataset.New("d.csv",
		&dataset.Column{Name: "fruit", Values: strs("apple", "pear", "plum")},
		&dataset.Column{Name: "n", Values: []dataset.Value{dataset.Num(3), dataset.NA, dataset.Num(1)}},
	)
	require.NoError(t, err)

	p := plan(t, ds, Request{ChartType: "pie", XAxis: "fruit", YAxisList: `["n"]`})
	op := p.Ops[0].(PieOp)
	assert.Equal(t, []string{"apple", "plum"}, op.Labels)
	assert.Equal(t, []float64{3, 1}, op.Values)
	assert.Equal(t, 1, op.Dropped)
	assert.True(t, op.Clockwise)
	assert.Equal(t, 90.0, op.StartAngle)
	assert.False(t, p.Legend)
	assert.Empty(t, p.XLabel)
	assert.Equal(t, XNone, p.XMode)
}

func TestBuildPlanDistribution(t *testing.T) {
	ds, err := dataset.New("d.csv",
		&dataset.Column{Name: "a", Values: []dataset.Value{dataset.Num(1), dataset.NA, dataset.Num(3), dataset.Num(8)}},
		&dataset.Column{Name: "b", Values: nums(2, 2, 2, 2)},
	)
	require.NoError(t, err)

	box := plan(t, ds, Request{ChartType: "box", YAxisList: `["a","b"]`})
	bop := box.Ops[0].(BoxOp)
	assert.Equal(t, []float64{1, 2}, bop.Positions)
	assert.Equal(t, []float64{1, 3, 8}, bop.Data[0])
	assert.Equal(t, XPositions, box.XMode)
	assert.Equal(t, []Tick{{1, "a"}, {2, "b"}}, box.XTicks)
	assert.Zero(t, box.Grid)
	assert.True(t, box.Legend)

	violin := plan(t, ds, Request{ChartType: "violin", YAxisList: `["a","b"]`})
	vop := violin.Ops[0].(ViolinOp)
	assert.InDelta(t, 4, vop.Means[0], 1e-12)
	require.Len(t, vop.Bodies, 2)
	assert.Len(t, vop.Bodies[0].Coords, ViolinPoints)
	assert.InDelta(t, ViolinWidth/2, maxOf(vop.Bodies[0].Density), 1e-12)
	assert.Equal(t, 0.0, maxOf(vop.Bodies[1].Density), "constant column has a zero-width body")
}

func maxOf(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		m = math.Max(m, x)
	}
	return m
}

func TestBuildPlanRenderErrors(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		code   errors.Code
		column string
	}{
		{"text y", Request{ChartType: "line", XAxis: "time", YAxisList: `["city"]`}, errors.ErrCodeRenderNonNumeric, "city"},
		{"all missing box", Request{ChartType: "box", YAxisList: `["empty"]`}, errors.ErrCodeRenderEmptySeries, "empty"},
		{"all missing line", Request{ChartType: "line", XAxis: "time", YAxisList: `["empty"]`}, errors.ErrCodeRenderEmptySeries, "empty"},
		{"all missing hist", Request{ChartType: "histogram", YAxisList: `["a","empty"]`}, errors.ErrCodeRenderEmptySeries, "empty"},
		{"text histogram", Request{ChartType: "histogram", YAxisList: `["city"]`}, errors.ErrCodeRenderNonNumeric, "city"},
		{"text pie", Request{ChartType: "pie", XAxis: "time", YAxisList: `["city"]`}, errors.ErrCodeRenderNonNumeric, "city"},
		{"empty pie", Request{ChartType: "pie", XAxis: "city", YAxisList: `["empty"]`}, errors.ErrCodeRenderEmptySeries, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := testData(t)
			spec, err := Normalize(tt.req, ds)
			require.NoError(t, err)

			_, err = BuildPlan(spec, ds)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
			assert.True(t, errors.IsRender(err))

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.column, e.Column)
		})
	}
}

func TestBuildPlanPieInvalidValues(t *testing.T) {
	for _, vals := range [][]float64{{1, -2}, {0, 0}, {1, math.Inf(1)}} {
		ds, err := dataset.New("d.csv",
			&dataset.Column{Name: "k", Values: strs("x", "y")},
			&dataset.Column{Name: "n", Values: nums(vals...)},
		)
		require.NoError(t, err)
		spec, err := Normalize(Request{ChartType: "pie", XAxis: "k", YAxisList: `["n"]`}, ds)
		require.NoError(t, err)
		_, err = BuildPlan(spec, ds)
		assert.True(t, errors.Is(err, errors.ErrCodeRenderInvalidValue), "values %v: got %v", vals, err)
	}
}

func TestCosmeticsGating(t *testing.T) {
	req := Request{
		XAxis:      "city",
		YAxisList:  `["a"]`,
		XMin:       f(0),
		XMax:       f(5),
		YMin:       f(-1),
		Aspect:     "equal",
		XMajorTick: f(1),
		YMajorTick: f(2),
		YMinorTick: f(0.5),
	}

	t.Run("categorical composite drops x range", func(t *testing.T) {
		r := req
		r.ChartType = "composite"
		p := plan(t, testData(t), r)
		assert.True(t, p.XRange.IsZero())
		assert.NotNil(t, p.YRange.Min)
		assert.Equal(t, AspectEqual, p.Aspect.Mode)
		assert.Zero(t, p.XInterval, "fixed category ticks win over intervals")
		assert.Equal(t, TickInterval{Major: 2}, p.YInterval, "minor interval needs minor ticks")
	})

	t.Run("bar ignores aspect", func(t *testing.T) {
		r := req
		r.ChartType = "bar"
		p := plan(t, testData(t), r)
		assert.Equal(t, AspectAuto, p.Aspect.Mode)
		assert.True(t, p.XRange.IsZero())
	})

	t.Run("minor grid needs minor ticks", func(t *testing.T) {
		r := req
		r.ChartType = "scatter"
		r.XAxis = "time"
		r.MinorGrid = b(true)
		p := plan(t, testData(t), r)
		assert.False(t, p.MinorTicks)
		assert.False(t, p.Grid.Minor)
		assert.Zero(t, p.YInterval.Minor)
		assert.Equal(t, 5.0, *p.XRange.Max)

		r.MinorTicks = b(true)
		p = plan(t, testData(t), r)
		assert.True(t, p.MinorTicks)
		assert.True(t, p.Grid.Minor)
		assert.Equal(t, 0.5, p.YInterval.Minor)
	})
}

func TestWithDPI(t *testing.T) {
	ds := testData(t)
	spec, err := Normalize(Request{ChartType: "line", XAxis: "time", YAxisList: `["v"]`}, ds)
	require.NoError(t, err)

	p, err := BuildPlan(spec, ds, WithDPI(200))
	require.NoError(t, err)
	assert.Equal(t, 200.0, p.Figure.DPI)

	p, err = BuildPlan(spec, ds)
	require.NoError(t, err)
	assert.Equal(t, DefaultDPI, p.Figure.DPI)
}
