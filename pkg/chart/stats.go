package chart

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Drawing constants shared by the renderer and the code emitter.
const (
	HistogramBins   = 20
	HistogramAlpha  = 0.7
	ScatterAlpha    = 0.7
	ScatterScale    = 10.0 // marker area = marker size * ScatterScale
	BarFill         = 0.8  // fraction of a slot covered by a bar group
	ViolinWidth     = 0.5
	ViolinPoints    = 100
	PieStartAngle   = 90.0
	PiePercentFmt   = "%1.1f%%"
	TwinSpineOffset = 0.15
)

// minPositiveGap returns the smallest positive difference between sorted
// finite values, or 1 when there is none.
func minPositiveGap(xs []float64) float64 {
	vals := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			vals = append(vals, x)
		}
	}
	sort.Float64s(vals)
	gap := math.Inf(1)
	for i := 1; i < len(vals); i++ {
		if d := vals[i] - vals[i-1]; d > 0 && d < gap {
			gap = d
		}
	}
	if math.IsInf(gap, 1) {
		return 1
	}
	return gap
}

// barGeometry returns the width of each of k bar series sharing a slot of
// the given size, and each series' offset from the slot center. Offsets are
// symmetric and sum to zero.
func barGeometry(slot float64, k int) (width float64, offsets []float64) {
	if k == 0 {
		return 0, nil
	}
	width = BarFill * slot / float64(k)
	offsets = make([]float64, k)
	for i := range offsets {
		offsets[i] = (float64(i) - float64(k-1)/2) * width
	}
	return width, offsets
}

// histogram bins every series over bins equal-width bins spanning the
// combined range. A zero-width range is widened by 0.5 on each side.
func histogram(data [][]float64, bins int) (edges []float64, counts [][]float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, d := range data {
		lo = math.Min(lo, floats.Min(d))
		hi = math.Max(hi, floats.Max(d))
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	edges = floats.Span(make([]float64, bins+1), lo, hi)

	// The last bin is closed; stat.Histogram wants a strict upper divider.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts = make([][]float64, len(data))
	for i, d := range data {
		sorted := append([]float64(nil), d...)
		sort.Float64s(sorted)
		counts[i] = stat.Histogram(nil, dividers, sorted, nil)
	}
	return edges, counts
}

// histogramBars returns the per-series bar width and bar centers measured
// from the left bin edge. Several series share 80% of each bin; a single
// series fills it.
func histogramBars(binWidth float64, k int) (width float64, offsets []float64) {
	fill := 1.0
	if k > 1 {
		fill = BarFill
	}
	width = fill * binWidth / float64(k)
	offsets = make([]float64, k)
	for i := range offsets {
		offsets[i] = (1-fill)*binWidth/2 + (float64(i)+0.5)*width
	}
	return width, offsets
}

// kde estimates the density of data with a Gaussian kernel using Scott's
// bandwidth, evaluated at points coordinates from min to max. Densities are
// scaled so the widest point has half-width width/2. Data with fewer than
// two distinct values yields a zero-width body.
func kde(data []float64, points int, width float64) Violin {
	lo, hi := floats.Min(data), floats.Max(data)
	_, std := stat.MeanStdDev(data, nil)
	if len(data) < 2 || !(std > 0) {
		return Violin{Coords: []float64{lo, hi}, Density: []float64{0, 0}, Min: lo, Max: hi}
	}

	n := float64(len(data))
	bw := math.Pow(n, -1.0/5) * std
	norm := 1 / (n * bw * math.Sqrt(2*math.Pi))

	coords := floats.Span(make([]float64, points), lo, hi)
	dens := make([]float64, points)
	for i, c := range coords {
		var sum float64
		for _, x := range data {
			z := (c - x) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		dens[i] = sum * norm
	}
	floats.Scale(0.5*width/floats.Max(dens), dens)
	return Violin{Coords: coords, Density: dens, Min: lo, Max: hi}
}

// boxWidth matches the common default of 15% of the position span,
// clamped to [0.15, 0.5].
func boxWidth(k int) float64 {
	return math.Min(math.Max(0.15*float64(k-1), 0.15), 0.5)
}
