package chart

import (
	"encoding/json"
	"strconv"
)

// Request is a chart request as submitted by a front end. Fields mirror the
// HTTP form: scalars are strings or optional numbers, and list or mapping
// fields arrive JSON-encoded. Request is validated once by Normalize and is
// never passed further down the pipeline.
type Request struct {
	ChartType string `json:"chart_type" yaml:"chart_type"`
	XAxis     string `json:"x_axis,omitempty" yaml:"x_axis,omitempty"`
	// YAxisList is a JSON array of column names, e.g. ["a","b"].
	YAxisList string `json:"y_axis_list" yaml:"y_axis_list"`
	// SeriesKinds is a JSON object mapping a column to line, scatter or bar.
	// Composite charts only.
	SeriesKinds string `json:"series_kinds,omitempty" yaml:"series_kinds,omitempty"`
	// Axes is a JSON object mapping a column to its axis index. Composite
	// charts only.
	Axes string `json:"axes,omitempty" yaml:"axes,omitempty"`

	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	XName string `json:"x_name,omitempty" yaml:"x_name,omitempty"`
	XUnit string `json:"x_unit,omitempty" yaml:"x_unit,omitempty"`
	YName string `json:"y_name,omitempty" yaml:"y_name,omitempty"`
	YUnit string `json:"y_unit,omitempty" yaml:"y_unit,omitempty"`
	// AxisLabels is a JSON object keyed by axis index ("1", "2", ...) whose
	// values are {"name": ..., "unit": ...}. Axis 0 uses YName and YUnit.
	AxisLabels string `json:"axis_labels,omitempty" yaml:"axis_labels,omitempty"`

	MarkerSize *float64 `json:"marker_size,omitempty" yaml:"marker_size,omitempty"`
	LineWidth  *float64 `json:"line_width,omitempty" yaml:"line_width,omitempty"`
	FigWidth   *float64 `json:"fig_width,omitempty" yaml:"fig_width,omitempty"`
	FigHeight  *float64 `json:"fig_height,omitempty" yaml:"fig_height,omitempty"`
	TitleSize  *float64 `json:"font_title,omitempty" yaml:"font_title,omitempty"`
	LabelSize  *float64 `json:"font_label,omitempty" yaml:"font_label,omitempty"`
	TickSize   *float64 `json:"font_tick,omitempty" yaml:"font_tick,omitempty"`

	TickDirection string `json:"tick_direction,omitempty" yaml:"tick_direction,omitempty"`
	MajorGrid     *bool  `json:"major_grid,omitempty" yaml:"major_grid,omitempty"`
	MinorGrid     *bool  `json:"minor_grid,omitempty" yaml:"minor_grid,omitempty"`
	MinorTicks    *bool  `json:"minor_ticks,omitempty" yaml:"minor_ticks,omitempty"`

	XMajorTick *float64 `json:"x_major_tick,omitempty" yaml:"x_major_tick,omitempty"`
	XMinorTick *float64 `json:"x_minor_tick,omitempty" yaml:"x_minor_tick,omitempty"`
	YMajorTick *float64 `json:"y_major_tick,omitempty" yaml:"y_major_tick,omitempty"`
	YMinorTick *float64 `json:"y_minor_tick,omitempty" yaml:"y_minor_tick,omitempty"`

	XMin *float64 `json:"x_min,omitempty" yaml:"x_min,omitempty"`
	XMax *float64 `json:"x_max,omitempty" yaml:"x_max,omitempty"`
	YMin *float64 `json:"y_min,omitempty" yaml:"y_min,omitempty"`
	YMax *float64 `json:"y_max,omitempty" yaml:"y_max,omitempty"`
	// Aspect is "auto", "equal" or a positive number.
	Aspect string `json:"aspect,omitempty" yaml:"aspect,omitempty"`
}

// RequestFromSpec rebuilds a request from a normalized spec. Normalizing the
// result against the same dataset yields an identical spec.
func RequestFromSpec(s *ChartSpec) Request {
	st := s.Style
	req := Request{
		ChartType:     string(s.Type),
		XAxis:         s.XColumn,
		YAxisList:     mustJSON(s.YColumns),
		Title:         s.Labels.Title,
		XName:         s.Labels.X.Name,
		XUnit:         s.Labels.X.Unit,
		YName:         s.Labels.Y[0].Name,
		YUnit:         s.Labels.Y[0].Unit,
		MarkerSize:    ptr(st.MarkerSize),
		LineWidth:     ptr(st.LineWidth),
		FigWidth:      ptr(st.Width),
		FigHeight:     ptr(st.Height),
		TitleSize:     ptr(st.TitleSize),
		LabelSize:     ptr(st.LabelSize),
		TickSize:      ptr(st.TickSize),
		TickDirection: string(st.TickDirection),
		MajorGrid:     ptr(st.MajorGrid),
		MinorGrid:     ptr(st.MinorGrid),
		MinorTicks:    ptr(st.MinorTicks),
		XMajorTick:    nonZero(st.XTicks.Major),
		XMinorTick:    nonZero(st.XTicks.Minor),
		YMajorTick:    nonZero(st.YTicks.Major),
		YMinorTick:    nonZero(st.YTicks.Minor),
		XMin:          s.Ranges.X.Min,
		XMax:          s.Ranges.X.Max,
		YMin:          s.Ranges.Y.Min,
		YMax:          s.Ranges.Y.Max,
		Aspect:        s.Ranges.Aspect.String(),
	}

	if s.Type == Composite {
		kinds := make(map[string]string, len(s.SeriesKinds))
		for c, k := range s.SeriesKinds {
			kinds[c] = string(k)
		}
		req.SeriesKinds = mustJSON(kinds)
		req.Axes = mustJSON(s.Axes)
	}

	extra := make(map[string]AxisLabel)
	for i, l := range s.Labels.Y {
		if i > 0 && !l.IsZero() {
			extra[strconv.Itoa(i)] = l
		}
	}
	if len(extra) > 0 {
		req.AxisLabels = mustJSON(extra)
	}
	return req
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic("chart: marshal request field: " + err.Error())
	}
	return string(data)
}

func ptr[T any](v T) *T { return &v }

func nonZero(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
