package server

import (
	"encoding/json"
	stderrors "errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/graphypad/pkg/chart"
	"github.com/matzehuels/graphypad/pkg/errors"
)

// generateBody is the JSON form of a /generate request.
type generateBody struct {
	FileID string `json:"file_id"`
	chart.Request
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

// decodeGenerate reads the file id and chart request from a JSON body or
// from form fields named like the JSON keys.
func decodeGenerate(r *http.Request) (string, chart.Request, error) {
	if isJSON(r) {
		var body generateBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", chart.Request{}, bodyError(err)
		}
		return body.FileID, body.Request, nil
	}

	f := formReader{r: r}
	req := chart.Request{
		ChartType:     f.str("chart_type"),
		XAxis:         f.str("x_axis"),
		YAxisList:     f.str("y_axis_list"),
		SeriesKinds:   f.str("series_kinds"),
		Axes:          f.str("axes"),
		Title:         f.str("title"),
		XName:         f.str("x_name"),
		XUnit:         f.str("x_unit"),
		YName:         f.str("y_name"),
		YUnit:         f.str("y_unit"),
		AxisLabels:    f.str("axis_labels"),
		MarkerSize:    f.float("marker_size"),
		LineWidth:     f.float("line_width"),
		FigWidth:      f.float("fig_width"),
		FigHeight:     f.float("fig_height"),
		TitleSize:     f.float("font_title"),
		LabelSize:     f.float("font_label"),
		TickSize:      f.float("font_tick"),
		TickDirection: f.str("tick_direction"),
		MajorGrid:     f.bool("major_grid"),
		MinorGrid:     f.bool("minor_grid"),
		MinorTicks:    f.bool("minor_ticks"),
		XMajorTick:    f.float("x_major_tick"),
		XMinorTick:    f.float("x_minor_tick"),
		YMajorTick:    f.float("y_major_tick"),
		YMinorTick:    f.float("y_minor_tick"),
		XMin:          f.float("x_min"),
		XMax:          f.float("x_max"),
		YMin:          f.float("y_min"),
		YMax:          f.float("y_max"),
		Aspect:        f.str("aspect"),
	}
	return f.str("file_id"), req, f.err
}

// formReader reads typed form values, keeping the first parse error.
// Blank values are treated as absent.
type formReader struct {
	r   *http.Request
	err error
}

func (f *formReader) str(name string) string {
	return strings.TrimSpace(f.r.FormValue(name))
}

func (f *formReader) float(name string) *float64 {
	s := f.str(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.fail(name, s, "a number")
		return nil
	}
	return &v
}

func (f *formReader) bool(name string) *bool {
	s := f.str(name)
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "on", "yes":
		s = "true"
	case "off", "no":
		s = "false"
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		f.fail(name, s, "a boolean")
		return nil
	}
	return &v
}

func (f *formReader) fail(name, value, want string) {
	if f.err == nil {
		f.err = errors.New(errors.ErrCodeInvalidRequest, "field %s: %q is not %s", name, value, want)
	}
}

// bodyError turns a body decoding failure into a validation error, keeping
// size limit errors intact for the caller.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return err
	}
	return errors.Wrap(errors.ErrCodeInvalidJSON, err, "invalid request body: %v", err)
}
