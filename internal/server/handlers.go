package server

import (
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/graphypad/pkg/buildinfo"
	"github.com/matzehuels/graphypad/pkg/chart"
	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/errors"
	"github.com/matzehuels/graphypad/pkg/pipeline"
	"github.com/matzehuels/graphypad/pkg/render"
)

// =============================================================================
// Responses
// =============================================================================

// datasetResponse describes a stored dataset.
type datasetResponse struct {
	ID       string   `json:"id"`
	Filename string   `json:"filename"`
	Columns  []string `json:"columns"`
	Numeric  []string `json:"numeric_columns"`
	Rows     int      `json:"rows"`
}

func describe(id string, ds *dataset.Dataset) datasetResponse {
	return datasetResponse{
		ID:       id,
		Filename: ds.Name,
		Columns:  ds.Names(),
		Numeric:  ds.NumericNames(),
		Rows:     ds.Rows(),
	}
}

// generateResponse carries the rendered chart.
type generateResponse struct {
	Image  string        `json:"image"`
	Code   string        `json:"code"`
	Spec   chart.Request `json:"spec"`
	Cached bool          `json:"cached"`
}

// =============================================================================
// Static
// =============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := static.ReadFile("static/index.html")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+dataset.SampleFilename+`"`)
	_, _ = w.Write(dataset.SampleCSV())
}

// =============================================================================
// Datasets
// =============================================================================

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, s.logger, formError(err, `multipart field "file" is required`))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, s.logger, formError(err, "read upload"))
		return
	}
	ds, err := pipeline.Load(data, filepath.Base(hdr.Filename))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	id, err := s.uploads.Put(r.Context(), ds)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.logger.Debug("stored upload", "id", id, "file", ds.Name, "rows", ds.Rows(), "columns", len(ds.Columns))
	writeJSON(w, http.StatusCreated, describe(id, ds))
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FileID string   `json:"file_id"`
		NewCol string   `json:"new_col"`
		ColA   string   `json:"col_a"`
		Factor *float64 `json:"factor"`
	}
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, s.logger, bodyError(err))
			return
		}
	} else {
		f := formReader{r: r}
		body.FileID = f.str("file_id")
		body.NewCol = f.str("new_col")
		body.ColA = f.str("col_a")
		body.Factor = f.float("factor")
		if f.err != nil {
			writeError(w, s.logger, f.err)
			return
		}
	}
	if body.FileID == "" {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidRequest, "file_id is required"))
		return
	}
	if body.ColA == "" {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidRequest, "col_a is required"))
		return
	}
	factor := 1.0
	if body.Factor != nil {
		factor = *body.Factor
	}

	ds, err := s.uploads.Get(r.Context(), body.FileID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	derived, err := dataset.Derive(ds, body.ColA, body.NewCol, factor)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.uploads.Replace(r.Context(), body.FileID, derived); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(body.FileID, derived))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ds, err := s.uploads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	number, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	size, err := queryInt(r, "size", dataset.DefaultPageSize)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	page, err := dataset.Paginate(ds, size, number)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleSparkline(w http.ResponseWriter, r *http.Request) {
	ds, err := s.uploads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	name := chi.URLParam(r, "column")
	col, ok := ds.Column(name)
	if !ok {
		writeError(w, s.logger, errors.Column(errors.ErrCodeInvalidColumn, name, "unknown column %q", name))
		return
	}
	if !col.IsNumeric() {
		writeError(w, s.logger, errors.Column(errors.ErrCodeInvalidColumn, name, "column %q is not numeric", name))
		return
	}
	width, err := queryInt(r, "w", render.SparklineWidth)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	height, err := queryInt(r, "h", render.SparklineHeight)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	img, err := render.Sparkline(col.Floats(), width, height)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img)
}

// =============================================================================
// Charts
// =============================================================================

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id, req, err := decodeGenerate(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if id == "" {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidRequest, "file_id is required"))
		return
	}
	ds, err := s.uploads.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), ds, req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Image:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(res.Image),
		Code:   res.Code,
		Spec:   chart.RequestFromSpec(res.Spec),
		Cached: res.CacheInfo.RenderHit,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// queryInt reads a positive integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, errors.New(errors.ErrCodeInvalidPage, "%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}

// formError keeps size limit errors and reports everything else as a bad
// upload.
func formError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return err
	}
	return errors.Wrap(errors.ErrCodeInvalidFile, err, "%s", msg)
}
