package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphypad/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Kind    string      `json:"error_kind"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Column  string      `json:"column,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and writes the error body. Internal
// errors are logged and reported without their detail.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		err = errors.Wrap(errors.ErrCodeInvalidFile, err, "request body exceeds %d bytes", tooLarge.Limit)
	}

	body := errorBody{
		Kind: errors.KindOf(err),
		Code: errors.GetCode(err),
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		body.Column = e.Column
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
		if body.Code == "" {
			body.Code = errors.ErrCodeInternal
		}
		body.Message = "internal error"
	} else {
		body.Message = errors.UserMessage(err)
	}
	if tooLarge != nil {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, body)
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusMethodNotAllowed
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsRender(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func errNotFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

func errMethod(method string) error {
	return errors.New(errors.ErrCodeUnsupported, "method %s not allowed", method)
}
