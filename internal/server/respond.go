package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/jobs"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: common.UserMessage(err)}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		resp.Code = appErr.Code
	}
	writeJSON(w, statusFor(err), resp)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var runErr *pipeline.RunError
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &runErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrClientNotInitialized), errors.Is(err, jobs.ErrQueueClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrUnsupportedMediaType),
		errors.Is(err, common.ErrCorruptedDocument),
		errors.Is(err, common.ErrEmptyText),
		errors.Is(err, common.ErrEmptyArchive),
		errors.Is(err, common.ErrServiceBlocked):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
