package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
)

const multipartMemory = 32 << 20

type extractTextRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// readUpload reads the multipart "file" field into a batch input.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (pipeline.Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return pipeline.Input{}, maxBytes
		}
		return pipeline.Input{}, common.NewAppError(common.CodeInput, "expected a multipart form with a file field", common.ErrInvalidInput)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return pipeline.Input{}, common.NewAppError(common.CodeInput, "file is required", common.ErrInvalidInput)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("read upload: %w", err)
	}
	return pipeline.Input{
		Name:         filepath.Base(header.Filename),
		Content:      data,
		DeclaredType: header.Header.Get("Content-Type"),
	}, nil
}

// handleExtract runs a batch synchronously and returns the BatchResult.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	in, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.Runner.Run(r.Context(), in)
	if err != nil {
		s.logger.Warn("http.extract.failed", "req_id", common.RequestIDFromContext(r.Context()), "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleExtractText runs a single document whose text is already known.
func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	var req extractTextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)).Decode(&req); err != nil {
		writeError(w, common.NewAppError(common.CodeInput, "invalid JSON body", common.ErrInvalidInput))
		return
	}

	v := common.NewValidator()
	v.Field("name", req.Name, common.Required, common.MaxLength(255))
	if err := v.Err(); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.deps.Runner.Run(r.Context(), pipeline.Input{Name: req.Name, Text: &req.Text})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
