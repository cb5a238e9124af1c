package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
)

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	in, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := s.deps.Queue.Submit(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id.String()})
}

func batchID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, common.NewAppError(common.CodeInput, "batch id must be a UUID", common.ErrInvalidInput)
	}
	return id, nil
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := batchID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	job, err := s.deps.Queue.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleExportBatch(w http.ResponseWriter, r *http.Request) {
	id, err := batchID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	job, err := s.deps.Queue.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	switch {
	case !job.Done():
		writeJSON(w, http.StatusConflict, errorResponse{Error: "batch is still running"})
		return
	case job.State == constants.StateError || job.Result == nil:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: job.Error})
		return
	}

	var (
		data        []byte
		contentType string
		ext         string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "xlsx":
		data, err = s.deps.Exporter.XLSX(job.Result)
		if err != nil {
			writeError(w, err)
			return
		}
		contentType, ext = constants.MIMEXLSX, "xlsx"
	case "csv":
		data = s.deps.Exporter.CSV(job.Result)
		contentType, ext = constants.MIMECSV, "csv"
	default:
		writeError(w, common.NewAppError(common.CodeInput,
			fmt.Sprintf("unsupported export format %q, use csv or xlsx", format), common.ErrInvalidInput))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="resumes-%s.%s"`, id, ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleBatchStream pushes job snapshots over a websocket until the job ends.
func (s *Server) handleBatchStream(w http.ResponseWriter, r *http.Request) {
	id, err := batchID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updates, cancel, err := s.deps.Queue.Subscribe(id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws.upgrade.failed", "job_id", id, "error", err)
		return
	}
	defer conn.Close()

	// reader goroutine notices the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			s.logger.Info("ws.client.closed", "job_id", id)
			return
		case snap, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
					time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(snap); err != nil {
				s.logger.Warn("ws.write.failed", "job_id", id, "error", err)
				return
			}
		}
	}
}
