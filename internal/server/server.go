// Package server exposes batch extraction over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/export"
	"github.com/joseph-ayodele/resume-extractor/internal/jobs"
)

// TextReader turns one uploaded document into text.
type TextReader interface {
	Run(ctx context.Context, doc entity.Document) (string, error)
}

// Scorer rates resume text against a job description.
type Scorer interface {
	Score(ctx context.Context, resumeText, jobDescription string) (int, error)
	Detailed(ctx context.Context, resumeText, jobDescription string) (entity.ATSMatch, error)
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Runner   jobs.Runner
	Queue    *jobs.Queue
	Text     TextReader
	Matcher  Scorer
	Exporter *export.Service
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	cfg        common.ServerConfig
	deps       Deps
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

func New(cfg common.ServerConfig, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 100 << 20
	}
	if deps.Exporter == nil {
		deps.Exporter = export.NewService(logger)
	}
	s := &Server{cfg: cfg, deps: deps, logger: logger}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds and wires all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: !slices.Contains(origins, "*"),
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(api chi.Router) {
		// these wait on the extraction service
		api.Post("/extract", s.handleExtract)
		api.Post("/extract/text", s.handleExtractText)
		api.Post("/ats-match", s.handleATSMatch)
		api.Get("/batches/{id}/ws", s.handleBatchStream)

		api.Group(func(timed chi.Router) {
			timed.Use(middleware.Timeout(60 * time.Second))
			timed.Post("/batches", s.handleSubmitBatch)
			timed.Get("/batches/{id}", s.handleGetBatch)
			timed.Get("/batches/{id}/export", s.handleExportBatch)
		})
	})
	return r
}

// Start runs the HTTP server until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http.listen", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http.shutdown")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	model := ""
	if s.deps.Runner != nil {
		model = s.deps.Runner.Model()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"model":         model,
		"service_ready": model != "",
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		rid := middleware.GetReqID(r.Context())
		r = r.WithContext(common.WithRequestID(r.Context(), rid))

		next.ServeHTTP(ww, r)

		s.logger.Info("http.request",
			"req_id", rid,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}
