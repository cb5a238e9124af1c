// Package app wires configuration into the extraction pipeline and its collaborators.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/resume-extractor/internal/archive"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/export"
	"github.com/joseph-ayodele/resume-extractor/internal/extract"
	"github.com/joseph-ayodele/resume-extractor/internal/llm"
	"github.com/joseph-ayodele/resume-extractor/internal/llm/providers"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
	"github.com/joseph-ayodele/resume-extractor/internal/source"
)

// App holds the wired components shared by the CLI and the daemon.
type App struct {
	Config       *common.Config
	Logger       *slog.Logger
	Client       llm.Client // nil when no credentials are configured
	Processor    *pipeline.Processor
	Orchestrator *pipeline.Orchestrator
	Matcher      *pipeline.Matcher
	Exporter     *export.Service
	Loader       *source.Loader
}

// Build validates cfg and constructs every component. A missing extraction
// service credential is not fatal: the client stays nil and every run ends
// with a run-scoped error instead.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := providers.New(ctx, cfg.LLM, logger)
	switch {
	case errors.Is(err, common.ErrClientNotInitialized):
		logger.Warn("extraction service not configured, runs will fail until credentials are set",
			"provider", cfg.LLM.Provider, "error", err)
		client = nil
	case err != nil:
		return nil, err
	default:
		logger.Info("extraction service initialized", "provider", cfg.LLM.Provider, "model", client.Model())
	}

	var store source.ObjectStore
	if cfg.Storage.AWSRegion != "" {
		s3Store, err := source.NewS3Store(ctx, cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		store = s3Store
	}

	extractor := extract.NewExtractor(extract.Config{
		MaxPages: cfg.Extraction.MaxPDFPages,
		OCR: extract.OCRConfig{
			Enabled: cfg.Extraction.OCREnabled,
			Lang:    cfg.Extraction.OCRLang,
		},
	}, logger)
	processor := pipeline.NewProcessor(logger, extractor, client)
	expander := archive.NewExpander(archive.Config{
		MaxEntryBytes: cfg.Extraction.MaxEntryBytes,
		Workers:       cfg.Extraction.ExpandWorkers,
	}, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Processor: processor,
		Orchestrator: pipeline.NewOrchestrator(processor, expander,
			pipeline.WithLogger(logger),
			pipeline.WithDocumentTimeout(cfg.Extraction.DocumentTimeout),
		),
		Matcher:  pipeline.NewMatcher(client, logger),
		Exporter: export.NewService(logger),
		Loader:   source.NewLoader(store, cfg.Storage.Bucket, logger),
	}, nil
}

// Close releases the extraction service client.
func (a *App) Close() error {
	if c, ok := a.Client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
