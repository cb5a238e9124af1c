package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/resume-extractor/internal/app"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/jobs"
	"github.com/joseph-ayodele/resume-extractor/internal/server"
)

func main() {
	cfg, err := common.LoadConfigFile(os.Getenv("RESUMED_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, cleanup := common.SetupLogger(cfg.Logging.File, common.ParseLevel(cfg.Logging.Level))
	defer cleanup()
	slog.SetDefault(logger)

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	queue := jobs.NewQueue(a.Orchestrator, logger,
		jobs.WithWorkers(cfg.Server.Workers),
		jobs.WithQueueSize(cfg.Server.QueueSize),
		jobs.WithRunTimeout(cfg.Server.RunTimeout),
	)

	srv := server.New(cfg.Server, server.Deps{
		Runner:   a.Orchestrator,
		Queue:    queue,
		Text:     a.Processor.Text,
		Matcher:  a.Matcher,
		Exporter: a.Exporter,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
