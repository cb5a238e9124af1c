package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/extract"
)

const msgEmptyText = "Could not extract text or file is empty."

type TextStage struct {
	TextExtractor extract.TextExtractor
	Logger        *slog.Logger
}

func NewTextStage(tx extract.TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{TextExtractor: tx, Logger: logger}
}

// Run returns the document text, using pre-extracted text when the document
// carries it. Blank text is an ErrEmptyText failure.
func (s *TextStage) Run(ctx context.Context, doc entity.Document) (string, error) {
	if doc.HasText() {
		if strings.TrimSpace(*doc.Text) == "" {
			return "", common.NewAppError(common.CodeExtraction, msgEmptyText, common.ErrEmptyText)
		}
		return *doc.Text, nil
	}

	start := time.Now()
	res, err := s.TextExtractor.Extract(ctx, doc.Content, doc.MediaType)
	if err != nil {
		s.Logger.Warn("pipeline.text.failed",
			"document", doc.Name,
			"media_type", doc.MediaType,
			"error", err,
		)
		return "", err
	}
	if strings.TrimSpace(res.Text) == "" {
		s.Logger.Warn("pipeline.text.empty", "document", doc.Name, "warnings", res.Warnings)
		return "", common.NewAppError(common.CodeExtraction, msgEmptyText, common.ErrEmptyText)
	}

	s.Logger.Info("pipeline.text.ok",
		"document", doc.Name,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res.Text, nil
}
