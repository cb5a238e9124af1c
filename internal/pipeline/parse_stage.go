package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/llm"
)

// ParseStage queries the extraction service and turns its reply into a record.
type ParseStage struct {
	Client llm.Client
	Logger *slog.Logger
}

func NewParseStage(client llm.Client, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{Client: client, Logger: logger}
}

// Run builds the prompt, calls the service, then sanitizes, shape-checks and
// normalizes the reply. SourceName is set to name.
func (p *ParseStage) Run(ctx context.Context, name, text string) (entity.ExtractionRecord, error) {
	if p.Client == nil {
		return entity.ExtractionRecord{}, llm.NotInitialized("extraction service", nil)
	}
	start := time.Now()

	raw, err := p.Client.Generate(ctx, llm.BuildExtractionPrompt(text))
	if err != nil {
		return entity.ExtractionRecord{}, err
	}

	parsed, report, err := llm.ParseResponse(raw)
	if err != nil {
		p.Logger.Warn("pipeline.parse.unparseable",
			"document", name,
			"reply_len", len(raw),
			"passes", report.Applied,
		)
		return entity.ExtractionRecord{}, err
	}
	if len(report.Warnings) > 0 {
		p.Logger.Debug("pipeline.parse.sanitized", "document", name, "passes", report.Applied, "warnings", report.Warnings)
	}

	// schema mismatches are tolerated; the normalizer applies defaults
	if err := llm.ValidateRecordShape(parsed); err != nil {
		p.Logger.Debug("pipeline.parse.schema_mismatch", "document", name, "error", err)
	}

	rec, warnings, err := llm.Normalize(parsed)
	if err != nil {
		return entity.ExtractionRecord{}, err
	}
	for _, w := range warnings {
		p.Logger.Warn("pipeline.normalize.warning", "document", name, "detail", w)
	}
	rec.SourceName = name

	p.Logger.Info("pipeline.parse.ok",
		"document", name,
		"model", p.Client.Model(),
		"experiences", len(rec.WorkExperience),
		"ats_score", rec.ATSScore,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}
