package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/extract"
	"github.com/joseph-ayodele/resume-extractor/internal/llm"
)

// StageFunc is told when a document enters a progress stage.
type StageFunc func(constants.Stage)

// Processor coordinates text extraction then the service parse for one document.
type Processor struct {
	Logger *slog.Logger
	Text   *TextStage
	Parse  *ParseStage
}

func NewProcessor(logger *slog.Logger, tx extract.TextExtractor, client llm.Client) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger: logger,
		Text:   NewTextStage(tx, logger),
		Parse:  NewParseStage(client, logger),
	}
}

// Ready reports whether an extraction service client is configured.
func (p *Processor) Ready() bool {
	return p.Parse != nil && p.Parse.Client != nil
}

// ExtractOne runs one document to a record or a document-scoped error.
// onStage may be nil; QUERYING_SERVICE is reported only after text extraction succeeds.
func (p *Processor) ExtractOne(ctx context.Context, doc entity.Document, onStage StageFunc) (entity.ExtractionRecord, error) {
	if onStage == nil {
		onStage = func(constants.Stage) {}
	}

	onStage(constants.StageExtractingText)
	text, err := p.Text.Run(ctx, doc)
	if err != nil {
		p.Logger.Error("processor.text.failed", "document", doc.Name, "err", err)
		return entity.ExtractionRecord{}, err
	}

	onStage(constants.StageQueryingService)
	rec, err := p.Parse.Run(ctx, doc.Name, text)
	if err != nil {
		p.Logger.Error("processor.parse.failed", "document", doc.Name, "err", err)
		return entity.ExtractionRecord{}, err
	}
	return rec, nil
}
