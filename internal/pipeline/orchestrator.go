package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/archive"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/llm"
)

const msgInternal = "An unexpected error occurred while processing the file."

// Input is one submitted batch: a single document or a zip bundle.
type Input struct {
	Name         string
	Content      []byte
	DeclaredType string  // MIME type as declared by the uploader, may be empty
	Text         *string // pre-extracted text; the input is then a single document
}

// Snapshot is one observable transition of a run. Progress is nil outside
// per-document processing.
type Snapshot struct {
	RunID    string                  `json:"run_id"`
	State    constants.RunState      `json:"state"`
	Progress *entity.ProcessProgress `json:"progress,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Observer receives snapshots synchronously, in transition order.
type Observer func(Snapshot)

// RunError is a run-scoped failure. No BatchResult accompanies it.
type RunError struct {
	RunID string
	State constants.RunState
	Err   error
}

func (e *RunError) Error() string { return e.Err.Error() }
func (e *RunError) Unwrap() error { return e.Err }

// Message is the user-facing description of the failure.
func (e *RunError) Message() string { return common.UserMessage(e.Err) }

type Option func(*Orchestrator)

// WithObserver adds a progress observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithDocumentTimeout bounds each document's processing. Zero disables it.
func WithDocumentTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.docTimeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// Orchestrator drives a batch through the processor one document at a time.
type Orchestrator struct {
	processor  *Processor
	expander   *archive.Expander
	observers  []Observer
	docTimeout time.Duration
	logger     *slog.Logger
}

func NewOrchestrator(processor *Processor, expander *archive.Expander, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		processor: processor,
		expander:  expander,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.expander == nil {
		o.expander = archive.NewExpander(archive.Config{}, o.logger)
	}
	return o
}

// Model names the extraction service model, or "" when none is configured.
func (o *Orchestrator) Model() string {
	if o.processor == nil || !o.processor.Ready() {
		return ""
	}
	return o.processor.Parse.Client.Model()
}

// outcome is the tagged result of one document.
type outcome struct {
	name   string
	record *entity.ExtractionRecord
	err    error
}

type run struct {
	id        string
	observers []Observer
	state     constants.RunState
	progress  *entity.ProcessProgress
	logger    *slog.Logger
}

func (r *run) emit(state constants.RunState, errMsg string) {
	r.state = state
	snap := Snapshot{RunID: r.id, State: state, Error: errMsg}
	if r.progress != nil {
		p := *r.progress
		snap.Progress = &p
	}
	for _, obs := range r.observers {
		obs(snap)
	}
}

func (r *run) fail(err error) *RunError {
	r.progress = nil
	re := &RunError{RunID: r.id, State: constants.StateError, Err: err}
	r.logger.Error("batch.run.failed", "state_before", r.state, "error", err)
	r.emit(constants.StateError, re.Message())
	return re
}

// Run processes the input to a BatchResult. Document failures are collected
// in the result; a run-scoped failure returns a *RunError and a nil result.
// The run ID is taken from the context when present. extra observers apply to
// this run only.
func (o *Orchestrator) Run(ctx context.Context, in Input, extra ...Observer) (result *entity.BatchResult, err error) {
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.New().String()
		ctx = common.WithRunID(ctx, runID)
	}
	start := time.Now()
	observers := append(append([]Observer{}, o.observers...), extra...)
	r := &run{id: runID, observers: observers, logger: o.logger.With("run_id", runID)}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("batch.run.panic", "panic", p, "stack", string(debug.Stack()))
			result = nil
			err = r.fail(common.NewAppError(common.CodeInput, msgInternal,
				fmt.Errorf("%w: %v", common.ErrInternal, p)))
		}
	}()

	r.emit(constants.StateIdle, "")
	r.logger.Info("batch.run.start", "input", in.Name, "bytes", len(in.Content), "declared_type", in.DeclaredType)

	r.emit(constants.StateParsingInput, "")
	if o.processor == nil || !o.processor.Ready() {
		return nil, r.fail(llm.NotInitialized("extraction service", nil))
	}

	docs, pre, err := o.assemble(ctx, in)
	if err != nil {
		return nil, r.fail(err)
	}

	result = entity.NewBatchResult()
	for _, f := range pre {
		result.AddFailure(f.Name, f.Message)
	}

	r.progress = &entity.ProcessProgress{Total: len(docs)}
	for _, doc := range docs {
		oc := o.processOne(ctx, r, doc)
		fold(result, oc)
		if oc.err != nil {
			r.logger.Warn("pipeline.document.failed", "document", oc.name, "error", oc.err)
		} else {
			r.logger.Info("pipeline.document.ok", "document", oc.name)
		}
		r.progress.Processed++
	}

	r.progress = nil
	r.emit(constants.StateSuccess, "")
	r.logger.Info("batch.run.done",
		"records", len(result.Records),
		"failures", len(result.Failures),
		"attempted", result.Attempted,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// assemble turns the input into documents. Archive members that could not be
// read are returned as pre-recorded failures.
func (o *Orchestrator) assemble(ctx context.Context, in Input) ([]entity.Document, []archive.MemberFailure, error) {
	if in.Text != nil {
		return []entity.Document{{Name: in.Name, Text: in.Text}}, nil, nil
	}
	if constants.IsArchive(in.DeclaredType, in.Name) {
		res, err := o.expander.Expand(ctx, in.Content)
		if err != nil {
			return nil, nil, err
		}
		return res.Documents, res.Failed, nil
	}
	// an unsupported single file is still attempted, and fails in the extractor
	mt, ok := constants.ResolveMediaType(in.DeclaredType, in.Name)
	if !ok {
		mt = constants.MediaType(strings.ToUpper(constants.NormalizeExt(filepath.Ext(in.Name))))
	}
	return []entity.Document{{Name: in.Name, Content: in.Content, MediaType: mt}}, nil, nil
}

// processOne is the per-document isolation boundary: every error and panic
// becomes a failed outcome.
func (o *Orchestrator) processOne(ctx context.Context, r *run, doc entity.Document) (oc outcome) {
	oc.name = doc.Name
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("pipeline.document.panic", "document", doc.Name, "panic", p, "stack", string(debug.Stack()))
			oc.record = nil
			oc.err = common.NewAppError(common.CodeExtraction, msgInternal,
				fmt.Errorf("%w: %v", common.ErrInternal, p))
		}
	}()

	if o.docTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.docTimeout)
		defer cancel()
	}

	r.progress.CurrentDocument = doc.Name
	onStage := func(stage constants.Stage) {
		r.progress.Stage = stage
		switch stage {
		case constants.StageExtractingText:
			r.emit(constants.StateParsingFile, "")
		case constants.StageQueryingService:
			r.emit(constants.StateCallingService, "")
		}
	}

	rec, err := o.processor.ExtractOne(ctx, doc, onStage)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && o.docTimeout > 0 {
			err = common.NewAppError(common.CodeExtraction,
				fmt.Sprintf("Processing timed out after %s.", o.docTimeout), err)
		}
		oc.err = err
		return oc
	}
	oc.record = &rec
	return oc
}

// fold adds one outcome to the aggregate.
func fold(result *entity.BatchResult, oc outcome) {
	if oc.err != nil {
		result.AddFailure(oc.name, common.UserMessage(oc.err))
		return
	}
	result.AddRecord(*oc.record)
}
