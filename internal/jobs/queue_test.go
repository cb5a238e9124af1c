package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
)

type fakeRunner struct {
	release chan struct{} // when set, runs wait for it after the first snapshot
	err     error
}

func (f *fakeRunner) Model() string { return "fake-model" }

func (f *fakeRunner) Run(ctx context.Context, in pipeline.Input, extra ...pipeline.Observer) (*entity.BatchResult, error) {
	emit := func(s pipeline.Snapshot) {
		s.RunID = common.RunIDFromContext(ctx)
		for _, o := range extra {
			o(s)
		}
	}
	emit(pipeline.Snapshot{State: constants.StateParsingInput})
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		emit(pipeline.Snapshot{State: constants.StateError, Error: common.UserMessage(f.err)})
		return nil, &pipeline.RunError{State: constants.StateError, Err: f.err}
	}
	emit(pipeline.Snapshot{State: constants.StateParsingFile, Progress: &entity.ProcessProgress{CurrentDocument: in.Name, Total: 1}})
	emit(pipeline.Snapshot{State: constants.StateSuccess})

	res := entity.NewBatchResult()
	res.AddRecord(entity.ExtractionRecord{SourceName: in.Name})
	return res, nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func waitDone(t *testing.T, q *Queue, id uuid.UUID) entity.BatchJob {
	t.Helper()
	var job entity.BatchJob
	require.Eventually(t, func() bool {
		var err error
		job, err = q.Get(id)
		return err == nil && job.Done()
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestQueue_RunsToSuccess(t *testing.T) {
	q := NewQueue(&fakeRunner{}, quietLogger(), WithWorkers(2))
	defer q.Shutdown(context.Background())

	id, err := q.Submit(context.Background(), pipeline.Input{Name: "a.pdf"})
	require.NoError(t, err)

	job := waitDone(t, q, id)
	assert.Equal(t, constants.StateSuccess, job.State)
	assert.Equal(t, "a.pdf", job.SourceName)
	assert.Equal(t, "fake-model", job.ModelName)
	require.NotNil(t, job.Result)
	assert.Len(t, job.Result.Records, 1)
	assert.Nil(t, job.Progress)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.FinishedAt)
}

func TestQueue_RunErrorIsRecorded(t *testing.T) {
	q := NewQueue(&fakeRunner{err: common.NewAppError(common.CodeInput, "The ZIP file is empty.", common.ErrEmptyArchive)}, quietLogger())
	defer q.Shutdown(context.Background())

	id, err := q.Submit(context.Background(), pipeline.Input{Name: "x.zip"})
	require.NoError(t, err)

	job := waitDone(t, q, id)
	assert.Equal(t, constants.StateError, job.State)
	assert.Equal(t, "The ZIP file is empty.", job.Error)
	assert.Nil(t, job.Result)
}

func TestQueue_SubscribeStreamsUntilTerminal(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{})}
	q := NewQueue(runner, quietLogger())
	defer q.Shutdown(context.Background())

	id, err := q.Submit(context.Background(), pipeline.Input{Name: "a.pdf"})
	require.NoError(t, err)

	ch, cancel, err := q.Subscribe(id)
	require.NoError(t, err)
	defer cancel()
	close(runner.release)

	var last entity.BatchJob
	for snap := range ch {
		last = snap
	}
	assert.Equal(t, constants.StateSuccess, last.State)
	require.NotNil(t, last.Result)
}

func TestQueue_SubscribeAfterDone(t *testing.T) {
	q := NewQueue(&fakeRunner{}, quietLogger())
	defer q.Shutdown(context.Background())

	id, err := q.Submit(context.Background(), pipeline.Input{Name: "a.pdf"})
	require.NoError(t, err)
	waitDone(t, q, id)

	ch, cancel, err := q.Subscribe(id)
	require.NoError(t, err)
	defer cancel()

	snap, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, constants.StateSuccess, snap.State)
	_, ok = <-ch
	assert.False(t, ok)
}

func TestQueue_UnknownJob(t *testing.T) {
	q := NewQueue(&fakeRunner{}, quietLogger())
	defer q.Shutdown(context.Background())

	_, err := q.Get(uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, _, err = q.Subscribe(uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestQueue_SubmitAfterShutdown(t *testing.T) {
	q := NewQueue(&fakeRunner{}, quietLogger())
	q.Shutdown(context.Background())

	_, err := q.Submit(context.Background(), pipeline.Input{Name: "a.pdf"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_RunIDIsJobID(t *testing.T) {
	var seen string
	runner := &observingRunner{onRun: func(ctx context.Context) { seen = common.RunIDFromContext(ctx) }}
	q := NewQueue(runner, quietLogger())

	id, err := q.Submit(context.Background(), pipeline.Input{Name: "a.pdf"})
	require.NoError(t, err)
	waitDone(t, q, id)
	q.Shutdown(context.Background())

	assert.Equal(t, id.String(), seen)
}

type observingRunner struct {
	onRun func(context.Context)
}

func (o *observingRunner) Model() string { return "m" }

func (o *observingRunner) Run(ctx context.Context, _ pipeline.Input, _ ...pipeline.Observer) (*entity.BatchResult, error) {
	o.onRun(ctx)
	return entity.NewBatchResult(), nil
}
