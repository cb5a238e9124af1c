// Package jobs runs batches in the background and fans their progress out to subscribers.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Runner executes one batch. *pipeline.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input, extra ...pipeline.Observer) (*entity.BatchResult, error)
	Model() string
}

type task struct {
	id    uuid.UUID
	input pipeline.Input
}

// Queue is a bounded worker pool over a Runner with per-job snapshots.
type Queue struct {
	runner  Runner
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan task
	wg   sync.WaitGroup
	once sync.Once

	sendMu sync.RWMutex // held for reading while sending on ch
	closed bool

	mu      sync.Mutex
	jobs    map[uuid.UUID]*entity.BatchJob
	subs    map[uuid.UUID]map[int]chan entity.BatchJob
	nextSub int
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan task, n)
		}
	}
}
func WithRunTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(runner Runner, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		runner:  runner,
		logger:  logger,
		workers: 1,
		timeout: 30 * time.Minute,
		ch:      make(chan task, 64),
		jobs:    map[uuid.UUID]*entity.BatchJob{},
		subs:    map[uuid.UUID]map[int]chan entity.BatchJob{},
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("jobs.worker.started", "worker_id", workerID)
				for t := range q.ch {
					q.execute(workerID, t)
				}
				q.logger.Info("jobs.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Submit queues a batch and returns its job ID. When the queue is full it
// waits for room until ctx is done.
func (q *Queue) Submit(ctx context.Context, in pipeline.Input) (uuid.UUID, error) {
	q.sendMu.RLock()
	defer q.sendMu.RUnlock()
	if q.closed {
		q.logger.Warn("jobs.submit.rejected", "source", in.Name, "reason", "closed")
		return uuid.Nil, ErrQueueClosed
	}

	id := uuid.New()
	q.mu.Lock()
	q.jobs[id] = &entity.BatchJob{
		ID:         id,
		SourceName: in.Name,
		State:      constants.StateIdle,
		ModelName:  q.runner.Model(),
		QueuedAt:   time.Now().UTC(),
	}
	q.mu.Unlock()

	t := task{id: id, input: in}
	select {
	case q.ch <- t:
	default:
		q.logger.Warn("jobs.queue.full", "job_id", id)
		select {
		case q.ch <- t:
		case <-ctx.Done():
			q.mu.Lock()
			delete(q.jobs, id)
			q.mu.Unlock()
			return uuid.Nil, ctx.Err()
		}
	}
	q.logger.Info("jobs.submit.ok", "job_id", id, "source", in.Name, "bytes", len(in.Content))
	return id, nil
}

// Get returns a copy of the job's current snapshot.
func (q *Queue) Get(id uuid.UUID) (entity.BatchJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return entity.BatchJob{}, common.NewAppError(common.CodeInput, "batch not found", common.ErrNotFound)
	}
	return snapshot(j), nil
}

// Subscribe streams snapshots of a job, starting with the current one. The
// channel is closed after the terminal snapshot or when cancel is called.
// Intermediate snapshots may be dropped for a slow reader; the terminal one is not.
func (q *Queue) Subscribe(id uuid.UUID) (<-chan entity.BatchJob, func(), error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return nil, nil, common.NewAppError(common.CodeInput, "batch not found", common.ErrNotFound)
	}

	ch := make(chan entity.BatchJob, 16)
	ch <- snapshot(j)
	if j.Done() {
		close(ch)
		return ch, func() {}, nil
	}

	q.nextSub++
	key := q.nextSub
	if q.subs[id] == nil {
		q.subs[id] = map[int]chan entity.BatchJob{}
	}
	q.subs[id][key] = ch

	cancel := func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if c, ok := q.subs[id][key]; ok {
			delete(q.subs[id], key)
			close(c)
		}
	}
	return ch, cancel, nil
}

func (q *Queue) execute(workerID int, t task) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithRunID(ctx, t.id.String())

	now := time.Now().UTC()
	q.update(t.id, func(j *entity.BatchJob) { j.StartedAt = &now })

	result, err := q.runner.Run(ctx, t.input, func(s pipeline.Snapshot) {
		if s.State.Terminal() {
			// published below with the result attached
			return
		}
		q.update(t.id, func(j *entity.BatchJob) {
			j.State = s.State
			j.Progress = s.Progress
		})
	})

	done := time.Now().UTC()
	q.update(t.id, func(j *entity.BatchJob) {
		j.Progress = nil
		j.FinishedAt = &done
		if err != nil {
			j.State = constants.StateError
			j.Error = common.UserMessage(err)
			return
		}
		j.State = constants.StateSuccess
		j.Result = result
	})

	if err != nil {
		q.logger.Error("jobs.run.failed", "worker_id", workerID, "job_id", t.id, "error", err)
		return
	}
	q.logger.Info("jobs.run.ok",
		"worker_id", workerID,
		"job_id", t.id,
		"records", len(result.Records),
		"failures", len(result.Failures),
		"elapsed_ms", done.Sub(now).Milliseconds(),
	)
}

// update mutates a job under the lock and publishes the new snapshot.
func (q *Queue) update(id uuid.UUID, fn func(*entity.BatchJob)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return
	}
	fn(j)
	snap := snapshot(j)

	for key, ch := range q.subs[id] {
		if snap.Done() {
			// make room so the terminal snapshot always lands
			for sent := false; !sent; {
				select {
				case ch <- snap:
					sent = true
				default:
					select {
					case <-ch:
					default:
					}
				}
			}
			close(ch)
			delete(q.subs[id], key)
			continue
		}
		select {
		case ch <- snap:
		default:
		}
	}
	if snap.Done() {
		delete(q.subs, id)
	}
}

func snapshot(j *entity.BatchJob) entity.BatchJob {
	out := *j
	if j.Progress != nil {
		p := *j.Progress
		out.Progress = &p
	}
	return out
}

// Shutdown stops accepting jobs and waits for queued ones to finish or ctx to end.
func (q *Queue) Shutdown(ctx context.Context) {
	q.sendMu.Lock()
	if q.closed {
		q.sendMu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.sendMu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("jobs.shutdown.interrupted")
	case <-done:
		q.logger.Info("jobs.shutdown.ok")
	}
}
