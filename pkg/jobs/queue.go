// Package jobs runs typed background work on a fixed pool of goroutines with
// bounded retries.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const maxBackoff = 30 * time.Second

// Job is one unit of work.
type Job[T any] struct {
	ID       string
	Payload  T
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. A returned error schedules a retry.
type Handler[T any] func(context.Context, Job[T]) error

// Config sizes a Queue.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	// RetryDelay is the first backoff step; later attempts double it.
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue dispatches jobs of one payload type.
type Queue[T any] struct {
	name      string
	handler   Handler[T]
	cfg       Config
	logger    *zap.Logger
	onDiscard func(Job[T], error)

	jobs    chan Job[T]
	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	retries sync.WaitGroup
	mu      sync.RWMutex
	started bool
}

// New builds a stopped queue.
func New[T any](name string, handler Handler[T], cfg Config) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue[T]{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		jobs:    make(chan Job[T], cfg.BufferSize),
	}
}

// OnDiscard registers fn for jobs given up on, either after the last retry or
// because the queue stopped while a retry was pending. Call before Start.
func (q *Queue[T]) OnDiscard(fn func(Job[T], error)) {
	q.onDiscard = fn
}

// Start launches the workers. Later calls are no-ops.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.work(i + 1)
	}
	q.started = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels the workers and waits for them. Buffered jobs get one final
// attempt before the workers exit.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.workers.Wait()
	q.retries.Wait()
	q.logger.Info("queue stopped")
}

// Enqueue buffers job, blocking while the buffer is full.
func (q *Queue[T]) Enqueue(job Job[T]) error {
	q.mu.RLock()
	ctx, started := q.ctx, q.started
	q.mu.RUnlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("queue %s stopped: %w", q.name, err)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	}
}

// Len reports the number of buffered jobs.
func (q *Queue[T]) Len() int {
	return len(q.jobs)
}

func (q *Queue[T]) work(worker int) {
	defer q.workers.Done()
	for {
		select {
		case <-q.ctx.Done():
			q.drain(worker)
			return
		case job := <-q.jobs:
			if err := q.run(q.ctx, job); err != nil {
				q.retry(job, err)
			}
		}
	}
}

func (q *Queue[T]) drain(worker int) {
	ctx := context.WithoutCancel(q.ctx)
	for {
		select {
		case job := <-q.jobs:
			if err := q.run(ctx, job); err != nil {
				q.logger.Error("job failed during shutdown", zap.Int("worker", worker), zap.String("job_id", job.ID), zap.Error(err))
				q.discard(job, err)
			}
		default:
			return
		}
	}
}

func (q *Queue[T]) run(ctx context.Context, job Job[T]) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, p)
		}
	}()
	return q.handler(ctx, job)
}

// backoff returns the delay before attempt, doubling from RetryDelay.
func (q *Queue[T]) backoff(attempt int) time.Duration {
	d := q.cfg.RetryDelay
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

func (q *Queue[T]) retry(job Job[T], err error) {
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.logger.Error("job exceeded retries", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempt), zap.Error(err))
		q.discard(job, err)
		return
	}
	delay := q.backoff(job.Attempt)
	q.logger.Warn("job failed, retrying", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Duration("delay", delay), zap.Error(err))

	q.retries.Add(1)
	go func() {
		defer q.retries.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.discard(job, q.ctx.Err())
		case <-timer.C:
			if err := q.Enqueue(job); err != nil {
				q.discard(job, err)
			}
		}
	}()
}

func (q *Queue[T]) discard(job Job[T], err error) {
	if q.onDiscard != nil {
		q.onDiscard(job, err)
	}
}
