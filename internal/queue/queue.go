// Package queue runs analysis tasks on an in-process worker pool with
// bounded retries, soft and hard per-attempt timeouts, and TTL-bound result
// storage. Tasks survive model timeouts and worker panics through retries;
// errors the workflow itself records are terminal and never retried.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-copilot/internal/report"
	"github.com/jonathan/job-copilot/internal/workflow"
)

// Config holds the worker pool and retry policy settings.
type Config struct {
	// Concurrency is the number of worker goroutines.
	Concurrency int
	// QueueDepth is the task channel capacity; Enqueue fails once full.
	QueueDepth int
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// RetryDelay is the base delay before a retry; it doubles per attempt.
	RetryDelay time.Duration
	// SoftTimeout cancels the attempt's context and schedules a retry.
	SoftTimeout time.Duration
	// SoftRetryDelay is the fixed delay after a soft timeout.
	SoftRetryDelay time.Duration
	// HardTimeout is how long a cancelled attempt may linger before the
	// worker abandons it and retries with backoff.
	HardTimeout time.Duration
	// ResultTTL is how long terminal results stay queryable.
	ResultTTL time.Duration
	// CleanupInterval is how often expired results are purged.
	CleanupInterval time.Duration
}

// DefaultConfig returns the production retry policy.
func DefaultConfig() Config {
	return Config{
		Concurrency:     4,
		QueueDepth:      256,
		MaxRetries:      3,
		RetryDelay:      60 * time.Second,
		SoftTimeout:     60 * time.Second,
		SoftRetryDelay:  30 * time.Second,
		HardTimeout:     120 * time.Second,
		ResultTTL:       time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}

// ErrQueueFull is returned by Enqueue when the task channel is at capacity.
var ErrQueueFull = errors.New("queue is full")

// ErrNotRunning is returned by Enqueue before Start or after Stop.
var ErrNotRunning = errors.New("queue is not running")

// Runner executes one analysis; *workflow.Graph satisfies it. The
// indirection lets tests substitute a controllable executor.
type Runner interface {
	Execute(ctx context.Context, jobPosting, resume string) *workflow.State
}

// Queue is the worker pool plus its result store.
type Queue struct {
	cfg    Config
	runner Runner

	tasks   chan *Task
	results *resultStore

	group  *errgroup.Group
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a stopped queue. Call Start before Enqueue.
func New(runner Runner, cfg Config) *Queue {
	return &Queue{
		cfg:     cfg,
		runner:  runner,
		results: newResultStore(),
	}
}

// Start launches the workers and the result cleanup loop. The queue stops
// when ctx is cancelled or Stop is called.
func (q *Queue) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.tasks = make(chan *Task, q.cfg.QueueDepth)
	q.done = make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	q.group = g

	for i := 0; i < q.cfg.Concurrency; i++ {
		g.Go(func() error {
			q.worker(gctx)
			return nil
		})
	}
	g.Go(func() error {
		q.cleanupLoop(gctx)
		return nil
	})

	go func() {
		_ = g.Wait()
		close(q.done)
	}()
}

// Stop cancels the workers and waits for in-flight attempts to unwind.
func (q *Queue) Stop() {
	if q.cancel == nil {
		return
	}
	q.cancel()
	<-q.done
	q.cancel = nil
}

// Enqueue submits one analysis and returns its task ID.
func (q *Queue) Enqueue(jobPosting, resume, userID string) (string, error) {
	if q.cancel == nil {
		return "", ErrNotRunning
	}
	t := &Task{
		ID:         uuid.New().String(),
		UserID:     userID,
		JobPosting: jobPosting,
		Resume:     resume,
	}
	select {
	case q.tasks <- t:
	default:
		return "", ErrQueueFull
	}
	q.results.put(&Result{
		TaskID:     t.ID,
		UserID:     t.UserID,
		Status:     StatusPending,
		EnqueuedAt: time.Now().UTC(),
	})
	return t.ID, nil
}

// Result returns the stored result for a task ID, or false if the ID is
// unknown or the result has expired.
func (q *Queue) Result(taskID string) (*Result, bool) {
	return q.results.get(taskID)
}

func (q *Queue) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-q.tasks:
			q.process(ctx, t)
		}
	}
}

// process runs a task through its attempts. Soft timeouts retry after a
// fixed delay, hard timeouts and panics retry with exponential backoff, and
// workflow-recorded errors complete the task without retrying.
func (q *Queue) process(ctx context.Context, t *Task) {
	for attempt := 0; ; attempt++ {
		q.results.setStatus(t.ID, StatusRunning, attempt)

		st, attemptErr := q.runOnce(ctx, t)
		if attemptErr == nil {
			q.complete(t, st, attempt)
			return
		}
		if ctx.Err() != nil {
			q.cancelTask(t, attempt)
			return
		}

		if attempt >= q.cfg.MaxRetries {
			log.Printf("task %s: retries exhausted: %v", t.ID, attemptErr)
			q.results.finish(t.ID, func(r *Result) {
				r.Status = StatusFailed
				r.Success = false
				r.Error = attemptErr.Error()
				r.Retries = attempt
				r.RetriesExhausted = true
			})
			return
		}

		delay := q.cfg.RetryDelay << attempt
		if errors.Is(attemptErr, errSoftTimeout) {
			delay = q.cfg.SoftRetryDelay
		}
		log.Printf("task %s: attempt %d failed (%v), retrying in %s", t.ID, attempt+1, attemptErr, delay)
		q.results.setStatus(t.ID, StatusRetrying, attempt+1)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			q.cancelTask(t, attempt)
			return
		}
	}
}

// cancelTask stamps a terminal result for a task abandoned at shutdown, so
// the stored result never stays non-terminal forever.
func (q *Queue) cancelTask(t *Task, attempt int) {
	q.results.finish(t.ID, func(r *Result) {
		r.Status = StatusCancelled
		r.Success = false
		r.Error = "queue shut down before the task completed"
		r.Retries = attempt
	})
}

var errSoftTimeout = errors.New("soft timeout exceeded")
var errHardTimeout = errors.New("hard timeout exceeded")

// runOnce executes a single attempt. The attempt's context is cancelled at
// SoftTimeout; if the execution then fails to unwind by HardTimeout it is
// abandoned in place.
func (q *Queue) runOnce(ctx context.Context, t *Task) (*workflow.State, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan *workflow.State, 1)
	panicked := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicked <- fmt.Errorf("worker panic: %v", r)
			}
		}()
		done <- q.runner.Execute(runCtx, t.JobPosting, t.Resume)
	}()

	select {
	case st := <-done:
		return st, nil
	case err := <-panicked:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(q.cfg.SoftTimeout):
	}

	// Soft limit hit: cancel and give the attempt until the hard limit to
	// come back.
	cancel()
	select {
	case <-done:
		return nil, errSoftTimeout
	case err := <-panicked:
		return nil, err
	case <-time.After(q.cfg.HardTimeout - q.cfg.SoftTimeout):
		return nil, errHardTimeout
	}
}

// complete stores a terminal result for an attempt that ran to completion.
// A workflow-recorded error is a real outcome, not an infrastructure
// failure, so it completes the task rather than triggering a retry.
func (q *Queue) complete(t *Task, st *workflow.State, attempt int) {
	export := report.Export(st)
	summary := report.Summarize(st)
	q.results.finish(t.ID, func(r *Result) {
		r.Retries = attempt
		r.Export = &export
		r.Summary = &summary
		if st != nil && st.Failed() {
			r.Status = StatusFailed
			r.Success = false
			r.Error = st.Error
			return
		}
		r.Status = StatusSuccess
		r.Success = true
	})
}

func (q *Queue) cleanupLoop(ctx context.Context) {
	if q.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(q.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.results.purgeExpired(q.cfg.ResultTTL)
		}
	}
}
