package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Queue runs best-effort background work off the request path. Enqueue never
// blocks; a full or stopped queue rejects the job.
type Queue struct {
	mu      sync.RWMutex
	closed  bool
	queue   chan job
	timeout time.Duration
	wg      sync.WaitGroup
}

type job struct {
	Type string
	Run  func(context.Context) error
}

func New(size int, timeout time.Duration) *Queue {
	if size <= 0 {
		size = 128
	}
	return &Queue{queue: make(chan job, size), timeout: timeout}
}

// Start launches workers that drain the queue until ctx ends or Stop is called.
func (q *Queue) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for range workers {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

// Enqueue reports whether the job was accepted.
func (q *Queue) Enqueue(jobType string, run func(context.Context) error) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

// Stop lets workers finish queued jobs and waits for them.
func (q *Queue) Stop() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.queue)
	}
	q.mu.Unlock()
	q.wg.Wait()
	return nil
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-q.queue:
			if !ok {
				return
			}
			q.run(ctx, j)
		}
	}
}

func (q *Queue) run(ctx context.Context, j job) {
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := j.Run(ctx); err != nil {
		slog.Warn("job run failed", "jobType", j.Type, "err", err)
		return
	}
	slog.Debug("job completed", "jobType", j.Type, "durationMs", time.Since(start).Milliseconds())
}
