// Package background runs fire-and-forget side work off the request path.
package background

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is one unit of side work. It receives a context bounded by the
// runner's task timeout, detached from the request that queued it.
type Task func(ctx context.Context) error

type job struct {
	name string
	fn   Task
}

type Config struct {
	QueueSize   int
	Workers     int
	TaskTimeout time.Duration
}

// Runner executes tasks on a fixed set of workers fed by a bounded queue.
// Failures are logged and never reach the caller.
type Runner struct {
	log     *logrus.Logger
	queue   chan job
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewRunner(cfg Config, log *logrus.Logger) *Runner {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 5 * time.Second
	}

	r := &Runner{
		log:     log,
		queue:   make(chan job, cfg.QueueSize),
		timeout: cfg.TaskTimeout,
	}
	for i := 0; i < cfg.Workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
	return r
}

// Submit queues fn without blocking. It reports false when the queue is full
// or the runner is closed; the task is dropped.
func (r *Runner) Submit(name string, fn Task) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.log.WithField("task", name).Warn("Background runner closed; dropping task")
		return false
	}

	select {
	case r.queue <- job{name: name, fn: fn}:
		return true
	default:
		r.log.WithField("task", name).Warn("Background queue full; dropping task")
		return false
	}
}

func (r *Runner) work() {
	defer r.wg.Done()
	for j := range r.queue {
		r.run(j)
	}
}

func (r *Runner) run(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithFields(logrus.Fields{"task": j.name, "panic": rec}).Error("Background task panicked")
		}
	}()

	if err := j.fn(ctx); err != nil {
		r.log.WithError(err).WithField("task", j.name).Warn("Background task failed")
	}
}

// Close stops accepting tasks and waits for queued ones to finish or for ctx
// to expire.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
