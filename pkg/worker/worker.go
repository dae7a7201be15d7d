// Package worker runs detached jobs on a bounded pool of goroutines.
// Submitters receive no result; job outcomes are the job's own concern.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/medora/pkg/lifecycle"
)

var (
	// ErrQueueFull indicates the job queue has no free slot.
	ErrQueueFull = errors.New("worker queue is full")
	// ErrClosed indicates the pool is shutting down or has stopped.
	ErrClosed = errors.New("worker pool is closed")
)

// Job is a unit of detached work. The context is not tied to any request
// and is never cancelled while the job runs.
type Job func(ctx context.Context)

// Pool is a fixed set of workers draining a bounded queue.
type Pool struct {
	workers int
	queue   chan Job
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	group  errgroup.Group
}

// New creates a Pool. Workers do not run until Start or Run.
func New(cfg *Config, logger *slog.Logger) *Pool {
	return &Pool{
		workers: cfg.Workers,
		queue:   make(chan Job, cfg.QueueSize),
		logger:  logger.With("system", "worker"),
	}
}

// Start launches the workers and registers a shutdown hook that stops intake
// and waits for queued jobs to finish.
func (p *Pool) Start(lc *lifecycle.Coordinator) error {
	p.logger.Info("starting worker pool", "workers", p.workers, "queue_size", cap(p.queue))
	p.Run(context.WithoutCancel(lc.Context()))

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		p.logger.Info("draining worker pool", "pending", len(p.queue))
		p.Close()
		p.logger.Info("worker pool stopped")
	})

	return nil
}

// Run launches the workers with ctx as the job context.
func (p *Pool) Run(ctx context.Context) {
	for range p.workers {
		p.group.Go(func() error {
			for job := range p.queue {
				p.execute(ctx, job)
			}
			return nil
		})
	}
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending reports the number of queued jobs not yet picked up by a worker.
func (p *Pool) Pending() int {
	return len(p.queue)
}

// Close stops intake and blocks until every queued job has run.
// Calling Close more than once is safe.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	p.group.Wait()
}

func (p *Pool) execute(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", "panic", r)
		}
	}()
	job(ctx)
}
