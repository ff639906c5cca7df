// Package worker decodes independent source files on a fixed number of
// workers.
package worker

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/okian/jvrace/internal/adapters/mq/queue"
	"github.com/okian/jvrace/pkg/logger"
	"github.com/okian/jvrace/pkg/metrics"
)

// Handler processes one file job. A returned error is fatal to the run.
type Handler func(ctx context.Context, job queue.Job) error

// Worker consumes jobs from a queue until it is drained or ctx is done.
type Worker struct {
	name    string
	queue   queue.Queue
	handler Handler
	logger  logger.Logger
}

// NewWorker creates a worker reading from q.
func NewWorker(name string, q queue.Queue, h Handler, l logger.Logger) *Worker {
	return &Worker{name: name, queue: q, handler: h, logger: l.Named(name)}
}

// Run processes jobs one at a time. Each job's file is fully handled before
// the next is dequeued.
func (w *Worker) Run(ctx context.Context) error {
	metrics.AddActiveWorkers(1)
	defer metrics.AddActiveWorkers(-1)

	jobs := w.queue.Dequeue(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-jobs:
			if !ok {
				return nil
			}
			if err := w.handler(ctx, job); err != nil {
				w.logger.Error(ctx, "job failed",
					logger.String("path", job.Path),
					logger.Int("index", job.Index),
					logger.Error(err),
				)
				return fmt.Errorf("%s: %w", w.name, err)
			}
		}
	}
}

// Pool runs a fixed number of workers over a batch of jobs.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool of size workers. Sizes below 1 run sequentially.
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		size:   size,
		name:   "worker",
		logger: logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the configured number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Run handles every job and returns the first handler error. The first error
// cancels the context passed to the remaining handlers.
func (p *Pool) Run(ctx context.Context, jobs []queue.Job, h Handler) error {
	if len(jobs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(len(jobs)))
	for _, j := range jobs {
		if !q.Enqueue(ctx, j) {
			return fmt.Errorf("enqueue %s: %w", j.Path, context.Cause(ctx))
		}
	}
	if err := q.Close(); err != nil {
		return fmt.Errorf("close queue: %w", err)
	}

	n := min(p.size, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		w := NewWorker(p.name+"-"+strconv.Itoa(i), q, h, p.logger)
		g.Go(func() error { return w.Run(gctx) })
	}

	p.logger.Debug(ctx, "pool started", logger.Int("workers", n), logger.Int("jobs", len(jobs)))
	return g.Wait()
}
