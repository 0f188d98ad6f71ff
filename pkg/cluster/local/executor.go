// Package local implements the cluster capability as an in-process worker
// pool.
//
// Each submitted task runs as an independent unit on one of a bounded set
// of workers; completion order is unordered, but Gather restores the
// positional contract. The executor backs the CLI and tests; a remote
// scheduler would slot in behind the same cluster.Cluster interface.
package local

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kaitan-stock/distributed/pkg/cluster"
)

// Config configures the executor.
type Config struct {
	// Workers is the number of parallel task runners.
	// Default: 4
	Workers int

	// QueueDepth is the size of the bounded submission queue. Submit
	// blocks when the queue is full, providing backpressure.
	// Default: 64
	QueueDepth int

	// RateLimit is the maximum task starts per second across all
	// workers. Zero means unlimited.
	// Default: 0
	RateLimit float64

	// Logger receives task lifecycle events at debug level.
	// Nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns the default executor configuration.
func DefaultConfig() Config {
	return Config{
		Workers:    4,
		QueueDepth: 64,
		RateLimit:  0,
	}
}

// Executor runs tasks on a bounded in-process worker pool.
type Executor struct {
	runner  cluster.Runner
	logger  *zap.Logger
	limiter *rate.Limiter // nil if unlimited

	work chan *future
	wg   sync.WaitGroup

	// mu guards closed and, via its read side, every send on work:
	// Close may only close the channel once no Submit holds the read
	// lock, so a send can never race the close.
	mu     sync.RWMutex
	closed bool
}

var _ cluster.Cluster = (*Executor)(nil)

// future tracks one in-flight task. done is closed exactly once, after
// data/err are set.
type future struct {
	task Task
	done chan struct{}
	data []byte
	err  error
}

// Task aliases the capability's task type for brevity inside this package.
type Task = cluster.Task

// ID returns the ID of the tracked task.
func (f *future) ID() string {
	return f.task.ID
}

// New creates an executor and starts its workers.
//
// The runner executes each task; Close must be called to stop the workers.
func New(runner cluster.Runner, cfg Config) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = DefaultConfig().QueueDepth
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Executor{
		runner: runner,
		logger: logger,
		work:   make(chan *future, cfg.QueueDepth),
	}

	if cfg.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	for i := 0; i < cfg.Workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}

	return e
}

// Submit schedules one task and returns its future.
//
// Submit blocks while the queue is full and fails with ErrClosed after
// Close. The returned future resolves even if the task fails; the failure
// surfaces in the matching Result at gather time.
func (e *Executor) Submit(ctx context.Context, task Task) (cluster.Future, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, cluster.ErrClosed
	}

	f := &future{task: task, done: make(chan struct{})}

	select {
	case <-ctx.Done():
		e.mu.RUnlock()
		return nil, ctx.Err()
	case e.work <- f:
	}
	e.mu.RUnlock()

	e.logger.Debug("task submitted",
		zap.String("task_id", task.ID),
		zap.String("kind", task.Kind),
		zap.String("bucket", task.Bucket),
		zap.String("key", task.Key),
	)

	return f, nil
}

// Gather blocks until every future resolves and returns one result per
// future, in input order. A per-task failure never aborts sibling tasks;
// it is reported in the matching Result.Err and summarized in the returned
// *cluster.BatchError.
func (e *Executor) Gather(ctx context.Context, futures []cluster.Future) ([]cluster.Result, error) {
	results := make([]cluster.Result, len(futures))

	for i, cf := range futures {
		f, ok := cf.(*future)
		if !ok {
			return nil, cluster.ErrForeignFuture
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.done:
		}

		results[i] = cluster.Result{Task: f.task, Data: f.data, Err: f.err}
	}

	return results, cluster.BatchOutcome(results)
}

// Close stops accepting work, waits for in-flight tasks to finish, and
// releases the workers. Close is idempotent.
//
// A Submit blocked on a full queue completes its send before the channel
// closes; the workers keep draining, so Close always makes progress.
func (e *Executor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.work)
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}

// worker drains the queue, running one task at a time.
func (e *Executor) worker() {
	defer e.wg.Done()

	for f := range e.work {
		ctx := context.Background()

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				f.err = err
				close(f.done)
				continue
			}
		}

		f.data, f.err = e.runner.Run(ctx, f.task)
		if f.err != nil {
			e.logger.Debug("task failed",
				zap.String("task_id", f.task.ID),
				zap.String("key", f.task.Key),
				zap.Error(f.err),
			)
		} else {
			e.logger.Debug("task completed",
				zap.String("task_id", f.task.ID),
				zap.String("key", f.task.Key),
				zap.Int("bytes", len(f.data)),
			)
		}
		close(f.done)
	}
}
