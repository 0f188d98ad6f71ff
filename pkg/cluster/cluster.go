// Package cluster defines the compute-cluster capability consumed by the
// read-orchestration core.
//
// The core hands the cluster immutable task descriptions and gets back
// opaque futures. How tasks run - worker pools, remote schedulers - is the
// implementation's business; the core only relies on the positional
// contract: gather returns one result per future, in submission order.
package cluster

import (
	"context"
	"errors"
	"fmt"
)

// Task kinds understood by runners.
const (
	// KindReadKey reads the entire content of one object-store key.
	KindReadKey = "readKey"
)

// Task describes one unit of deferred computation. It carries no result
// and is immutable once created.
type Task struct {
	// ID correlates the task across submission, logs, and results.
	ID string

	// Kind selects the runner operation (e.g., KindReadKey).
	Kind string

	// Bucket is the object-store bucket the task operates on.
	Bucket string

	// Key is the object key the task operates on.
	Key string
}

// Future is an opaque handle to an in-flight or completed task.
//
// Futures are owned by the cluster that issued them; callers never inspect
// internals, only pass them back to Gather.
type Future interface {
	// ID returns the ID of the task this future tracks.
	ID() string
}

// Result is the realized outcome of one task.
type Result struct {
	// Task is the description the result belongs to.
	Task Task

	// Data is the task output. Nil when Err is set.
	Data []byte

	// Err is the per-task failure, if any. A failed task never aborts
	// its siblings.
	Err error
}

// Cluster schedules tasks and realizes their results.
//
// Implementations must preserve the positional contract: Gather returns
// results in the same order as the input futures, regardless of completion
// order.
type Cluster interface {
	// Submit schedules one task for execution and returns its future.
	Submit(ctx context.Context, task Task) (Future, error)

	// Gather blocks until every future resolves and returns one Result
	// per future, in input order. Per-task failures are reported in
	// Result.Err; the returned error is a *BatchError when at least one
	// task failed, and a context error if gathering was cancelled.
	Gather(ctx context.Context, futures []Future) ([]Result, error)

	// Close stops accepting work and releases executor resources.
	Close() error
}

// Runner executes task descriptions. It decouples what a task does from
// how the cluster schedules it.
type Runner interface {
	Run(ctx context.Context, task Task) ([]byte, error)
}

// Errors returned by cluster implementations.
var (
	// ErrPartialFailure matches a BatchError in which some but not all
	// tasks failed.
	ErrPartialFailure = errors.New("partial batch failure")

	// ErrUnknownTaskKind indicates a runner received a task kind it does
	// not implement.
	ErrUnknownTaskKind = errors.New("unknown task kind")

	// ErrForeignFuture indicates a future was passed to a cluster that
	// did not issue it.
	ErrForeignFuture = errors.New("future was not issued by this cluster")

	// ErrClosed indicates the cluster is no longer accepting work.
	ErrClosed = errors.New("cluster is closed")
)

// BatchError reports gather-time task failures without hiding the results
// of sibling tasks.
type BatchError struct {
	// Total is the number of tasks in the batch.
	Total int

	// Failed is the number of tasks that returned an error.
	Failed int
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d tasks failed", e.Failed, e.Total)
}

// Is supports errors.Is(err, ErrPartialFailure) for batches in which some
// but not all tasks failed.
func (e *BatchError) Is(target error) bool {
	return target == ErrPartialFailure && e.Failed > 0 && e.Failed < e.Total
}

// BatchOutcome summarizes per-task results as a BatchError, or nil when
// every task succeeded.
func BatchOutcome(results []Result) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return &BatchError{Total: len(results), Failed: failed}
}
