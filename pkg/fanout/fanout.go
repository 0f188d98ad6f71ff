// Package fanout turns an object-store prefix into per-key read tasks
// distributed across a cluster.
//
// The fan-out has two halves. BuildReadTasks is purely descriptive: it
// enumerates concrete keys under a prefix and emits one task per key,
// touching no content. ReadBytes decides what happens to those tasks -
// immediate submission to a cluster (eager) or construction of unsubmitted
// deferred nodes the caller composes and submits later (lazy). Both modes
// preserve listing order and, after full gathering, yield the same results.
package fanout

import (
	"context"

	"github.com/google/uuid"

	"github.com/kaitan-stock/distributed/pkg/cluster"
	"github.com/kaitan-stock/distributed/pkg/listing"
	"github.com/kaitan-stock/distributed/pkg/match"
	"github.com/kaitan-stock/distributed/pkg/objstore"
)

// Options configures a read fan-out.
type Options struct {
	// Lazy selects deferred construction instead of immediate submission.
	Lazy bool

	// Matcher optionally filters keys after listing. Nil keeps every key.
	Matcher *match.Matcher
}

// BuildReadTasks enumerates every concrete key under (bucket, prefix) and
// returns one readKey task per key, in listing order.
//
// The listing is always non-delimited: reads apply to concrete keys, never
// to collapsed prefix groups. No content is fetched. An empty listing
// returns zero tasks, which is a valid, non-error outcome; a listing
// failure aborts with no partial slice.
func BuildReadTasks(ctx context.Context, st objstore.Store, bucket, prefix string, m *match.Matcher) ([]cluster.Task, error) {
	entries, err := listing.List(ctx, st, bucket, prefix, "")
	if err != nil {
		return nil, err
	}

	tasks := make([]cluster.Task, 0, len(entries))
	for _, e := range entries {
		if m != nil && !m.Match(e.Key) {
			continue
		}
		tasks = append(tasks, cluster.Task{
			ID:     cluster.KindReadKey + "-" + uuid.New().String(),
			Kind:   cluster.KindReadKey,
			Bucket: bucket,
			Key:    e.Key,
		})
	}

	return tasks, nil
}

// ReadBytes builds read tasks for (bucket, prefix) and returns one handle
// per task, in task order.
//
// Eager mode submits every task to cl immediately and wraps the resulting
// futures; the call does not block beyond submission, and the caller
// gathers when ready. Lazy mode wraps each task in an unsubmitted deferred
// node and performs no cluster calls at all; cl may be nil in that case.
// Content is never read during construction in either mode.
func ReadBytes(ctx context.Context, st objstore.Store, cl cluster.Cluster, bucket, prefix string, opts Options) ([]Handle, error) {
	tasks, err := BuildReadTasks(ctx, st, bucket, prefix, opts.Matcher)
	if err != nil {
		return nil, err
	}

	handles := make([]Handle, 0, len(tasks))

	if opts.Lazy {
		for _, task := range tasks {
			handles = append(handles, deferredHandle(cluster.Defer(task)))
		}
		return handles, nil
	}

	for _, task := range tasks {
		f, err := cl.Submit(ctx, task)
		if err != nil {
			return nil, err
		}
		handles = append(handles, dispatchedHandle(f))
	}

	return handles, nil
}

// Gather realizes every handle on the given cluster and returns one result
// per handle, in handle order.
//
// Deferred handles are submitted first; dispatched handles are gathered
// as-is. The error contract is the cluster's: per-task failures live in
// Result.Err and are summarized as a *cluster.BatchError, so eager and
// lazy fan-outs over the same data gather to identical result sets.
func Gather(ctx context.Context, cl cluster.Cluster, handles []Handle) ([]cluster.Result, error) {
	futures := make([]cluster.Future, len(handles))

	for i, h := range handles {
		switch h.Kind() {
		case Dispatched:
			f, _ := h.Future()
			futures[i] = f
		case Deferred:
			d, _ := h.Deferred()
			f, err := d.Submit(ctx, cl)
			if err != nil {
				return nil, err
			}
			futures[i] = f
		}
	}

	return cl.Gather(ctx, futures)
}
