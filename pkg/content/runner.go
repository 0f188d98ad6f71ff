package content

import (
	"context"
	"fmt"

	"github.com/kaitan-stock/distributed/pkg/cluster"
	"github.com/kaitan-stock/distributed/pkg/objstore"
)

// Runner executes readKey tasks against a store.
//
// It is the bridge between the cluster capability and the object store:
// workers hand it task descriptions, it performs the actual fetch.
type Runner struct {
	store objstore.Store
}

var _ cluster.Runner = (*Runner)(nil)

// NewRunner creates a runner backed by the given store.
func NewRunner(st objstore.Store) *Runner {
	return &Runner{store: st}
}

// Run dispatches one task. Only KindReadKey is understood.
func (r *Runner) Run(ctx context.Context, task cluster.Task) ([]byte, error) {
	switch task.Kind {
	case cluster.KindReadKey:
		return ReadKey(ctx, r.store, task.Bucket, task.Key)
	default:
		return nil, fmt.Errorf("%w: %q", cluster.ErrUnknownTaskKind, task.Kind)
	}
}
