package fanout

import "github.com/kaitan-stock/distributed/pkg/cluster"

// HandleKind tags the two execution outcomes of a fan-out.
type HandleKind int

const (
	// Dispatched marks a handle wrapping an already-submitted future.
	Dispatched HandleKind = iota

	// Deferred marks a handle wrapping an unsubmitted computation node.
	Deferred
)

// String returns the kind name for logs and output records.
func (k HandleKind) String() string {
	switch k {
	case Dispatched:
		return "dispatched"
	case Deferred:
		return "deferred"
	}
	return "unknown"
}

// Handle is the tagged variant returned by ReadBytes: either a dispatched
// future or a deferred node, never both. Callers switch on Kind to decide
// whether submission is still their responsibility.
//
// Handles are immutable once created and owned exclusively by the caller.
type Handle struct {
	kind     HandleKind
	future   cluster.Future
	deferred *cluster.Deferred
}

func dispatchedHandle(f cluster.Future) Handle {
	return Handle{kind: Dispatched, future: f}
}

func deferredHandle(d *cluster.Deferred) Handle {
	return Handle{kind: Deferred, deferred: d}
}

// Kind returns the handle's tag.
func (h Handle) Kind() HandleKind {
	return h.kind
}

// Future returns the wrapped future for dispatched handles.
func (h Handle) Future() (cluster.Future, bool) {
	return h.future, h.kind == Dispatched
}

// Deferred returns the wrapped node for deferred handles.
func (h Handle) Deferred() (*cluster.Deferred, bool) {
	return h.deferred, h.kind == Deferred
}
