package cluster

import "context"

// Deferred is an unsubmitted computation node wrapping one task.
//
// Deferred values are immutable once created and owned exclusively by the
// caller that built them. They may be combined into a Graph before
// submission; nothing runs until Submit is called.
type Deferred struct {
	task Task
}

// Defer wraps a task description in an unsubmitted node.
func Defer(task Task) *Deferred {
	return &Deferred{task: task}
}

// Task returns the wrapped description.
func (d *Deferred) Task() Task {
	return d.task
}

// Submit schedules the deferred task on the given cluster, turning the
// node into a future.
func (d *Deferred) Submit(ctx context.Context, cl Cluster) (Future, error) {
	return cl.Submit(ctx, d.task)
}

// Graph is an ordered collection of deferred nodes built up by the caller
// before a single submission.
type Graph struct {
	nodes []*Deferred
}

// NewGraph creates a graph from zero or more deferred nodes.
func NewGraph(nodes ...*Deferred) *Graph {
	g := &Graph{}
	g.Add(nodes...)
	return g
}

// Add appends nodes to the graph, preserving insertion order.
func (g *Graph) Add(nodes ...*Deferred) {
	g.nodes = append(g.nodes, nodes...)
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns the graph's nodes in insertion order.
func (g *Graph) Nodes() []*Deferred {
	out := make([]*Deferred, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Submit schedules every node on the cluster in insertion order and
// returns the matching futures. A submission failure aborts the remainder;
// futures already issued stay valid and may still be gathered.
func (g *Graph) Submit(ctx context.Context, cl Cluster) ([]Future, error) {
	futures := make([]Future, 0, len(g.nodes))
	for _, node := range g.nodes {
		f, err := cl.Submit(ctx, node.task)
		if err != nil {
			return futures, err
		}
		futures = append(futures, f)
	}
	return futures, nil
}
