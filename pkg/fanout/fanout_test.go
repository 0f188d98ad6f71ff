package fanout

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitan-stock/distributed/pkg/cluster"
	"github.com/kaitan-stock/distributed/pkg/cluster/local"
	"github.com/kaitan-stock/distributed/pkg/content"
	"github.com/kaitan-stock/distributed/pkg/match"
	"github.com/kaitan-stock/distributed/pkg/objstore"
	"github.com/kaitan-stock/distributed/pkg/objstore/mem"
)

// testKeys mirrors a small partitioned dataset layout: two files per
// partition directory.
var testKeys = []string{
	"tmp/test/data-0/file-0.csv",
	"tmp/test/data-0/file-1.csv",
	"tmp/test/data-1/file-0.csv",
	"tmp/test/data-1/file-1.csv",
	"tmp/test/data-2/file-0.csv",
	"tmp/test/data-2/file-1.csv",
}

func newTestStore(t *testing.T) *mem.Store {
	t.Helper()
	st := mem.New(mem.Config{})
	st.CreateBucket("bucket")
	for _, key := range testKeys {
		st.Put("bucket", key, []byte("a"))
	}
	return st
}

func newExecutor(t *testing.T, st objstore.Store) *local.Executor {
	t.Helper()
	e := local.New(content.NewRunner(st), local.DefaultConfig())
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestBuildReadTasks(t *testing.T) {
	st := newTestStore(t)

	tasks, err := BuildReadTasks(context.Background(), st, "bucket", "tmp/test/", nil)
	require.NoError(t, err)
	require.Len(t, tasks, len(testKeys))

	seenIDs := make(map[string]bool)
	for i, task := range tasks {
		assert.Equal(t, testKeys[i], task.Key)
		assert.Equal(t, "bucket", task.Bucket)
		assert.Equal(t, cluster.KindReadKey, task.Kind)
		assert.True(t, strings.HasPrefix(task.ID, cluster.KindReadKey+"-"))
		assert.False(t, seenIDs[task.ID], "task IDs must be unique")
		seenIDs[task.ID] = true
	}
}

func TestBuildReadTasks_EmptyPrefix(t *testing.T) {
	st := newTestStore(t)

	tasks, err := BuildReadTasks(context.Background(), st, "bucket", "no-such-prefix/", nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestBuildReadTasks_ListingFailureAborts(t *testing.T) {
	st := mem.New(mem.Config{})

	tasks, err := BuildReadTasks(context.Background(), st, "missing-bucket", "tmp/", nil)
	assert.True(t, objstore.IsBucketNotFound(err))
	assert.Nil(t, tasks)
}

func TestBuildReadTasks_MatcherFilters(t *testing.T) {
	st := newTestStore(t)
	st.Put("bucket", "tmp/test/readme.txt", []byte("a"))

	m, err := match.New(match.Config{Includes: []string{"**/*.csv"}})
	require.NoError(t, err)

	tasks, err := BuildReadTasks(context.Background(), st, "bucket", "tmp/test/", m)
	require.NoError(t, err)
	require.Len(t, tasks, len(testKeys))
	for _, task := range tasks {
		assert.True(t, strings.HasSuffix(task.Key, ".csv"))
	}
}

func TestReadBytes_Eager(t *testing.T) {
	st := newTestStore(t)
	e := newExecutor(t, st)

	handles, err := ReadBytes(context.Background(), st, e, "bucket", "tmp/test/", Options{})
	require.NoError(t, err)
	require.Len(t, handles, len(testKeys))

	for _, h := range handles {
		assert.Equal(t, Dispatched, h.Kind())
		_, ok := h.Future()
		assert.True(t, ok)
	}

	results, err := Gather(context.Background(), e, handles)
	require.NoError(t, err)
	require.Len(t, results, len(testKeys))
	for i, res := range results {
		assert.Equal(t, testKeys[i], res.Task.Key)
		assert.Equal(t, []byte("a"), res.Data)
		assert.NoError(t, res.Err)
	}
}

// countingCluster wraps an executor and counts submissions.
type countingCluster struct {
	cluster.Cluster
	submits int
}

func (c *countingCluster) Submit(ctx context.Context, task cluster.Task) (cluster.Future, error) {
	c.submits++
	return c.Cluster.Submit(ctx, task)
}

func TestReadBytes_LazyDefersAllWork(t *testing.T) {
	st := newTestStore(t)
	e := newExecutor(t, st)
	cc := &countingCluster{Cluster: e}

	// cl is nil: lazy construction must not touch the cluster at all.
	handles, err := ReadBytes(context.Background(), st, nil, "bucket", "tmp/test/", Options{Lazy: true})
	require.NoError(t, err)
	require.Len(t, handles, len(testKeys))

	for i, h := range handles {
		assert.Equal(t, Deferred, h.Kind())
		d, ok := h.Deferred()
		require.True(t, ok)
		assert.Equal(t, testKeys[i], d.Task().Key)
	}

	results, err := Gather(context.Background(), cc, handles)
	require.NoError(t, err)
	assert.Equal(t, len(testKeys), cc.submits)

	require.Len(t, results, len(testKeys))
	for i, res := range results {
		assert.Equal(t, testKeys[i], res.Task.Key)
		assert.Equal(t, []byte("a"), res.Data)
	}
}

func TestReadBytes_EagerLazyEquivalence(t *testing.T) {
	st := newTestStore(t)
	e := newExecutor(t, st)

	eager, err := ReadBytes(context.Background(), st, e, "bucket", "tmp/test/", Options{})
	require.NoError(t, err)
	lazy, err := ReadBytes(context.Background(), st, nil, "bucket", "tmp/test/", Options{Lazy: true})
	require.NoError(t, err)

	eagerResults, err := Gather(context.Background(), e, eager)
	require.NoError(t, err)
	lazyResults, err := Gather(context.Background(), e, lazy)
	require.NoError(t, err)

	require.Equal(t, len(eagerResults), len(lazyResults))
	for i := range eagerResults {
		assert.Equal(t, eagerResults[i].Task.Key, lazyResults[i].Task.Key)
		assert.Equal(t, eagerResults[i].Data, lazyResults[i].Data)
	}
}

func TestGather_PartialFailureKeepsSiblings(t *testing.T) {
	st := newTestStore(t)
	e := newExecutor(t, st)

	handles, err := ReadBytes(context.Background(), st, nil, "bucket", "tmp/test/", Options{Lazy: true})
	require.NoError(t, err)

	// Delete one key between construction and gathering: the listing and
	// the reads are not transactionally linked.
	st.Delete("bucket", "tmp/test/data-1/file-0.csv")

	results, err := Gather(context.Background(), e, handles)
	require.Len(t, results, len(testKeys))
	assert.ErrorIs(t, err, cluster.ErrPartialFailure)

	for _, res := range results {
		if res.Task.Key == "tmp/test/data-1/file-0.csv" {
			assert.True(t, objstore.IsObjectNotFound(res.Err))
			assert.Nil(t, res.Data)
			continue
		}
		assert.NoError(t, res.Err)
		assert.Equal(t, []byte("a"), res.Data)
	}
}

func TestReadBytes_SubmitFailureAborts(t *testing.T) {
	st := newTestStore(t)
	e := local.New(content.NewRunner(st), local.DefaultConfig())
	require.NoError(t, e.Close())

	handles, err := ReadBytes(context.Background(), st, e, "bucket", "tmp/test/", Options{})
	assert.ErrorIs(t, err, cluster.ErrClosed)
	assert.Nil(t, handles)
}

func TestGather_MixedHandles(t *testing.T) {
	st := newTestStore(t)
	e := newExecutor(t, st)

	eager, err := ReadBytes(context.Background(), st, e, "bucket", "tmp/test/data-0/", Options{})
	require.NoError(t, err)
	lazy, err := ReadBytes(context.Background(), st, nil, "bucket", "tmp/test/data-1/", Options{Lazy: true})
	require.NoError(t, err)

	handles := append(append([]Handle{}, eager...), lazy...)
	results, err := Gather(context.Background(), e, handles)
	require.NoError(t, err)
	require.Len(t, results, 4)

	want := []string{
		"tmp/test/data-0/file-0.csv",
		"tmp/test/data-0/file-1.csv",
		"tmp/test/data-1/file-0.csv",
		"tmp/test/data-1/file-1.csv",
	}
	for i, res := range results {
		assert.Equal(t, want[i], res.Task.Key)
	}
}

func TestHandleKind_String(t *testing.T) {
	assert.Equal(t, "dispatched", Dispatched.String())
	assert.Equal(t, "deferred", Deferred.String())
}

func TestHandleAccessors(t *testing.T) {
	d := deferredHandle(cluster.Defer(cluster.Task{ID: "t0"}))
	_, ok := d.Future()
	assert.False(t, ok)
	node, ok := d.Deferred()
	assert.True(t, ok)
	assert.Equal(t, "t0", node.Task().ID)
}

func BenchmarkBuildReadTasks(b *testing.B) {
	st := mem.New(mem.Config{})
	st.CreateBucket("bucket")
	for i := 0; i < 500; i++ {
		st.Put("bucket", fmt.Sprintf("tmp/bench/file-%03d", i), []byte("a"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildReadTasks(context.Background(), st, "bucket", "tmp/bench/", nil); err != nil {
			b.Fatal(err)
		}
	}
}
