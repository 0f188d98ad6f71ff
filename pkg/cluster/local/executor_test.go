package local

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitan-stock/distributed/pkg/cluster"
)

// funcRunner adapts a function to the cluster.Runner interface.
type funcRunner func(ctx context.Context, task Task) ([]byte, error)

func (f funcRunner) Run(ctx context.Context, task Task) ([]byte, error) {
	return f(ctx, task)
}

func echoRunner() cluster.Runner {
	return funcRunner(func(ctx context.Context, task Task) ([]byte, error) {
		return []byte(task.Key), nil
	})
}

func TestSubmitAndGather(t *testing.T) {
	e := New(echoRunner(), DefaultConfig())
	defer func() { _ = e.Close() }()

	f, err := e.Submit(context.Background(), Task{ID: "t1", Kind: cluster.KindReadKey, Key: "tmp/file1"})
	require.NoError(t, err)
	assert.Equal(t, "t1", f.ID())

	results, err := e.Gather(context.Background(), []cluster.Future{f})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "t1", results[0].Task.ID)
	assert.Equal(t, []byte("tmp/file1"), results[0].Data)
	assert.NoError(t, results[0].Err)
}

func TestGather_PreservesInputOrder(t *testing.T) {
	// Later tasks finish first; gathered results must still follow
	// submission order.
	runner := funcRunner(func(ctx context.Context, task Task) ([]byte, error) {
		if task.Key == "slow" {
			time.Sleep(50 * time.Millisecond)
		}
		return []byte(task.Key), nil
	})
	e := New(runner, Config{Workers: 4})
	defer func() { _ = e.Close() }()

	tasks := []Task{
		{ID: "t0", Key: "slow"},
		{ID: "t1", Key: "fast-1"},
		{ID: "t2", Key: "fast-2"},
		{ID: "t3", Key: "fast-3"},
	}

	futures := make([]cluster.Future, 0, len(tasks))
	for _, task := range tasks {
		f, err := e.Submit(context.Background(), task)
		require.NoError(t, err)
		futures = append(futures, f)
	}

	results, err := e.Gather(context.Background(), futures)
	require.NoError(t, err)
	require.Len(t, results, len(tasks))
	for i, res := range results {
		assert.Equal(t, tasks[i].ID, res.Task.ID)
		assert.Equal(t, []byte(tasks[i].Key), res.Data)
	}
}

func TestGather_PartialFailure(t *testing.T) {
	boom := errors.New("read failed")
	runner := funcRunner(func(ctx context.Context, task Task) ([]byte, error) {
		if task.Key == "bad" {
			return nil, boom
		}
		return []byte("a"), nil
	})
	e := New(runner, DefaultConfig())
	defer func() { _ = e.Close() }()

	var futures []cluster.Future
	for i, key := range []string{"ok-1", "bad", "ok-2"} {
		f, err := e.Submit(context.Background(), Task{ID: fmt.Sprintf("t%d", i), Key: key})
		require.NoError(t, err)
		futures = append(futures, f)
	}

	results, err := e.Gather(context.Background(), futures)
	require.Len(t, results, 3)

	// Failed tasks never abort their siblings.
	assert.NoError(t, results[0].Err)
	assert.Equal(t, []byte("a"), results[0].Data)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Nil(t, results[1].Data)
	assert.NoError(t, results[2].Err)

	require.Error(t, err)
	assert.True(t, errors.Is(err, cluster.ErrPartialFailure))

	var batchErr *cluster.BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, 3, batchErr.Total)
	assert.Equal(t, 1, batchErr.Failed)
}

func TestGather_AllFailedIsNotPartial(t *testing.T) {
	runner := funcRunner(func(ctx context.Context, task Task) ([]byte, error) {
		return nil, errors.New("boom")
	})
	e := New(runner, DefaultConfig())
	defer func() { _ = e.Close() }()

	f, err := e.Submit(context.Background(), Task{ID: "t0"})
	require.NoError(t, err)

	_, err = e.Gather(context.Background(), []cluster.Future{f})
	require.Error(t, err)
	assert.False(t, errors.Is(err, cluster.ErrPartialFailure))
}

func TestGather_ForeignFuture(t *testing.T) {
	e := New(echoRunner(), DefaultConfig())
	defer func() { _ = e.Close() }()

	type alien struct{ cluster.Future }
	_, err := e.Gather(context.Background(), []cluster.Future{alien{}})
	assert.ErrorIs(t, err, cluster.ErrForeignFuture)
}

func TestGather_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	runner := funcRunner(func(ctx context.Context, task Task) ([]byte, error) {
		<-release
		return nil, nil
	})
	e := New(runner, Config{Workers: 1})
	defer func() {
		close(release)
		_ = e.Close()
	}()

	f, err := e.Submit(context.Background(), Task{ID: "t0"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Gather(ctx, []cluster.Future{f})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmit_AfterClose(t *testing.T) {
	e := New(echoRunner(), DefaultConfig())
	require.NoError(t, e.Close())

	_, err := e.Submit(context.Background(), Task{ID: "t0"})
	assert.ErrorIs(t, err, cluster.ErrClosed)
}

func TestSubmit_ConcurrentWithClose(t *testing.T) {
	// A Submit blocked on a full queue while Close runs must resolve to a
	// future or ErrClosed, never panic.
	release := make(chan struct{})
	runner := funcRunner(func(ctx context.Context, task Task) ([]byte, error) {
		<-release
		return nil, nil
	})
	e := New(runner, Config{Workers: 1, QueueDepth: 1})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.Submit(context.Background(), Task{ID: fmt.Sprintf("t%d", i)})
			errs[i] = err
		}(i)
	}

	// Let submitters pile up on the single-slot queue, then unblock the
	// worker and close concurrently.
	time.Sleep(10 * time.Millisecond)
	go close(release)
	require.NoError(t, e.Close())
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, cluster.ErrClosed)
		}
	}
}

func TestClose_Idempotent(t *testing.T) {
	e := New(echoRunner(), DefaultConfig())
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
}

func TestClose_WaitsForInflightTasks(t *testing.T) {
	var mu sync.Mutex
	completed := 0
	runner := funcRunner(func(ctx context.Context, task Task) ([]byte, error) {
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		completed++
		mu.Unlock()
		return nil, nil
	})
	e := New(runner, Config{Workers: 2})

	for i := 0; i < 4; i++ {
		_, err := e.Submit(context.Background(), Task{ID: fmt.Sprintf("t%d", i)})
		require.NoError(t, err)
	}

	require.NoError(t, e.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 4, completed)
}

func TestRateLimit_Applied(t *testing.T) {
	e := New(echoRunner(), Config{Workers: 4, RateLimit: 100})
	defer func() { _ = e.Close() }()

	start := time.Now()
	var futures []cluster.Future
	for i := 0; i < 5; i++ {
		f, err := e.Submit(context.Background(), Task{ID: fmt.Sprintf("t%d", i)})
		require.NoError(t, err)
		futures = append(futures, f)
	}

	results, err := e.Gather(context.Background(), futures)
	require.NoError(t, err)
	require.Len(t, results, 5)

	// Burst of 1 at 100/s: five tasks need at least ~40ms of pacing.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
