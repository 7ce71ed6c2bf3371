package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{}
}

func TestNewPool(t *testing.T) {
	assert.Equal(t, 5, NewPool(context.Background(), 5).workers)
	assert.Equal(t, 1, NewPool(context.Background(), 0).workers)
	assert.Equal(t, 1, NewPool(context.Background(), -1).workers)
}

func TestPool_Execution(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	count := 10
	for i := 0; i < count; i++ {
		require.NoError(t, pool.Submit(&mockJob{executed: &executed}))
	}

	results := pool.Wait()
	assert.Len(t, results, count)
	assert.Equal(t, int32(count), atomic.LoadInt32(&executed))
}

// many more jobs than queue capacity must not deadlock
func TestPool_ManyJobsFewWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewPool(context.Background(), 1)
	pool.Start()
	for i := 0; i < 200; i++ {
		require.NoError(t, pool.Submit(&mockJob{}))
	}
	assert.Len(t, pool.Wait(), 200)
}

type concurrencyJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &mockResult{}
}

func TestPool_Concurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	workers := 10
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var current, maxConcurrent, completed int32
	totalJobs := 50

	for i := 0; i < totalJobs; i++ {
		require.NoError(t, pool.Submit(&concurrencyJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				for {
					seen := atomic.LoadInt32(&maxConcurrent)
					if curr <= seen || atomic.CompareAndSwapInt32(&maxConcurrent, seen, curr) {
						break
					}
				}
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		}))
	}

	pool.Wait()

	assert.Equal(t, int32(totalJobs), atomic.LoadInt32(&completed))
	assert.LessOrEqual(t, atomic.LoadInt32(&maxConcurrent), int32(workers))
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	require.NoError(t, pool.Submit(&mockJob{shouldErr: true}))
	require.NoError(t, pool.Submit(&mockJob{shouldErr: false}))

	results := pool.Wait()
	require.Len(t, results, 2)

	failures := 0
	for _, res := range results {
		if res.GetError() != nil {
			failures++
		}
	}
	assert.Equal(t, 1, failures)
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan error, 1)
	go func() { done <- pool.Submit(&mockJob{}) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ShutdownCancelsRunningJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewPool(context.Background(), 2)
	pool.Start()

	require.NoError(t, pool.Submit(&mockJob{duration: 10 * time.Second}))
	time.Sleep(20 * time.Millisecond)

	finished := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Shutdown timed out")
	}
}

func TestPool_ParentContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()
	cancel()

	assert.ErrorIs(t, pool.Submit(&mockJob{}), context.Canceled)
	pool.Wait()
}
