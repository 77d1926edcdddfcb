package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsJobs(t *testing.T) {
	p := NewPool(4, 128)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, nil)

	var ran int32
	for i := 0; i < 100; i++ {
		err := p.TrySubmit(func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
		require.NoError(t, err)
	}
	p.Close()

	assert.Equal(t, int32(100), atomic.LoadInt32(&ran))
}

func TestPoolReportsJobErrors(t *testing.T) {
	p := NewPool(2, 4)
	var mu sync.Mutex
	var got []error
	p.Start(context.Background(), func(err error) {
		mu.Lock()
		got = append(got, err)
		mu.Unlock()
	})

	boom := errors.New("boom")
	require.NoError(t, p.TrySubmit(func(context.Context) error { return boom }))
	require.NoError(t, p.TrySubmit(func(context.Context) error { return nil }))
	p.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0], boom)
}

func TestSubmitAfterClose(t *testing.T) {
	p := NewPool(1, 2)
	p.Start(context.Background(), nil)
	p.Close()

	assert.Equal(t, ErrPoolClosed, p.TrySubmit(func(context.Context) error { return nil }))
}

func TestTrySubmitQueueFull(t *testing.T) {
	p := NewPool(1, 1)
	// no workers started, so the single slot stays occupied
	require.NoError(t, p.TrySubmit(func(context.Context) error { return nil }))
	assert.Equal(t, 1, p.Pending())
	assert.Equal(t, ErrQueueFull, p.TrySubmit(func(context.Context) error { return nil }))
}

func TestCloseDrainsPending(t *testing.T) {
	p := NewPool(1, 4)
	var ran int32
	for i := 0; i < 3; i++ {
		require.NoError(t, p.TrySubmit(func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	assert.Equal(t, 3, p.Pending())

	p.Start(context.Background(), nil)
	p.Close()
	assert.Equal(t, int32(3), atomic.LoadInt32(&ran))
	assert.Equal(t, 0, p.Pending())
}

func TestContextCancellationStopsWorkers(t *testing.T) {
	p := NewPool(2, 16)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx, nil)
	cancel()

	done := make(chan struct{})
	go func() {
		p.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Close blocked after context cancellation")
	}
}
