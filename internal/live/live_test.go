package live

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for update")
	}
	var zero T
	return zero
}

func TestHubFiltersByTable(t *testing.T) {
	hub := NewHub()
	tasks, cancelTasks := hub.Subscribe("tasks")
	defer cancelTasks()
	all, cancelAll := hub.Subscribe()
	defer cancelAll()

	hub.Notify("users")
	select {
	case e := <-tasks:
		t.Fatalf("tasks subscriber got unrelated event %+v", e)
	default:
	}
	e := receive(t, all)
	assert.True(t, e.Touches("users"))

	hub.Notify("tasks", "comments")
	e = receive(t, tasks)
	assert.True(t, e.Touches("comments"))
	assert.Equal(t, uint64(2), e.SequenceID)
}

func TestHubNotifyNeverBlocks(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe("tasks")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Notify("tasks")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Notify blocked on a slow subscriber")
	}
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe("tasks")
	assert.Equal(t, 1, hub.Subscribers())
	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers())
}

func TestWatchDeliversInitialAndChanges(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var value atomic.Int64
	value.Store(1)
	q := Watch(ctx, hub, "counter", func(context.Context) (int64, error) {
		return value.Load(), nil
	}, "tasks")

	assert.Equal(t, int64(1), receive(t, q.Updates()))

	value.Store(2)
	hub.Notify("tasks")
	assert.Equal(t, int64(2), receive(t, q.Updates()))
}

func TestWatchIgnoresOtherTables(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fetches atomic.Int32
	q := Watch(ctx, hub, "tasks", func(context.Context) (int32, error) {
		return fetches.Add(1), nil
	}, "tasks")
	receive(t, q.Updates())

	hub.Notify("users")
	hub.Notify("tasks")
	assert.Equal(t, int32(2), receive(t, q.Updates()))
}

func TestWatchStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	q := Watch(ctx, hub, "noop", func(context.Context) (string, error) {
		return "x", nil
	}, "tasks")
	receive(t, q.Updates())
	cancel()

	select {
	case <-q.Done():
	case <-time.After(waitFor):
		t.Fatal("query did not stop")
	}
	_, ok := <-q.Updates()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestWatchSkipsFailedFetch(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	q := Watch(ctx, hub, "flaky", func(context.Context) (int32, error) {
		n := calls.Add(1)
		if n == 2 {
			return 0, errors.New("boom")
		}
		return n, nil
	}, "tasks")

	assert.Equal(t, int32(1), receive(t, q.Updates()))
	hub.Notify("tasks")
	require.Eventually(t, func() bool { return calls.Load() == 2 }, waitFor, 5*time.Millisecond)
	hub.Notify("tasks")
	assert.Equal(t, int32(3), receive(t, q.Updates()))
}

func TestDeliverKeepsLatest(t *testing.T) {
	q := &Query[int]{updates: make(chan int, 1)}
	q.deliver(1)
	q.deliver(2)
	q.deliver(3)
	assert.Equal(t, 3, <-q.updates)
}
