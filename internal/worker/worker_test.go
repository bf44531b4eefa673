package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobsRunInSubmissionOrder(t *testing.T) {
	w := New()
	defer w.Close()

	var (
		mu    sync.Mutex
		order []int
	)
	var last *Future
	for i := 0; i < 50; i++ {
		i := i
		last = w.Submit("append", func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, last.Wait())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestSubmitDoesNotBlock(t *testing.T) {
	w := New()
	defer w.Close()

	release := make(chan struct{})
	w.Submit("block", func(context.Context) error {
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			w.Submit("noop", func(context.Context) error { return nil })
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked while the worker was busy")
	}
	close(release)
}

func TestFutureCarriesError(t *testing.T) {
	w := New()
	defer w.Close()

	boom := errors.New("boom")
	f := w.Submit("fail", func(context.Context) error { return boom })
	assert.ErrorIs(t, f.Wait(), boom)
}

func TestPanicBecomesError(t *testing.T) {
	w := New()
	defer w.Close()

	f := w.Submit("panic", func(context.Context) error { panic("bad") })
	assert.ErrorContains(t, f.Wait(), "panicked")

	// worker survives
	assert.NoError(t, w.Submit("after", func(context.Context) error { return nil }).Wait())
}

func TestCloseDrainsQueue(t *testing.T) {
	w := New()

	var (
		mu  sync.Mutex
		ran int
	)
	futures := make([]*Future, 0, 10)
	for i := 0; i < 10; i++ {
		futures = append(futures, w.Submit("count", func(context.Context) error {
			time.Sleep(time.Millisecond)
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		}))
	}
	w.Close()

	for _, f := range futures {
		select {
		case <-f.Done():
		default:
			t.Fatal("Close returned before the queue drained")
		}
	}
	assert.Equal(t, 10, ran)
	assert.Zero(t, w.Pending())
}

func TestSubmitAfterClose(t *testing.T) {
	w := New()
	w.Close()

	f := w.Submit("late", func(context.Context) error { return nil })
	assert.ErrorIs(t, f.Wait(), ErrClosed)
}
