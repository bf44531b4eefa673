// Package worker runs store writes one at a time, in submission order, off
// the caller's goroutine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrClosed is reported by futures of jobs submitted after Close
var ErrClosed = errors.New("worker is closed")

// Job is a unit of work. The context is never cancelled by the worker.
type Job func(ctx context.Context) error

// Future reports the outcome of a submitted job. Callers that do not care
// can drop it; failures are logged either way.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(err error) {
	f.err = err
	close(f.done)
}

// Done is closed when the job has finished
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job finishes and returns its error
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

type job struct {
	name   string
	fn     Job
	future *Future
}

// Worker is a single goroutine draining an unbounded FIFO queue, so Submit
// never blocks the caller.
type Worker struct {
	mu     sync.Mutex
	queue  []*job
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// New starts a worker
func New() *Worker {
	w := &Worker{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit queues fn and returns immediately
func (w *Worker) Submit(name string, fn Job) *Future {
	f := newFuture()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		f.complete(ErrClosed)
		return f
	}
	w.queue = append(w.queue, &job{name: name, fn: fn, future: f})
	w.mu.Unlock()

	w.signal()
	return f
}

// Pending returns the number of queued jobs not yet started
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Close stops accepting jobs and waits for the queue to drain
func (w *Worker) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	w.signal()
	<-w.done
}

func (w *Worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) run() {
	defer close(w.done)

	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			closed := w.closed
			w.mu.Unlock()
			if closed {
				return
			}
			<-w.wake
			continue
		}
		j := w.queue[0]
		w.queue[0] = nil
		w.queue = w.queue[1:]
		w.mu.Unlock()

		j.future.complete(w.execute(j))
	}
}

func (w *Worker) execute(j *job) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}
		if err != nil {
			slog.Error("background job failed", "job", j.name, "error", err)
			return
		}
		slog.Debug("background job done", "job", j.name, "duration", time.Since(start))
	}()

	return j.fn(context.Background())
}
