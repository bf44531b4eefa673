package live

import (
	"context"
	"log/slog"
)

// FetchFunc loads the current result of a query
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Query is a result that re-delivers itself whenever a watched table changes.
// Only the newest undelivered result is kept; a slow reader skips stale ones.
type Query[T any] struct {
	name    string
	updates chan T
	done    chan struct{}
}

// Watch starts a query. The first result is delivered as soon as it is
// loaded; later results follow each change to one of tables. The query stops
// and its Updates channel closes when ctx is cancelled.
func Watch[T any](ctx context.Context, hub *Hub, name string, fetch FetchFunc[T], tables ...string) *Query[T] {
	q := &Query[T]{
		name:    name,
		updates: make(chan T, 1),
		done:    make(chan struct{}),
	}

	// Subscribe before the first fetch so no write slips between them
	events, cancel := hub.Subscribe(tables...)
	go q.run(ctx, fetch, events, cancel)
	return q
}

// Updates returns the channel results are delivered on
func (q *Query[T]) Updates() <-chan T {
	return q.updates
}

// Done is closed once the query has stopped
func (q *Query[T]) Done() <-chan struct{} {
	return q.done
}

func (q *Query[T]) run(ctx context.Context, fetch FetchFunc[T], events <-chan Event, cancel func()) {
	defer close(q.done)
	defer close(q.updates)
	defer cancel()

	q.refresh(ctx, fetch)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			slog.Debug("live query refresh",
				"query", q.name,
				"tables", event.Tables,
				"sequence_id", event.SequenceID)
			q.refresh(ctx, fetch)
		}
	}
}

func (q *Query[T]) refresh(ctx context.Context, fetch FetchFunc[T]) {
	result, err := fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("live query failed", "query", q.name, "error", err)
		}
		return
	}
	q.deliver(result)
}

// deliver replaces any undelivered result with v. The query goroutine is the
// only sender, so the loop settles after at most one drain.
func (q *Query[T]) deliver(v T) {
	for {
		select {
		case q.updates <- v:
			return
		default:
		}
		select {
		case <-q.updates:
		default:
		}
	}
}
