// Package live turns table-level change notifications into observable queries.
package live

import (
	"sync"
	"time"
)

// Event reports that a committed write touched one or more tables
type Event struct {
	Tables     []string
	Timestamp  time.Time
	SequenceID uint64 // monotonically increasing across the hub
}

// Touches reports whether the event concerns table
func (e Event) Touches(table string) bool {
	for _, t := range e.Tables {
		if t == table {
			return true
		}
	}
	return false
}

type subscriber struct {
	tables map[string]struct{}
	ch     chan Event
}

func (s *subscriber) wants(e Event) bool {
	if len(s.tables) == 0 {
		return true
	}
	for _, t := range e.Tables {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}

// Hub fans change events out to subscribers. It satisfies db.Notifier.
type Hub struct {
	mu     sync.Mutex
	seq    uint64
	nextID int
	subs   map[int]*subscriber
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Notify publishes a change to the given tables. It never blocks: a
// subscriber that has not consumed its previous event keeps that one, which
// is enough to make it re-query.
func (h *Hub) Notify(tables ...string) {
	if len(tables) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	event := Event{
		Tables:     append([]string(nil), tables...),
		Timestamp:  time.Now(),
		SequenceID: h.seq,
	}

	for _, s := range h.subs {
		if !s.wants(event) {
			continue
		}
		select {
		case s.ch <- event:
		default:
		}
	}
}

// Subscribe returns a channel receiving events for the given tables (all
// tables when none are named) and a function that cancels the subscription.
func (h *Hub) Subscribe(tables ...string) (<-chan Event, func()) {
	s := &subscriber{
		tables: make(map[string]struct{}, len(tables)),
		ch:     make(chan Event, 1),
	}
	for _, t := range tables {
		s.tables[t] = struct{}{}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = s
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
	return s.ch, cancel
}

// Subscribers returns the number of active subscriptions
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
