// Package notify fans session availability changes out to live listeners.
package notify

import (
	"context"
	"sync"
	"time"
)

type EventType string

const (
	EventBooked    EventType = "booked"
	EventCancelled EventType = "cancelled"
	EventUpdated   EventType = "updated"
	EventRemoved   EventType = "removed"
)

type Event struct {
	Type          EventType `json:"type"`
	SessionID     uint      `json:"sessionId"`
	ReservationID uint      `json:"reservationId,omitempty"`
	Booked        int64     `json:"booked"`
	Capacity      int       `json:"capacity"`
	At            time.Time `json:"at"`
}

// Notifier publishes events. Implementations must not block the caller for
// long; a failed publish is never a reason to fail a booking.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Hub keeps in-process subscribers per session id.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint]map[chan Event]struct{}
	buffer int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[chan Event]struct{}), buffer: 16}
}

// Subscribe returns a channel receiving events for sessionID and a cancel
// func that unregisters and closes it.
func (h *Hub) Subscribe(sessionID uint) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan Event]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[sessionID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, sessionID)
				}
			}
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber of its session. Slow subscribers
// miss events instead of stalling the publisher.
func (h *Hub) Publish(_ context.Context, e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[e.SessionID] {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

func (h *Hub) subscribers(sessionID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}
