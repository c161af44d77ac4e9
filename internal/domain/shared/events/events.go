// Package events carries the domain events aggregates emit for the outbox.
package events

import (
	"strings"
	"time"
)

type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder buffers events on an aggregate until the handler drains them
// into the outbox.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event != nil {
		r.pending = append(r.pending, event)
	}
}

func (r *EventRecorder) PendingEvents() []DomainEvent {
	return append([]DomainEvent(nil), r.pending...)
}

func (r *EventRecorder) Drain() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}

// Named is an event with no payload beyond its identity, used by the
// catalog aggregates (rooms, rules, site config).
type Named struct {
	Name      string    `json:"name"`
	Aggregate string    `json:"aggregate"`
	Time      time.Time `json:"time"`
}

func (e Named) EventName() string     { return e.Name }
func (e Named) AggregateID() string   { return e.Aggregate }
func (e Named) OccurredAt() time.Time { return e.Time }

// AggregateType is the event name up to its first dot, e.g. "booking" for
// "booking.created".
func AggregateType(name string) string {
	kind, _, _ := strings.Cut(name, ".")
	return kind
}
