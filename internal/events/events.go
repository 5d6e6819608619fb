// internal/events/events.go

// Package events publishes order, issue and rating lifecycle events to a
// configurable sink. Publishing is best-effort from the stores' point of
// view: a sink failure is surfaced as a retryable error but never rolls back
// the state change that produced the event.
package events

import (
	"context"
	"time"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
	TypeIssueSubmitted     = "issue.submitted"
	TypeIssueStatusChanged = "issue.status_changed"
	TypeRatingSubmitted    = "rating.submitted"
)

// Event is one lifecycle occurrence. Key groups related events for partitioned
// sinks (order id, issue id).
type Event struct {
	Type       string                 `json:"type"`
	Key        string                 `json:"key"`
	OccurredAt time.Time              `json:"occurredAt"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// New builds an event stamped with the current UTC time.
func New(eventType, key string, payload map[string]interface{}) Event {
	return Event{
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Sink receives lifecycle events.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopSink drops every event. Used by tests that do not care about events.
type NopSink struct{}

func (NopSink) Publish(ctx context.Context, event Event) error { return nil }
func (NopSink) Close() error                                   { return nil }
