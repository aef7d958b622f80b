// Package events defines event types and structures for mutation lifecycle
// notifications. The rendering layer consumes these to show transient status;
// they are a side channel and never part of the calendar data model.
package events

import (
	"time"

	"github.com/postdeck/postdeck/pkg/gateway"
)

type EventType string

// Topic carrying all mutation lifecycle events.
const Topic = "postdeck.mutations"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	MutationStartedEvent   EventType = "mutation.started"
	MutationSucceededEvent EventType = "mutation.succeeded"
	MutationFailedEvent    EventType = "mutation.failed"
)

// MutationKind identifies which coordinator operation produced an event.
type MutationKind string

const (
	MutationKindMove    MutationKind = "move"
	MutationKindCreate  MutationKind = "create"
	MutationKindBulk    MutationKind = "bulk_reschedule"
	MutationKindRefresh MutationKind = "refresh"
)

type BaseEvent struct {
	ID         string       `json:"id"`
	Type       EventType    `json:"type"`
	Timestamp  time.Time    `json:"timestamp"`
	MutationID string       `json:"mutation_id"`
	Kind       MutationKind `json:"kind"`
	Dates      []string     `json:"dates,omitempty"` // Affected calendar dates, "2006-01-02"
}

// MutationStarted is emitted after the speculative change is applied and
// before the remote call is issued.
type MutationStarted struct {
	BaseEvent

	ItemID string `json:"item_id,omitempty"`
}

func (m MutationStarted) GetType() EventType {
	return MutationStartedEvent
}

// MutationSucceeded is emitted after the remote call confirmed the change and
// any authoritative fields were merged.
type MutationSucceeded struct {
	BaseEvent

	ItemID   string        `json:"item_id,omitempty"`
	Duration time.Duration `json:"duration"`
}

func (m MutationSucceeded) GetType() EventType {
	return MutationSucceededEvent
}

// MutationFailed is emitted after the speculative change was rolled back.
type MutationFailed struct {
	BaseEvent

	ItemID      string        `json:"item_id,omitempty"`
	FailureKind gateway.Kind  `json:"failure_kind"`
	Error       string        `json:"error"`
	Duration    time.Duration `json:"duration"`
}

func (m MutationFailed) GetType() EventType {
	return MutationFailedEvent
}
