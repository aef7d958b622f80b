// Package models defines the core domain models for the scheduling engine.
package models

import "time"

// ItemStatus represents the publish lifecycle state of a scheduled item.
type ItemStatus string

const (
	ItemStatusScheduled  ItemStatus = "scheduled"  // Assigned to a future slot
	ItemStatusQueued     ItemStatus = "queued"     // Picked up for publishing
	ItemStatusPublishing ItemStatus = "publishing" // Publish in progress
	ItemStatusPublished  ItemStatus = "published"  // Publish confirmed
	ItemStatusFailed     ItemStatus = "failed"     // Publish failed
	ItemStatusCancelled  ItemStatus = "cancelled"  // Withdrawn by the operator
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s ItemStatus) bool {
	switch s {
	case ItemStatusScheduled, ItemStatusQueued, ItemStatusPublishing,
		ItemStatusPublished, ItemStatusFailed, ItemStatusCancelled:
		return true
	default:
		return false
	}
}

// ContentSnapshot is the immutable content payload captured at scheduling
// time. It does not change when the underlying draft is edited later.
type ContentSnapshot struct {
	Title     string            `json:"title"`
	Caption   string            `json:"caption"`
	Platform  string            `json:"platform"`
	MediaType string            `json:"media_type"`
	MediaRefs []string          `json:"media_refs,omitempty"`
	ChannelID string            `json:"channel_id"`
	Metadata  map[string]string `json:"metadata,omitempty"` // Per-channel publish metadata
}

// ScheduledItem represents one piece of content assigned to a publish slot.
type ScheduledItem struct {
	ID          ItemID          `json:"id"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	Status      ItemStatus      `json:"status"`
	Snapshot    ContentSnapshot `json:"snapshot"`
	RetryCount  int             `json:"retry_count"` // Informational only at this layer
}

// WithScheduledAt returns a copy of the item assigned to a new publish slot.
func (i ScheduledItem) WithScheduledAt(at time.Time) ScheduledItem {
	i.ScheduledAt = at

	return i
}

// Validate performs validation on the item fields.
func (i ScheduledItem) Validate() error {
	if i.ID.IsZero() {
		return ErrInvalidItemID
	}

	if i.ScheduledAt.IsZero() {
		return ErrInvalidScheduledAt
	}

	if !ValidStatus(i.Status) {
		return ErrInvalidItemStatus
	}

	return nil
}
