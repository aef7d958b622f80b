// Package web provides HTTP request and response types for the calendar API.
package web

import "github.com/postdeck/postdeck/pkg/models"

// MoveItemRequest represents the request body for rescheduling a single item.
type MoveItemRequest struct {
	Date       string `json:"date"        validate:"required"`
	TargetDate string `json:"target_date" validate:"required"`
}

// QuickCreateRequest represents the request body for creating a scheduled item
// directly on a calendar day.
type QuickCreateRequest struct {
	Title     string `json:"title"       validate:"required,min=1"`
	Caption   string `json:"caption"     validate:"required"`
	Platform  string `json:"platform"    validate:"required"`
	MediaType string `json:"media_type"  validate:"required"`
	ChannelID string `json:"channel_id"  validate:"required"`
	Date      string `json:"date"        validate:"required"`
	TimeOfDay string `json:"time_of_day"`
}

// BulkMoveEntry is one item move inside a bulk reschedule request.
type BulkMoveEntry struct {
	ItemID     string `json:"item_id"     validate:"required"`
	Date       string `json:"date"        validate:"required"`
	TargetDate string `json:"target_date" validate:"required"`
}

// BulkRescheduleRequest represents the request body for moving several items
// in a single all-or-nothing batch.
type BulkRescheduleRequest struct {
	Moves []BulkMoveEntry `json:"moves" validate:"required,min=1,dive"`
}

// MutationResponse is returned when a mutation was speculatively applied. The
// change is already visible on the calendar; the final outcome arrives on the
// event stream under the given mutation ID.
type MutationResponse struct {
	MutationID string   `json:"mutation_id"`
	Status     string   `json:"status"`
	ItemID     string   `json:"item_id,omitempty"`
	Dates      []string `json:"dates,omitempty"`
}

// DayResponse lists the items of one calendar day, ordered by scheduled time.
type DayResponse struct {
	Date  string                 `json:"date"`
	Items []models.ScheduledItem `json:"items"`
}

const (
	mutationStatusApplied = "applied"
	mutationStatusNoop    = "noop"
)
