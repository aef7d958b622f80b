// Package gateway defines the remote scheduling operations the engine
// depends on. The remote service is the source of truth; the engine only ever
// observes success or failure of these calls.
package gateway

import (
	"context"
	"time"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/models"
)

// CreateItemRequest is the input for scheduling a new item remotely.
type CreateItemRequest struct {
	ScheduledAt time.Time              `json:"scheduled_at"`
	Snapshot    models.ContentSnapshot `json:"snapshot"`
}

// RescheduleRequest moves one item to a new publish slot.
type RescheduleRequest struct {
	ID             models.ItemID `json:"id"`
	NewScheduledAt time.Time     `json:"new_scheduled_at"`
}

// RemoteSchedulingGateway is the engine's only wire-level dependency.
//
// RescheduleMany is all-or-nothing from the caller's perspective; the engine
// never handles partial success for bulk calls.
type RemoteSchedulingGateway interface {
	CreateScheduledItem(ctx context.Context, req CreateItemRequest) (models.ScheduledItem, error)
	RescheduleOne(ctx context.Context, id models.ItemID, newScheduledAt time.Time) error
	RescheduleMany(ctx context.Context, reqs []RescheduleRequest) error
	ListScheduledItems(ctx context.Context, from, to calendar.Day) ([]models.ScheduledItem, error)
}
