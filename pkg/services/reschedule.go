package services

import (
	"context"
	"log/slog"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/coordinator"
	"github.com/postdeck/postdeck/pkg/models"
)

// Reschedule interprets drag gestures into reschedule mutations.
type Reschedule struct {
	coordinator *coordinator.Coordinator
	logger      *slog.Logger
}

func NewReschedule(c *coordinator.Coordinator, logger *slog.Logger) *Reschedule {
	return &Reschedule{
		coordinator: c,
		logger:      logger,
	}
}

// MoveInput is one drag gesture: an item dropped on a target day.
type MoveInput struct {
	Item      models.ScheduledItem
	TargetDay calendar.Day
}

// RequestMove submits a single-item reschedule. The new slot keeps the item's
// time-of-day and takes the target date.
//
// A drop on the item's current day returns (nil, nil) without issuing a
// mutation or a notification. Otherwise the returned Pending resolves once
// the remote call settles; Wait(...).Committed() reports whether the move
// ultimately succeeded. A remote failure is never returned as an error here:
// it rolls the item back and surfaces on the event stream.
func (s *Reschedule) RequestMove(ctx context.Context, item models.ScheduledItem, targetDay calendar.Day) (*coordinator.Pending, error) {
	originalDay := s.coordinator.DayOf(item.ScheduledAt)
	if originalDay == targetDay {
		s.logger.Debug("Same-day drop ignored",
			"item_id", item.ID.String(),
			"day", targetDay.String())

		return nil, nil
	}

	req := s.buildMove(item, originalDay, targetDay)

	pending, err := s.coordinator.Move(ctx, req)
	if err != nil {
		s.logger.Warn("Move rejected locally",
			"item_id", item.ID.String(),
			"from", originalDay.String(),
			"to", targetDay.String(),
			"error", err)

		return nil, err
	}

	return pending, nil
}

// RequestMoveMany submits a bulk reschedule. Same-day entries are dropped
// from the batch; an all-same-day batch returns ErrEmptyBatch. The gateway
// treats the batch as all-or-nothing, so a failure rolls back every move.
func (s *Reschedule) RequestMoveMany(ctx context.Context, moves []MoveInput) (*coordinator.Pending, error) {
	reqs := make([]coordinator.MoveRequest, 0, len(moves))

	for _, move := range moves {
		originalDay := s.coordinator.DayOf(move.Item.ScheduledAt)
		if originalDay == move.TargetDay {
			continue
		}

		reqs = append(reqs, s.buildMove(move.Item, originalDay, move.TargetDay))
	}

	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}

	pending, err := s.coordinator.MoveMany(ctx, reqs)
	if err != nil {
		s.logger.Warn("Bulk reschedule rejected locally", "moves", len(reqs), "error", err)

		return nil, err
	}

	return pending, nil
}

func (s *Reschedule) buildMove(item models.ScheduledItem, from, to calendar.Day) coordinator.MoveRequest {
	newAt := to.At(item.ScheduledAt, s.coordinator.Location())

	return coordinator.MoveRequest{
		Item:    item,
		From:    from,
		To:      to,
		Updated: item.WithScheduledAt(newAt),
	}
}
