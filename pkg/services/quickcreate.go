package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/coordinator"
	"github.com/postdeck/postdeck/pkg/models"
)

const defaultTimeOfDay = "09:00"

// QuickCreate interprets "create on this date" requests into create
// mutations, generating a temporary identity until the server assigns a real
// one.
type QuickCreate struct {
	coordinator *coordinator.Coordinator
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewQuickCreate(c *coordinator.Coordinator, logger *slog.Logger) *QuickCreate {
	return &QuickCreate{
		coordinator: c,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

// CreateInput describes a quick-create request from the calendar UI.
type CreateInput struct {
	Title        string       `validate:"required,min=1"`
	Caption      string       `validate:"required"`
	Platform     string       `validate:"required"`
	MediaType    string       `validate:"required"`
	ChannelID    string       `validate:"required"`
	ScheduledDay calendar.Day `validate:"required"`
	TimeOfDay    string       // "15:04"; defaults to 09:00
}

// RequestCreate validates the input, inserts a speculative item into the
// target day bucket, and fires the create mutation. The returned item carries
// the temporary identity shown until the server assigns a durable one. The
// error covers local validation only; a remote failure removes the
// speculative item and surfaces on the event stream.
func (s *QuickCreate) RequestCreate(ctx context.Context, input CreateInput) (models.ScheduledItem, *coordinator.Pending, error) {
	if err := s.validate.Struct(input); err != nil {
		return models.ScheduledItem{}, nil, fmt.Errorf("%w: %w", ErrInvalidCreateInput, err)
	}

	if input.ScheduledDay.IsZero() {
		return models.ScheduledItem{}, nil, fmt.Errorf("%w: scheduled day is required", ErrInvalidCreateInput)
	}

	scheduledAt, err := s.slotFor(input)
	if err != nil {
		return models.ScheduledItem{}, nil, err
	}

	temp := models.ScheduledItem{
		ID:          models.NewTemporaryID(),
		ScheduledAt: scheduledAt,
		Status:      models.ItemStatusScheduled,
		Snapshot: models.ContentSnapshot{
			Title:     input.Title,
			Caption:   input.Caption,
			Platform:  input.Platform,
			MediaType: input.MediaType,
			ChannelID: input.ChannelID,
		},
	}

	s.logger.Debug("Quick-create submitted",
		"temp_id", temp.ID.String(),
		"day", input.ScheduledDay.String(),
		"platform", input.Platform)

	return temp, s.coordinator.Create(ctx, input.ScheduledDay, temp), nil
}

func (s *QuickCreate) slotFor(input CreateInput) (time.Time, error) {
	timeOfDay := input.TimeOfDay
	if timeOfDay == "" {
		timeOfDay = defaultTimeOfDay
	}

	clock, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, input.TimeOfDay)
	}

	day := input.ScheduledDay
	hour, minute, _ := clock.Clock()

	return time.Date(day.Year, day.Month, day.Dom, hour, minute, 0, 0, s.coordinator.Location()), nil
}
