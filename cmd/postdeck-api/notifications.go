package main

import (
	"context"
	"log/slog"

	"github.com/postdeck/postdeck/pkg/eventbus"
	"github.com/postdeck/postdeck/pkg/events"
)

// subscribeNotifications attaches the mutation lifecycle consumers. The API
// process only logs them; rendering clients subscribe to the same topic to
// repaint affected days and raise failure toasts.
func subscribeNotifications(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	err := bus.Handle(events.MutationStartedEvent, func(ctx context.Context, event any) error {
		started, ok := event.(*events.MutationStarted)
		if !ok {
			return nil
		}

		logger.DebugContext(ctx, "Mutation started",
			"mutation_id", started.MutationID,
			"kind", started.Kind,
			"item_id", started.ItemID,
			"dates", started.Dates)

		return nil
	})
	if err != nil {
		return err
	}

	err = bus.Handle(events.MutationSucceededEvent, func(ctx context.Context, event any) error {
		succeeded, ok := event.(*events.MutationSucceeded)
		if !ok {
			return nil
		}

		logger.InfoContext(ctx, "Mutation succeeded",
			"mutation_id", succeeded.MutationID,
			"kind", succeeded.Kind,
			"item_id", succeeded.ItemID,
			"duration", succeeded.Duration)

		return nil
	})
	if err != nil {
		return err
	}

	err = bus.Handle(events.MutationFailedEvent, func(ctx context.Context, event any) error {
		failed, ok := event.(*events.MutationFailed)
		if !ok {
			return nil
		}

		logger.WarnContext(ctx, "Mutation failed, change rolled back",
			"mutation_id", failed.MutationID,
			"kind", failed.Kind,
			"item_id", failed.ItemID,
			"failure_kind", failed.FailureKind,
			"error", failed.Error,
			"dates", failed.Dates)

		return nil
	})
	if err != nil {
		return err
	}

	go func() {
		if err := bus.Subscribe(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Notification subscription stopped", "error", err)
		}
	}()

	return nil
}
