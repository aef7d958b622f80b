package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/coordinator"
)

// Refresh periodically reloads the visible calendar window from the remote
// service. A reload is skipped while any mutation is in flight so speculative
// state is never clobbered mid-settle.
type Refresh struct {
	coordinator *coordinator.Coordinator
	schedule    cron.Schedule
	windowDays  int
	logger      *slog.Logger
}

// NewRefresh parses spec as a cron expression or descriptor ("@every 5m") and
// configures the reload window as windowDays forward from today.
func NewRefresh(c *coordinator.Coordinator, spec string, windowDays int, logger *slog.Logger) (*Refresh, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	if windowDays <= 0 {
		windowDays = 31
	}

	return &Refresh{
		coordinator: c,
		schedule:    schedule,
		windowDays:  windowDays,
		logger:      logger,
	}, nil
}

// Run reloads on the configured schedule until ctx is done.
func (r *Refresh) Run(ctx context.Context) {
	for {
		next := r.schedule.Next(time.Now())

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()

			return
		case <-timer.C:
		}

		if r.coordinator.InFlight() > 0 {
			r.logger.Debug("Skipping refresh, mutations in flight",
				"in_flight", r.coordinator.InFlight())

			continue
		}

		if err := r.RefreshNow(ctx); err != nil {
			r.logger.Warn("Calendar refresh failed", "error", err)
		}
	}
}

// RefreshNow reloads the window immediately.
func (r *Refresh) RefreshNow(ctx context.Context) error {
	loc := r.coordinator.Location()
	from := calendar.DayOf(time.Now().In(loc), loc)
	to := calendar.DayOf(time.Now().In(loc).AddDate(0, 0, r.windowDays), loc)

	return r.coordinator.Load(ctx, from, to)
}
