// Package coordinator implements the optimistic mutation coordinator: the
// exclusive owner of the calendar index. Every mutation applies its
// speculative change synchronously, then settles against the remote gateway
// and either commits the confirmed state or rolls back to the captured
// pre-mutation snapshot.
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/eventbus"
	"github.com/postdeck/postdeck/pkg/events"
	"github.com/postdeck/postdeck/pkg/gateway"
	"github.com/postdeck/postdeck/pkg/models"
	"github.com/postdeck/postdeck/pkg/otelhelper"
)

// Coordinator serializes all access to the index so consumers never observe a
// half-applied state. Pending-ness is communicated only on the event stream,
// never inside the data model.
//
// Mutations are independent: the coordinator does not order them relative to
// one another. When two mutations touch the same item before either settles,
// the later-settling remote call wins for the fields it governs.
type Coordinator struct {
	mu       sync.Mutex
	index    *calendar.Index
	gateway  gateway.RemoteSchedulingGateway
	bus      eventbus.EventBus
	logger   *slog.Logger
	tracer   trace.Tracer
	inFlight atomic.Int64
}

func New(loc *time.Location, gw gateway.RemoteSchedulingGateway, bus eventbus.EventBus, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		index:   calendar.NewIndex(loc),
		gateway: gw,
		bus:     bus,
		logger:  logger,
		tracer:  otel.Tracer("postdeck/coordinator"),
	}
}

// Location returns the location day buckets are keyed in.
func (c *Coordinator) Location() *time.Location {
	return c.index.Location()
}

// DayOf returns the bucket key for a timestamp.
func (c *Coordinator) DayOf(t time.Time) calendar.Day {
	return c.index.DayOf(t)
}

// ItemsForDay returns the bucket for day. Reads always reflect every
// speculative change applied so far.
func (c *Coordinator) ItemsForDay(day calendar.Day) []models.ScheduledItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.index.ItemsForDay(day)
}

// FilteredItemsForDay applies a pure platform/status filter over the bucket.
func (c *Coordinator) FilteredItemsForDay(day calendar.Day, filter calendar.Filter) []models.ScheduledItem {
	return filter.Apply(c.ItemsForDay(day))
}

// InFlight returns the number of unsettled mutations.
func (c *Coordinator) InFlight() int {
	return int(c.inFlight.Load())
}

// Move applies a single-item reschedule speculatively and submits it to the
// remote gateway. Returns calendar.ErrItemNotFound, with no mutation started
// and no event emitted, when the item is not in its expected bucket.
func (c *Coordinator) Move(ctx context.Context, req MoveRequest) (*Pending, error) {
	pending := newPending(c.bus.GenerateID(), events.MutationKindMove)

	c.mu.Lock()

	snapshot := c.index.SnapshotDays(req.From, req.To)

	if err := c.index.MoveItem(req.Item.ID, req.From, req.To, req.Updated); err != nil {
		c.mu.Unlock()

		return nil, err
	}

	c.mu.Unlock()

	c.publishStarted(ctx, pending, req.Item.ID, req.From, req.To)

	c.settle(ctx, pending, req.Item.ID, snapshot, []calendar.Day{req.From, req.To}, func(ctx context.Context) error {
		return c.gateway.RescheduleOne(ctx, req.Item.ID, req.Updated.ScheduledAt)
	})

	return pending, nil
}

// MoveMany applies a bulk reschedule speculatively. The gateway contract is
// all-or-nothing, so failure rolls back the entire batch. Returns
// calendar.ErrItemNotFound, with every applied transition undone, when any
// item is missing from its expected bucket.
func (c *Coordinator) MoveMany(ctx context.Context, reqs []MoveRequest) (*Pending, error) {
	pending := newPending(c.bus.GenerateID(), events.MutationKindBulk)

	days := make([]calendar.Day, 0, len(reqs)*2)
	for _, req := range reqs {
		days = append(days, req.From, req.To)
	}

	c.mu.Lock()

	snapshot := c.index.SnapshotDays(days...)

	for _, req := range reqs {
		if err := c.index.MoveItem(req.Item.ID, req.From, req.To, req.Updated); err != nil {
			c.index.RestoreDays(snapshot)
			c.mu.Unlock()

			return nil, err
		}
	}

	c.mu.Unlock()

	c.publishStarted(ctx, pending, models.ItemID{}, days...)

	remote := make([]gateway.RescheduleRequest, 0, len(reqs))
	for _, req := range reqs {
		remote = append(remote, gateway.RescheduleRequest{ID: req.Item.ID, NewScheduledAt: req.Updated.ScheduledAt})
	}

	c.settle(ctx, pending, models.ItemID{}, snapshot, days, func(ctx context.Context) error {
		return c.gateway.RescheduleMany(ctx, remote)
	})

	return pending, nil
}

// Create inserts a speculative item carrying a temporary identity and submits
// the create to the remote gateway. On success the temporary item is replaced
// by the server-returned item; on failure it is removed entirely, since a
// failed create has nothing to roll back to but absence.
func (c *Coordinator) Create(ctx context.Context, day calendar.Day, temp models.ScheduledItem) *Pending {
	pending := newPending(c.bus.GenerateID(), events.MutationKindCreate)

	c.mu.Lock()
	c.index.InsertItem(day, temp)
	c.mu.Unlock()

	c.publishStarted(ctx, pending, temp.ID, day)

	c.inFlight.Add(1)

	go func(ctx context.Context) {
		defer c.inFlight.Add(-1)

		ctx, span := c.startMutationSpan(ctx, "coordinator.create", pending, day)
		defer span.End()

		start := time.Now()

		created, err := c.gateway.CreateScheduledItem(ctx, gateway.CreateItemRequest{
			ScheduledAt: temp.ScheduledAt,
			Snapshot:    temp.Snapshot,
		})
		if err != nil {
			c.mu.Lock()
			c.index.RemoveItem(day, temp.ID)
			c.mu.Unlock()

			otelhelper.SetError(span, err)
			c.publishFailed(ctx, pending, temp.ID, err, time.Since(start), day)
			pending.resolve(Resolution{Outcome: OutcomeRolledBack, FailureKind: gateway.KindOf(err), Err: err})

			return
		}

		c.mu.Lock()

		serverDay := c.index.DayOf(created.ScheduledAt)
		if serverDay == day {
			c.index.ReplaceItem(day, temp.ID, created)
		} else {
			// The server shifted the slot; honor its bucketing.
			c.index.RemoveItem(day, temp.ID)
			c.index.InsertItem(serverDay, created)
		}

		c.mu.Unlock()

		c.publishSucceeded(ctx, pending, created.ID, time.Since(start), day, serverDay)
		pending.resolve(Resolution{Outcome: OutcomeCommitted})
	}(context.WithoutCancel(ctx))

	return pending
}

// Load replaces the index with the remote listing for a calendar window. It
// is synchronous and intended for startup and idle refresh; callers should
// check InFlight first to avoid clobbering speculative state.
func (c *Coordinator) Load(ctx context.Context, from, to calendar.Day) error {
	pending := newPending(c.bus.GenerateID(), events.MutationKindRefresh)

	ctx, span := c.startMutationSpan(ctx, "coordinator.load", pending, from, to)
	defer span.End()

	c.publishStarted(ctx, pending, models.ItemID{}, from, to)

	start := time.Now()

	items, err := c.gateway.ListScheduledItems(ctx, from, to)
	if err != nil {
		otelhelper.SetError(span, err)
		c.publishFailed(ctx, pending, models.ItemID{}, err, time.Since(start), from, to)
		pending.resolve(Resolution{Outcome: OutcomeRolledBack, FailureKind: gateway.KindOf(err), Err: err})

		return err
	}

	c.mu.Lock()
	c.index.ReplaceAll(items)
	c.mu.Unlock()

	c.publishSucceeded(ctx, pending, models.ItemID{}, time.Since(start), from, to)
	pending.resolve(Resolution{Outcome: OutcomeCommitted})

	return nil
}

// settle runs the remote call off the calling goroutine and finishes the
// mutation. Submitted mutations are never cancelled: the remote leg keeps the
// caller's values but not its cancellation.
func (c *Coordinator) settle(
	ctx context.Context,
	pending *Pending,
	itemID models.ItemID,
	snapshot calendar.Snapshot,
	days []calendar.Day,
	call func(ctx context.Context) error,
) {
	c.inFlight.Add(1)

	go func(ctx context.Context) {
		defer c.inFlight.Add(-1)

		ctx, span := c.startMutationSpan(ctx, "coordinator.settle", pending, days...)
		defer span.End()

		start := time.Now()

		if err := call(ctx); err != nil {
			c.mu.Lock()
			c.index.RestoreDays(snapshot)
			c.mu.Unlock()

			otelhelper.SetError(span, err)
			c.publishFailed(ctx, pending, itemID, err, time.Since(start), days...)
			pending.resolve(Resolution{Outcome: OutcomeRolledBack, FailureKind: gateway.KindOf(err), Err: err})

			return
		}

		// Reschedules carry no authoritative fields back; the speculative
		// state is final.
		c.publishSucceeded(ctx, pending, itemID, time.Since(start), days...)
		pending.resolve(Resolution{Outcome: OutcomeCommitted})
	}(context.WithoutCancel(ctx))
}

func (c *Coordinator) startMutationSpan(ctx context.Context, name string, pending *Pending, days ...calendar.Day) (context.Context, trace.Span) {
	return otelhelper.StartSpan(ctx, c.tracer, name,
		attribute.String(otelhelper.MutationIDKey, pending.mutationID),
		attribute.String(otelhelper.MutationKindKey, string(pending.kind)),
		attribute.StringSlice(otelhelper.DayKey, dateStrings(days)),
	)
}

func (c *Coordinator) baseEvent(pending *Pending, eventType events.EventType, days ...calendar.Day) events.BaseEvent {
	return events.BaseEvent{
		ID:         c.bus.GenerateID(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		MutationID: pending.mutationID,
		Kind:       pending.kind,
		Dates:      dateStrings(days),
	}
}

// dateStrings renders days as wire dates, deduplicated, in first-seen order.
func dateStrings(days []calendar.Day) []string {
	dates := make([]string, 0, len(days))
	seen := make(map[calendar.Day]bool, len(days))

	for _, day := range days {
		if seen[day] {
			continue
		}

		seen[day] = true
		dates = append(dates, day.String())
	}

	return dates
}

func (c *Coordinator) publishStarted(ctx context.Context, pending *Pending, itemID models.ItemID, days ...calendar.Day) {
	event := events.MutationStarted{
		BaseEvent: c.baseEvent(pending, events.MutationStartedEvent, days...),
		ItemID:    itemID.String(),
	}

	c.publish(ctx, pending, event)
}

func (c *Coordinator) publishSucceeded(ctx context.Context, pending *Pending, itemID models.ItemID, took time.Duration, days ...calendar.Day) {
	event := events.MutationSucceeded{
		BaseEvent: c.baseEvent(pending, events.MutationSucceededEvent, days...),
		ItemID:    itemID.String(),
		Duration:  took,
	}

	c.publish(ctx, pending, event)
}

func (c *Coordinator) publishFailed(ctx context.Context, pending *Pending, itemID models.ItemID, cause error, took time.Duration, days ...calendar.Day) {
	event := events.MutationFailed{
		BaseEvent:   c.baseEvent(pending, events.MutationFailedEvent, days...),
		ItemID:      itemID.String(),
		FailureKind: gateway.KindOf(cause),
		Error:       cause.Error(),
		Duration:    took,
	}

	c.publish(ctx, pending, event)
}

func (c *Coordinator) publish(ctx context.Context, pending *Pending, event eventbus.Event) {
	err := c.bus.Publish(ctx, pending.mutationID, event)
	if err != nil {
		// The notification stream is best-effort; the index already holds
		// the correct state.
		c.logger.Error("Failed to publish mutation event",
			"mutation_id", pending.mutationID,
			"event_type", event.GetType(),
			"error", err)
	}
}
