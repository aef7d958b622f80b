package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/coordinator"
	"github.com/postdeck/postdeck/pkg/gateway"
	"github.com/postdeck/postdeck/pkg/mocks"
	"github.com/postdeck/postdeck/pkg/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func permissiveBus() *mocks.MockEventBus {
	bus := &mocks.MockEventBus{}
	bus.On("GenerateID").Return("test-id")
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	return bus
}

// seedCoordinator builds a coordinator holding the given items by driving a
// load through the public API.
func seedCoordinator(t *testing.T, gw *mocks.MockGateway, items ...models.ScheduledItem) *coordinator.Coordinator {
	t.Helper()

	c := coordinator.New(time.UTC, gw, permissiveBus(), discardLogger())

	gw.On("ListScheduledItems", mock.Anything, mock.Anything, mock.Anything).Return(items, nil).Once()
	require.NoError(t, c.Load(t.Context(),
		calendar.Day{Year: 2025, Month: time.March, Dom: 1},
		calendar.Day{Year: 2025, Month: time.March, Dom: 31},
	))

	return c
}

func scheduledItem(id string, at time.Time) models.ScheduledItem {
	return models.ScheduledItem{
		ID:          models.DurableID(id),
		ScheduledAt: at,
		Status:      models.ItemStatusScheduled,
		Snapshot:    models.ContentSnapshot{Title: "post " + id, Platform: "instagram"},
	}
}

func waitCommitted(t *testing.T, pending *coordinator.Pending) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := pending.Wait(ctx)
	require.NoError(t, err)

	return res.Committed()
}

func TestRequestMove_SameDayIsNoOp(t *testing.T) {
	gw := &mocks.MockGateway{}
	a := scheduledItem("a", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	c := seedCoordinator(t, gw, a)
	service := NewReschedule(c, discardLogger())

	day := calendar.Day{Year: 2025, Month: time.March, Dom: 10}
	before := c.ItemsForDay(day)

	pending, err := service.RequestMove(t.Context(), a, day)
	require.NoError(t, err)
	assert.Nil(t, pending)

	// No mutation, no remote call, no bucket change.
	assert.Equal(t, before, c.ItemsForDay(day))
	gw.AssertNotCalled(t, "RescheduleOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestMove_PreservesTimeOfDay(t *testing.T) {
	gw := &mocks.MockGateway{}
	a := scheduledItem("a", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	c := seedCoordinator(t, gw, a)
	service := NewReschedule(c, discardLogger())

	wantAt := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	gw.On("RescheduleOne", mock.Anything, a.ID, wantAt).Return(nil).Once()

	target := calendar.Day{Year: 2025, Month: time.March, Dom: 12}

	pending, err := service.RequestMove(t.Context(), a, target)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.True(t, waitCommitted(t, pending))

	moved := c.ItemsForDay(target)
	require.Len(t, moved, 1)
	assert.Equal(t, wantAt, moved[0].ScheduledAt)
	assert.Empty(t, c.ItemsForDay(calendar.Day{Year: 2025, Month: time.March, Dom: 10}))
	gw.AssertExpectations(t)
}

func TestRequestMove_RemoteFailureReportsNotCommitted(t *testing.T) {
	gw := &mocks.MockGateway{}
	a := scheduledItem("a", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	c := seedCoordinator(t, gw, a)
	service := NewReschedule(c, discardLogger())

	gw.On("RescheduleOne", mock.Anything, mock.Anything, mock.Anything).
		Return(gateway.NewUnavailable("RescheduleOne", assert.AnError)).Once()

	pending, err := service.RequestMove(t.Context(), a, calendar.Day{Year: 2025, Month: time.March, Dom: 12})
	require.NoError(t, err)
	require.NotNil(t, pending)

	assert.False(t, waitCommitted(t, pending))

	// The item snapped back to its original day.
	origin := c.ItemsForDay(calendar.Day{Year: 2025, Month: time.March, Dom: 10})
	require.Len(t, origin, 1)
	assert.Equal(t, a.ScheduledAt, origin[0].ScheduledAt)
}

func TestRequestMove_UnknownItem(t *testing.T) {
	gw := &mocks.MockGateway{}
	c := seedCoordinator(t, gw)
	service := NewReschedule(c, discardLogger())

	ghost := scheduledItem("ghost", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))

	pending, err := service.RequestMove(t.Context(), ghost, calendar.Day{Year: 2025, Month: time.March, Dom: 12})
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Nil(t, pending)
}

func TestRequestMoveMany_SkipsSameDayEntries(t *testing.T) {
	gw := &mocks.MockGateway{}
	a := scheduledItem("a", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	b := scheduledItem("b", time.Date(2025, 3, 11, 11, 0, 0, 0, time.UTC))
	c := seedCoordinator(t, gw, a, b)
	service := NewReschedule(c, discardLogger())

	gw.On("RescheduleMany", mock.Anything, mock.MatchedBy(func(reqs []gateway.RescheduleRequest) bool {
		return len(reqs) == 1 && reqs[0].ID.Equal(b.ID)
	})).Return(nil).Once()

	target := calendar.Day{Year: 2025, Month: time.March, Dom: 14}

	pending, err := service.RequestMoveMany(t.Context(), []MoveInput{
		{Item: a, TargetDay: calendar.Day{Year: 2025, Month: time.March, Dom: 10}}, // same day, dropped
		{Item: b, TargetDay: target},
	})
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.True(t, waitCommitted(t, pending))

	gw.AssertExpectations(t)
}

func TestRequestMoveMany_AllSameDay(t *testing.T) {
	gw := &mocks.MockGateway{}
	a := scheduledItem("a", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	c := seedCoordinator(t, gw, a)
	service := NewReschedule(c, discardLogger())

	pending, err := service.RequestMoveMany(t.Context(), []MoveInput{
		{Item: a, TargetDay: calendar.Day{Year: 2025, Month: time.March, Dom: 10}},
	})
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Nil(t, pending)
	gw.AssertNotCalled(t, "RescheduleMany", mock.Anything, mock.Anything)
}
