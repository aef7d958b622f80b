package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/coordinator"
	"github.com/postdeck/postdeck/pkg/mocks"
	"github.com/postdeck/postdeck/pkg/models"
	"github.com/postdeck/postdeck/pkg/services"
	"github.com/postdeck/postdeck/pkg/web"
)

func setupTestApp(t *testing.T, gw *mocks.MockGateway, items ...models.ScheduledItem) (*fiber.App, *coordinator.Coordinator) {
	t.Helper()

	bus := &mocks.MockEventBus{}
	bus.On("GenerateID").Return("test-id")
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	coord := coordinator.New(time.UTC, gw, bus, logger)

	gw.On("ListScheduledItems", mock.Anything, mock.Anything, mock.Anything).
		Return(items, nil).Once()
	require.NoError(t, coord.Load(t.Context(),
		calendar.Day{Year: 2025, Month: time.March, Dom: 1},
		calendar.Day{Year: 2025, Month: time.March, Dom: 31},
	))

	refresh, err := services.NewRefresh(coord, "@hourly", 31, logger)
	require.NoError(t, err)

	handlers := web.NewAPIHandlers(
		coord,
		services.NewReschedule(coord, logger),
		services.NewQuickCreate(coord, logger),
		refresh,
		validator.New(validator.WithRequiredStructEnabled()),
	)

	app := fiber.New()
	cal := app.Group("/calendar")
	cal.Get("/:date", handlers.GetDay)
	cal.Post("/items", handlers.CreateItem)
	cal.Post("/items/:id/move", handlers.MoveItem)
	cal.Post("/reschedule", handlers.BulkReschedule)
	cal.Post("/refresh", handlers.RefreshCalendar)

	return app, coord
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func calendarItem(id string, at time.Time, platform string) models.ScheduledItem {
	return models.ScheduledItem{
		ID:          models.DurableID(id),
		ScheduledAt: at,
		Status:      models.ItemStatusScheduled,
		Snapshot:    models.ContentSnapshot{Title: "post " + id, Platform: platform},
	}
}

func TestGetDay(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, _ := setupTestApp(t, gw,
		calendarItem("a", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), "instagram"),
		calendarItem("b", time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC), "tiktok"),
	)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/calendar/2025-03-10", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var day web.DayResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&day))
	assert.Equal(t, "2025-03-10", day.Date)
	require.Len(t, day.Items, 2)
	assert.Equal(t, "a", day.Items[0].ID.Value())
	assert.Equal(t, "b", day.Items[1].ID.Value())
}

func TestGetDay_PlatformFilter(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, _ := setupTestApp(t, gw,
		calendarItem("a", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), "instagram"),
		calendarItem("b", time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC), "tiktok"),
	)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/calendar/2025-03-10?platform=tiktok", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var day web.DayResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&day))
	require.Len(t, day.Items, 1)
	assert.Equal(t, "b", day.Items[0].ID.Value())
}

func TestGetDay_InvalidDate(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, _ := setupTestApp(t, gw)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/calendar/not-a-date", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetDay_InvalidStatusFilter(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, _ := setupTestApp(t, gw)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/calendar/2025-03-10?status=bogus", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMoveItem(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, coord := setupTestApp(t, gw,
		calendarItem("a", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), "instagram"),
	)

	gw.On("RescheduleOne", mock.Anything, models.DurableID("a"),
		time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)).Return(nil).Once()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/calendar/items/a/move", web.MoveItemRequest{
		Date:       "2025-03-10",
		TargetDate: "2025-03-12",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var result web.MutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "applied", result.Status)
	assert.NotEmpty(t, result.MutationID)

	// Speculative apply: the item is already on the target day.
	target := calendar.Day{Year: 2025, Month: time.March, Dom: 12}
	require.Len(t, coord.ItemsForDay(target), 1)

	assert.Eventually(t, func() bool {
		return coord.InFlight() == 0
	}, 2*time.Second, 10*time.Millisecond)
	gw.AssertExpectations(t)
}

func TestMoveItem_SameDayIsNoop(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, _ := setupTestApp(t, gw,
		calendarItem("a", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), "instagram"),
	)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/calendar/items/a/move", web.MoveItemRequest{
		Date:       "2025-03-10",
		TargetDate: "2025-03-10",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result web.MutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "noop", result.Status)
	gw.AssertNotCalled(t, "RescheduleOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestMoveItem_UnknownItem(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, _ := setupTestApp(t, gw)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/calendar/items/ghost/move", web.MoveItemRequest{
		Date:       "2025-03-10",
		TargetDate: "2025-03-12",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMoveItem_InvalidBody(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, _ := setupTestApp(t, gw)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/calendar/items/a/move", web.MoveItemRequest{
		Date: "2025-03-10",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateItem(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, coord := setupTestApp(t, gw)

	created := models.ScheduledItem{
		ID:          models.DurableID("post-7"),
		ScheduledAt: time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC),
		Status:      models.ItemStatusScheduled,
	}
	gw.On("CreateScheduledItem", mock.Anything, mock.Anything).Return(created, nil).Once()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/calendar/items", web.QuickCreateRequest{
		Title:     "Launch post",
		Caption:   "We are live!",
		Platform:  "instagram",
		MediaType: "image",
		ChannelID: "chan-1",
		Date:      "2025-03-12",
		TimeOfDay: "10:30",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var result web.MutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "applied", result.Status)
	assert.Contains(t, result.ItemID, "tmp:")

	day := calendar.Day{Year: 2025, Month: time.March, Dom: 12}
	require.Len(t, coord.ItemsForDay(day), 1)

	assert.Eventually(t, func() bool {
		items := coord.ItemsForDay(day)

		return len(items) == 1 && items[0].ID.IsDurable()
	}, 2*time.Second, 10*time.Millisecond)
	gw.AssertExpectations(t)
}

func TestCreateItem_MissingFields(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, _ := setupTestApp(t, gw)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/calendar/items", web.QuickCreateRequest{
		Title: "Launch post",
		Date:  "2025-03-12",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBulkReschedule(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, coord := setupTestApp(t, gw,
		calendarItem("a", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), "instagram"),
		calendarItem("b", time.Date(2025, 3, 11, 11, 0, 0, 0, time.UTC), "tiktok"),
	)

	gw.On("RescheduleMany", mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/calendar/reschedule", web.BulkRescheduleRequest{
		Moves: []web.BulkMoveEntry{
			{ItemID: "a", Date: "2025-03-10", TargetDate: "2025-03-14"},
			{ItemID: "b", Date: "2025-03-11", TargetDate: "2025-03-14"},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	assert.Eventually(t, func() bool {
		return coord.InFlight() == 0
	}, 2*time.Second, 10*time.Millisecond)

	target := calendar.Day{Year: 2025, Month: time.March, Dom: 14}
	assert.Len(t, coord.ItemsForDay(target), 2)
	gw.AssertExpectations(t)
}

func TestBulkReschedule_EmptyBatch(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, _ := setupTestApp(t, gw)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/calendar/reschedule", web.BulkRescheduleRequest{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshCalendar(t *testing.T) {
	gw := &mocks.MockGateway{}
	app, coord := setupTestApp(t, gw)

	remote := calendarItem("post-9", time.Now().UTC().Add(48*time.Hour), "instagram")
	gw.On("ListScheduledItems", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.ScheduledItem{remote}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/calendar/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	day := calendar.DayOf(remote.ScheduledAt, time.UTC)
	assert.Len(t, coord.ItemsForDay(day), 1)
}
