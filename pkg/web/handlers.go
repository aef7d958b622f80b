// Package web provides HTTP handlers and REST API endpoints for the calendar.
package web

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/coordinator"
	"github.com/postdeck/postdeck/pkg/models"
	"github.com/postdeck/postdeck/pkg/services"
)

type APIHandlers struct {
	coordinator        *coordinator.Coordinator
	rescheduleService  *services.Reschedule
	quickCreateService *services.QuickCreate
	refreshService     *services.Refresh
	validator          *validator.Validate
}

func NewAPIHandlers(
	coord *coordinator.Coordinator,
	rescheduleService *services.Reschedule,
	quickCreateService *services.QuickCreate,
	refreshService *services.Refresh,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		coordinator:        coord,
		rescheduleService:  rescheduleService,
		quickCreateService: quickCreateService,
		refreshService:     refreshService,
		validator:          validator,
	}
}

// GetDay returns one day bucket, optionally narrowed by the platform and
// status query parameters. Filtering is display-only and never changes the
// underlying calendar.
func (h *APIHandlers) GetDay(c fiber.Ctx) error {
	day, err := calendar.ParseDay(c.Params("date"))
	if err != nil {
		return badRequest(c, "Invalid date, expected YYYY-MM-DD")
	}

	filter, err := h.parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(DayResponse{
		Date:  day.String(),
		Items: h.coordinator.FilteredItemsForDay(day, filter),
	})
}

// MoveItem reschedules a single item to another day, keeping its time-of-day.
// The move is applied speculatively: 202 means the calendar already shows the
// item on the target day and the outcome will arrive on the event stream.
func (h *APIHandlers) MoveItem(c fiber.Ctx) error {
	itemID, err := models.ParseItemID(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid item ID")
	}

	var req MoveItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	item, targetDay, err := h.resolveMove(itemID, req.Date, req.TargetDate)
	if err != nil {
		return handleServiceError(c, err)
	}

	pending, err := h.rescheduleService.RequestMove(c.Context(), item, targetDay)
	if err != nil {
		return handleServiceError(c, err)
	}

	if pending == nil {
		return c.JSON(MutationResponse{Status: mutationStatusNoop})
	}

	return accepted(c, pending)
}

// BulkReschedule moves several items in one all-or-nothing batch.
func (h *APIHandlers) BulkReschedule(c fiber.Ctx) error {
	var req BulkRescheduleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	moves := make([]services.MoveInput, 0, len(req.Moves))

	for _, entry := range req.Moves {
		itemID, err := models.ParseItemID(entry.ItemID)
		if err != nil {
			return badRequest(c, "Invalid item ID: "+entry.ItemID)
		}

		item, targetDay, err := h.resolveMove(itemID, entry.Date, entry.TargetDate)
		if err != nil {
			return handleServiceError(c, err)
		}

		moves = append(moves, services.MoveInput{Item: item, TargetDay: targetDay})
	}

	pending, err := h.rescheduleService.RequestMoveMany(c.Context(), moves)
	if err != nil {
		return handleServiceError(c, err)
	}

	return accepted(c, pending)
}

// CreateItem quick-creates a scheduled item on a calendar day. The item is
// visible immediately under a temporary identity; the server-assigned record
// replaces it when the create settles.
func (h *APIHandlers) CreateItem(c fiber.Ctx) error {
	var req QuickCreateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	day, err := calendar.ParseDay(req.Date)
	if err != nil {
		return badRequest(c, "Invalid date, expected YYYY-MM-DD")
	}

	temp, pending, err := h.quickCreateService.RequestCreate(c.Context(), services.CreateInput{
		Title:        req.Title,
		Caption:      req.Caption,
		Platform:     req.Platform,
		MediaType:    req.MediaType,
		ChannelID:    req.ChannelID,
		ScheduledDay: day,
		TimeOfDay:    req.TimeOfDay,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(MutationResponse{
		MutationID: pending.MutationID(),
		Status:     mutationStatusApplied,
		ItemID:     temp.ID.String(),
	})
}

// RefreshCalendar reloads the visible window from the remote service.
func (h *APIHandlers) RefreshCalendar(c fiber.Ctx) error {
	if err := h.refreshService.RefreshNow(c.Context()); err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"status": "refreshed"})
}

func (h *APIHandlers) parseFilter(c fiber.Ctx) (calendar.Filter, error) {
	filter := calendar.Filter{Platform: c.Query("platform")}

	if status := c.Query("status"); status != "" {
		parsed := models.ItemStatus(status)
		if !models.ValidStatus(parsed) {
			return calendar.Filter{}, models.ErrInvalidItemStatus
		}

		filter.Status = parsed
	}

	return filter, nil
}

// resolveMove finds the item in its claimed day bucket and parses the target
// date. Moves always reference the item as currently placed so a stale drag
// against an already-moved item is rejected instead of applied twice.
func (h *APIHandlers) resolveMove(itemID models.ItemID, date, targetDate string) (models.ScheduledItem, calendar.Day, error) {
	day, err := calendar.ParseDay(date)
	if err != nil {
		return models.ScheduledItem{}, calendar.Day{}, models.ErrInvalidScheduledAt
	}

	targetDay, err := calendar.ParseDay(targetDate)
	if err != nil {
		return models.ScheduledItem{}, calendar.Day{}, models.ErrInvalidScheduledAt
	}

	for _, item := range h.coordinator.ItemsForDay(day) {
		if item.ID.Equal(itemID) {
			return item, targetDay, nil
		}
	}

	return models.ScheduledItem{}, calendar.Day{}, services.ErrItemNotFound
}

func accepted(c fiber.Ctx, pending *coordinator.Pending) error {
	return c.Status(fiber.StatusAccepted).JSON(MutationResponse{
		MutationID: pending.MutationID(),
		Status:     mutationStatusApplied,
	})
}
