// Package main provides the Postdeck calendar API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/postdeck/postdeck/pkg/coordinator"
	"github.com/postdeck/postdeck/pkg/eventbus"
	"github.com/postdeck/postdeck/pkg/services"
	"github.com/postdeck/postdeck/pkg/web"
)

type API struct {
	logger      *slog.Logger
	coordinator *coordinator.Coordinator
	eventBus    eventbus.EventBus
	refresh     *services.Refresh
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	coord *coordinator.Coordinator,
	eventBus eventbus.EventBus,
	refresh *services.Refresh,
) *API {
	return &API{
		logger:      logger,
		coordinator: coord,
		eventBus:    eventBus,
		refresh:     refresh,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	rescheduleService := services.NewReschedule(a.coordinator, a.logger)
	quickCreateService := services.NewQuickCreate(a.coordinator, a.logger)

	handlers := web.NewAPIHandlers(a.coordinator, rescheduleService, quickCreateService, a.refresh, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Postdeck API")
	})

	cal := app.Group("/calendar")
	cal.Get("/:date", handlers.GetDay)
	cal.Post("/items", handlers.CreateItem)
	cal.Post("/items/:id/move", handlers.MoveItem)
	cal.Post("/reschedule", handlers.BulkReschedule)
	cal.Post("/refresh", handlers.RefreshCalendar)

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"in_flight": a.coordinator.InFlight(),
		})
	})

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
