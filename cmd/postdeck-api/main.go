package main

import (
	"context"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/postdeck/postdeck/pkg/cmd"
	"github.com/postdeck/postdeck/pkg/coordinator"
	"github.com/postdeck/postdeck/pkg/log"
	"github.com/postdeck/postdeck/pkg/otelhelper"
	"github.com/postdeck/postdeck/pkg/services"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "postdeck-api",
		Usage:                 "Serve the scheduling calendar API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "gateway-url",
				Usage:    "Base URL of the remote scheduling service",
				Required: true,
				Sources:  cli.EnvVars("GATEWAY_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "calendar-tz",
				Usage:   "IANA timezone the calendar buckets days in",
				Value:   "UTC",
				Sources: cli.EnvVars("CALENDAR_TZ"),
			},
			&cli.StringFlag{
				Name:    "refresh-interval",
				Usage:   "Cron expression or descriptor for background calendar reloads",
				Value:   "@every 5m",
				Sources: cli.EnvVars("REFRESH_INTERVAL"),
			},
			&cli.IntFlag{
				Name:    "refresh-window-days",
				Usage:   "How many days forward each reload fetches",
				Value:   31,
				Sources: cli.EnvVars("REFRESH_WINDOW_DAYS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Postdeck API")

			// Installs the global tracer provider; the gateway and
			// coordinator pick it up when they are constructed below.
			if _, err := otelhelper.NewTracer(ctx, "postdeck-api"); err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}

			loc, err := time.LoadLocation(command.String("calendar-tz"))
			if err != nil {
				return err
			}

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			gateway := cmd.NewGateway(command.String("gateway-url"), logger)
			coord := coordinator.New(loc, gateway, eventBus, logger)

			refresh, err := services.NewRefresh(
				coord,
				command.String("refresh-interval"),
				int(command.Int("refresh-window-days")),
				logger,
			)
			if err != nil {
				return err
			}

			if err := subscribeNotifications(ctx, eventBus, logger); err != nil {
				return err
			}

			// Boot with whatever the remote knows; a failure here is not fatal,
			// the background refresh retries on its schedule.
			if err := refresh.RefreshNow(ctx); err != nil {
				logger.WarnContext(ctx, "Initial calendar load failed", "error", err)
			}

			go refresh.Run(ctx)

			api := NewAPI(logger, coord, eventBus, refresh)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
