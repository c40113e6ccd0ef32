package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	cli "github.com/urfave/cli/v3"

	"github.com/pinkflow/pinkflow/pkg/events"
)

// NewWatchCommand subscribes to the execution event stream and logs every
// event until interrupted. Useful against a Kafka bus shared with other
// pinkflow processes.
func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Stream workflow execution events",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus to subscribe to (memory, kafka)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Serve Prometheus metrics on this address (empty disables)",
				Sources: cli.EnvVars("METRICS_ADDR"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setupLogger(command, "watch")

			bus, err := setupEventBus(command)
			if err != nil {
				return err
			}
			defer func() {
				if err := bus.Close(); err != nil {
					logger.WarnContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			if addr := command.String("metrics-addr"); addr != "" {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.Handler())

					if err := http.ListenAndServe(addr, mux); err != nil {
						logger.ErrorContext(ctx, "Metrics server stopped", "error", err)
					}
				}()
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = bus.Subscribe(ctx, func(ctx context.Context, event events.Event) error {
				logger.InfoContext(ctx, "Execution event", "type", event.GetType())

				return nil
			})
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "Watching execution events")
			<-ctx.Done()

			return nil
		},
	}
}
