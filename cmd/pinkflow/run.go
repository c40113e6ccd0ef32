package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/pinkflow/pinkflow/pkg/metrics"
	"github.com/pinkflow/pinkflow/pkg/models"
	"github.com/pinkflow/pinkflow/pkg/otelhelper"
	"github.com/pinkflow/pinkflow/pkg/persistence/file"
	"github.com/pinkflow/pinkflow/pkg/schema"
	"github.com/pinkflow/pinkflow/pkg/workflow"
)

// NewRunCommand executes a workflow definition file under the policy of its
// environment.
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute a workflow definition file",
		ArgsUsage: "<definition.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "environment",
				Aliases: []string{"e"},
				Usage:   "Execute under this environment's policy instead of the workflow's own",
			},
			&cli.StringFlag{
				Name:  "context",
				Usage: "Initial execution context as a JSON object",
				Value: "{}",
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Publish execution events to this bus (memory, kafka)",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OpenTelemetry traces for the execution",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setupLogger(command, "run")

			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("missing definition file argument")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read definition: %w", err)
			}

			if err := schema.Validate(data); err != nil {
				return err
			}

			def, err := models.ParseDefinition(data)
			if err != nil {
				return err
			}

			wf, err := models.FromDefinition(def, setupRegistry(logger))
			if err != nil {
				return err
			}

			var initial models.ExecutionContext
			if err := json.Unmarshal([]byte(command.String("context")), &initial); err != nil {
				return fmt.Errorf("invalid --context: %w", err)
			}

			var envOverride models.Environment
			if s := command.String("environment"); s != "" {
				envOverride, err = models.ParseEnvironment(s)
				if err != nil {
					return err
				}
			}

			executor := workflow.NewExecutor(logger).
				WithMetrics(metrics.New(nil))

			if command.String("event-bus") != "" {
				bus, err := setupEventBus(command)
				if err != nil {
					return err
				}
				defer func() {
					if err := bus.Close(); err != nil {
						logger.WarnContext(ctx, "Failed to close event bus", "error", err)
					}
				}()

				executor.WithPublisher(bus)
			}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "pinkflow")
				if err != nil {
					return fmt.Errorf("setup tracing: %w", err)
				}

				executor.WithTracer(tracer)
			}

			persistence := file.NewPersistence(command.String("data-path"))

			manager := workflow.NewManager(logger, executor).WithPersistence(persistence)
			if err := manager.Register(ctx, wf); err != nil {
				return err
			}

			final, err := manager.Execute(ctx, wf.ID, initial, envOverride)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(final, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, string(out))

			return nil
		},
	}
}
