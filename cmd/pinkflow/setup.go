package main

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	cli "github.com/urfave/cli/v3"

	logaction "github.com/pinkflow/pinkflow/pkg/actions/log"
	"github.com/pinkflow/pinkflow/pkg/actions/transform"
	"github.com/pinkflow/pinkflow/pkg/channels/gochannel"
	"github.com/pinkflow/pinkflow/pkg/channels/kafka"
	"github.com/pinkflow/pinkflow/pkg/eventbus"
	"github.com/pinkflow/pinkflow/pkg/log"
	"github.com/pinkflow/pinkflow/pkg/persistence/file"
	"github.com/pinkflow/pinkflow/pkg/registry"
	"github.com/pinkflow/pinkflow/pkg/workflow"
)

// setupLogger configures the process logger from the global flag and returns
// a module-scoped logger for the subcommand.
func setupLogger(command *cli.Command, module string) *slog.Logger {
	log.Setup(command.String("log-level"))

	return log.WithModule(module)
}

// setupRegistry builds the action registry with the built-in actions.
func setupRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterAction(logaction.NewActionFactory(logger))
	reg.RegisterAction(transform.NewActionFactory())

	return reg
}

// setupManager wires a manager against file persistence under data-path.
func setupManager(command *cli.Command, logger *slog.Logger) *workflow.Manager {
	executor := workflow.NewExecutor(logger)
	persistence := file.NewPersistence(command.String("data-path"))

	return workflow.NewManager(logger, executor).WithPersistence(persistence)
}

// setupEventBus builds the event bus named by the event-bus flag. Kafka
// reads brokers from KAFKA_BROKERS; "memory" runs in-process.
func setupEventBus(command *cli.Command) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewStdLogger(false, false)

	switch busType := command.String("event-bus"); busType {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermillLogger, "pinkflow")
		if err != nil {
			return nil, fmt.Errorf("create kafka channel: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "memory", "":
		pub, sub := gochannel.CreateChannel(watermillLogger)

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unknown event bus type %q", busType)
	}
}
