package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
)

// NewExportCommand writes every persisted workflow definition to a single
// JSON document.
func NewExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export persisted workflows to a JSON file",
		ArgsUsage: "<output.json>",
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setupLogger(command, "export")

			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("missing output file argument")
			}

			manager := setupManager(command, logger)
			if err := manager.LoadFromPersistence(ctx, setupRegistry(logger)); err != nil {
				return err
			}

			return manager.ExportToFile(path)
		},
	}
}
