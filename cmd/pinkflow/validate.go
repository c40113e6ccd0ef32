package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/pinkflow/pinkflow/pkg/models"
	"github.com/pinkflow/pinkflow/pkg/schema"
)

// NewValidateCommand checks a workflow definition file against the JSON
// schema and the structural invariants.
func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a workflow definition file",
		ArgsUsage: "<definition.json>",
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setupLogger(command, "validate")

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

			if errs := wf.Validate(); len(errs) > 0 {
				return fmt.Errorf("workflow %s: %w", wf.ID, errs)
			}

			logger.InfoContext(ctx, "Workflow definition is valid",
				"workflow_id", wf.ID,
				"nodes", len(wf.Nodes()),
				"edges", len(wf.Edges()),
			)

			return nil
		},
	}
}
