package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"

	"github.com/pinkflow/pinkflow/pkg/models"
)

// NewListCommand prints the persisted workflow definitions.
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List persisted workflows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "environment",
				Aliases: []string{"e"},
				Usage:   "Only show workflows for this environment",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setupLogger(command, "list")

			manager := setupManager(command, logger)
			if err := manager.LoadFromPersistence(ctx, setupRegistry(logger)); err != nil {
				return err
			}

			var environment models.Environment
			if s := command.String("environment"); s != "" {
				var err error
				environment, err = models.ParseEnvironment(s)
				if err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tENVIRONMENT\tNODES\tEDGES")

			for _, wf := range manager.List(environment) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
					wf.ID, wf.Name, wf.Environment, len(wf.Nodes()), len(wf.Edges()))
			}

			return w.Flush()
		},
	}
}
