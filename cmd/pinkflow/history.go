package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/pinkflow/pinkflow/pkg/persistence/file"
)

// NewHistoryCommand prints the persisted execution history.
func NewHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show execution history",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workflow-id",
				Aliases: []string{"w"},
				Usage:   "Only show executions of this workflow",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			setupLogger(command, "history")

			persistence := file.NewPersistence(command.String("data-path"))

			records, err := persistence.Executions(ctx, command.String("workflow-id"))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EXECUTION\tWORKFLOW\tENVIRONMENT\tSTARTED\tDURATION\tSTATUS\tERROR")

			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ExecutionID,
					r.WorkflowID,
					r.Environment,
					r.StartedAt.Format(time.RFC3339),
					r.Duration,
					r.Status,
					r.Error,
				)
			}

			return w.Flush()
		},
	}
}
