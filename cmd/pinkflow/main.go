package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/pinkflow/pinkflow/pkg/log"
)

func main() {
	cmd := &cli.Command{
		Name:                  "pinkflow",
		EnableShellCompletion: true,
		Usage:                 "Define, validate and execute node-based workflows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Directory for persisted workflows and execution history",
				Value:   "./data",
				Sources: cli.EnvVars("DATA_PATH"),
			},
		},
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewRunCommand(),
			NewListCommand(),
			NewHistoryCommand(),
			NewExportCommand(),
			NewWatchCommand(),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.WithModule("pinkflow").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
