package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/karthikpoola6-cmd/email-triage-ai/cmd/app/commands"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/app"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/config"
)

func getSystemCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "audit",
			Usage: "List processed requests from the audit store, most recent first",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "offset",
					Aliases: []string{"o"},
					Value:   0,
					Usage:   "Number of records to skip",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Maximum number of records to list",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditRecords, err := container.AuditRecordRepository()
				if err != nil {
					return fmt.Errorf("failed to initialize audit record repository: %w", err)
				}

				return commands.RunAuditRecords(
					ctx,
					auditRecords,
					container.Logger(),
					os.Stdout,
					cmd.Int("offset"),
					cmd.Int("limit"),
					cmd.String("format"),
				)
			},
		},
	}
}
