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

func getTriageCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "sample",
			Usage: "Process a local batch of sample emails without delivering anything",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "file",
					Aliases: []string{"f"},
					Value:   "samples/emails.json",
					Usage:   "Path to the sample emails JSON file",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				pipeline, err := container.SamplePipelineUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize pipeline use case: %w", err)
				}

				auditRecords, err := container.AuditRecordRepository()
				if err != nil {
					return fmt.Errorf("failed to initialize audit record repository: %w", err)
				}

				return commands.RunSample(
					ctx,
					pipeline,
					auditRecords,
					container.Logger(),
					os.Stdout,
					cmd.String("file"),
				)
			},
		},
		{
			Name:  "live",
			Usage: "Authenticate, poll the mailbox, and process messages until interrupted",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunLive(ctx, version)
			},
		},
	}
}
