package main

import (
	"context"
	"os"
	"time"

	"github.com/pipedeck/pipedeck/pkg/log"
	"github.com/pipedeck/pipedeck/pkg/persistence/file"
	"github.com/pipedeck/pipedeck/pkg/services"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	cmd := &cli.Command{
		Name:                  "pipedeck-api",
		Usage:                 "Serve workflows and executions for the Pipedeck console",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Storage location for workflows and executions (file://<dir>)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.BoolFlag{
				Name:    "simulate",
				Usage:   "Advance stored executions through their lifecycle",
				Value:   true,
				Sources: cli.EnvVars("SIMULATE"),
			},
			&cli.DurationFlag{
				Name:    "simulate-interval",
				Usage:   "Delay between simulator steps",
				Value:   2 * time.Second,
				Sources: cli.EnvVars("SIMULATE_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger.InfoContext(ctx, "Initializing Pipedeck API")

			persistence := file.NewPersistence(command.String("database-url"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			if command.Bool("simulate") {
				simulator := services.NewSimulator(persistence, logger, command.Duration("simulate-interval"))
				simulator.Start(ctx)

				defer simulator.Stop()
			}

			api := NewAPI(logger, persistence)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
