// Package main provides the Pipedeck workflow console CLI.
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pipedeck/pipedeck/pkg/client"
	"github.com/pipedeck/pipedeck/pkg/config"
	"github.com/pipedeck/pipedeck/pkg/log"
	"github.com/pipedeck/pipedeck/pkg/tracing"
	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "pipedeck",
		Usage:                 "Author workflows and track their executions",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewSubmitCommand(),
			NewWatchCommand(),
			NewExecutionsCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the workflow API",
				Sources: cli.EnvVars("PIPEDECK_API_URL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the console config file",
				Value:   defaultConfigPath(),
				Sources: cli.EnvVars("PIPEDECK_CONFIG"),
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
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("command failed", "error", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pipedeck.yaml"
	}

	return filepath.Join(home, ".pipedeck.yaml")
}

// loadConfig merges the config file with the global CLI flags; flags win.
func loadConfig(command *cli.Command) config.Config {
	cfg := config.LoadOrDefault(command.String("config"))

	if url := command.String("api-url"); url != "" {
		cfg.APIURL = url
	}

	return cfg
}

// newClient sets up logging and builds the API client for a command.
func newClient(ctx context.Context, command *cli.Command) (*client.Client, config.Config, error) {
	log.Setup(command.String("log-level"), command.String("log-format"))

	cfg := loadConfig(command)

	opts := []client.Option{
		client.WithLogger(log.WithModule("client")),
	}

	if cfg.Tracing {
		tracer, err := tracing.NewTracer(ctx, "pipedeck")
		if err != nil {
			return nil, cfg, err
		}

		opts = append(opts, client.WithTracer(tracer))
	}

	return client.New(cfg.APIURL, opts...), cfg, nil
}
