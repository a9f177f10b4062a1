package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/urfave/cli/v3"
)

func NewExecutionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "executions",
		Usage: "Start, inspect, retry and cancel workflow executions",
		Commands: []*cli.Command{
			newExecutionsStartCommand(),
			newExecutionsListCommand(),
			newExecutionsRetryCommand(),
			newExecutionsCancelCommand(),
		},
	}
}

func newExecutionsStartCommand() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "Enqueue a new execution of a workflow",
		ArgsUsage: "<workflow-id>",
		Flags:     watchFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one workflow id argument")
			}

			apiClient, cfg, err := newClient(ctx, command)
			if err != nil {
				return err
			}

			execution, err := apiClient.StartExecution(ctx, command.Args().First())
			if err != nil {
				return err
			}

			fmt.Printf("Started execution %s (%s)\n", execution.ID, execution.Status)

			if !command.Bool("watch") {
				return nil
			}

			return watchExecution(ctx, apiClient, time.Duration(cfg.PollInterval), execution.ID)
		},
	}
}

func newExecutionsListCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List the executions of a workflow",
		ArgsUsage: "<workflow-id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one workflow id argument")
			}

			apiClient, _, err := newClient(ctx, command)
			if err != nil {
				return err
			}

			executions, err := apiClient.ListExecutions(ctx, command.Args().First())
			if err != nil {
				return err
			}

			if len(executions) == 0 {
				fmt.Println("No executions found")

				return nil
			}

			for _, execution := range executions {
				printExecutionLine(execution)
			}

			return nil
		},
	}
}

func newExecutionsRetryCommand() *cli.Command {
	return &cli.Command{
		Name:      "retry",
		Usage:     "Re-seed an execution as a fresh pending run",
		ArgsUsage: "<execution-id>",
		Flags:     watchFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one execution id argument")
			}

			apiClient, cfg, err := newClient(ctx, command)
			if err != nil {
				return err
			}

			execution, err := apiClient.RetryExecution(ctx, command.Args().First())
			if err != nil {
				return err
			}

			fmt.Printf("Retrying execution %s (%s)\n", execution.ID, execution.Status)

			if !command.Bool("watch") {
				return nil
			}

			return watchExecution(ctx, apiClient, time.Duration(cfg.PollInterval), execution.ID)
		},
	}
}

func newExecutionsCancelCommand() *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "Cancel a non-terminal execution",
		ArgsUsage: "<execution-id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one execution id argument")
			}

			apiClient, _, err := newClient(ctx, command)
			if err != nil {
				return err
			}

			execution, err := apiClient.CancelExecution(ctx, command.Args().First())
			if err != nil {
				return err
			}

			fmt.Printf("Cancelled execution %s\n", execution.ID)

			return nil
		},
	}
}

func watchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "watch",
			Aliases: []string{"w"},
			Usage:   "Poll the execution until it reaches a terminal status",
		},
	}
}

func printExecutionLine(execution models.Execution) {
	line := fmt.Sprintf("%s  %-10s trigger=%s", execution.ID, execution.Status, execution.Trigger)
	if execution.StartedAt != nil {
		line += "  started=" + execution.StartedAt.Format(time.RFC3339)
	}

	fmt.Println(line)
}
