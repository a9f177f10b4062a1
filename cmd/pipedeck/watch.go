package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pipedeck/pipedeck/pkg/client"
	"github.com/pipedeck/pipedeck/pkg/log"
	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/pipedeck/pipedeck/pkg/poller"
	"github.com/urfave/cli/v3"
)

func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Poll an execution until it reaches a terminal status",
		ArgsUsage: "<execution-id>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Usage:   "Delay between status fetches",
				Sources: cli.EnvVars("PIPEDECK_POLL_INTERVAL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one execution id argument")
			}

			apiClient, cfg, err := newClient(ctx, command)
			if err != nil {
				return err
			}

			interval := command.Duration("interval")
			if interval <= 0 {
				interval = time.Duration(cfg.PollInterval)
			}

			return watchExecution(ctx, apiClient, interval, command.Args().First())
		},
	}
}

// watchExecution runs a poller against one execution id, printing each
// snapshot transition, and returns once polling halts.
func watchExecution(ctx context.Context, apiClient *client.Client, interval time.Duration, id string) error {
	seen := make(map[string]models.ExecutionStatus)

	var lastStatus models.ExecutionStatus

	p := poller.New(apiClient,
		poller.WithInterval(interval),
		poller.WithLogger(log.WithModule("poller")),
		poller.WithOnUpdate(func(snapshot *models.Execution) {
			if snapshot.Status != lastStatus {
				lastStatus = snapshot.Status

				fmt.Printf("%s  %s\n", snapshot.ID, snapshot.Status)
			}

			printTaskTransitions(snapshot, seen)
		}))
	defer p.Stop()

	p.Bind(ctx, id)

	select {
	case <-p.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	if msg := p.Err(); msg != "" {
		return fmt.Errorf("polling halted: %s", msg)
	}

	snapshot := p.Snapshot()
	if snapshot == nil {
		return fmt.Errorf("no snapshot received for execution %s", id)
	}

	fmt.Printf("Execution %s finished: %s\n", snapshot.ID, snapshot.Status)

	return nil
}

// printTaskTransitions prints each task result whose status changed since
// the previous snapshot.
func printTaskTransitions(snapshot *models.Execution, seen map[string]models.ExecutionStatus) {
	for _, result := range snapshot.TaskResults {
		if result.Status == models.ExecutionStatusPending || seen[result.TaskID] == result.Status {
			continue
		}

		seen[result.TaskID] = result.Status

		line := fmt.Sprintf("  %-20s %s", result.TaskID, result.Status)
		if result.DurationMS > 0 {
			line += fmt.Sprintf(" (%dms)", result.DurationMS)
		}

		if result.Error != "" {
			line += " error: " + result.Error
		}

		fmt.Println(line)
	}
}
