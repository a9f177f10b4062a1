package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pipedeck/pipedeck/pkg/draft"
	"github.com/pipedeck/pipedeck/pkg/log"
	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/pipedeck/pipedeck/pkg/schema"
	"github.com/urfave/cli/v3"
)

func NewSubmitCommand() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "Validate a draft file and create or update the workflow",
		ArgsUsage: "<draft.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "id",
				Usage:   "Update this workflow instead of creating a new one",
				Sources: cli.EnvVars("PIPEDECK_WORKFLOW_ID"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one draft file argument")
			}

			apiClient, _, err := newClient(ctx, command)
			if err != nil {
				return err
			}

			draftFile, err := schema.LoadDraftFile(command.Args().First())
			if err != nil {
				return err
			}

			controller := draft.NewController(apiClient, draft.WithLogger(log.WithModule("draft")))

			if id := command.String("id"); id != "" {
				workflow, err := apiClient.GetWorkflow(ctx, id)
				if err != nil {
					return err
				}

				controller = draft.NewControllerFromWorkflow(apiClient, workflow,
					draft.WithLogger(log.WithModule("draft")))
			}

			controller.SetName(draftFile.Name)
			controller.SetDescription(draftFile.Description)
			controller.SetTags(strings.Join(draftFile.Tags, ", "))
			controller.SetSchedule(draftFile.Schedule)
			controller.SetTasks(draftFile.Tasks)

			var saved *models.Workflow

			err = controller.Submit(ctx, func(workflow *models.Workflow) {
				saved = workflow
			})

			if errs := controller.Errors(); errs.HasErrors() {
				printDraftErrors(errs)

				return errDraftInvalid
			}

			if err != nil {
				return fmt.Errorf("submission rejected: %s", controller.SubmitError())
			}

			fmt.Printf("Saved workflow %q (%s)\n", saved.Name, saved.ID)

			return nil
		},
	}
}
