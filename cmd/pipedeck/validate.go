package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/pipedeck/pipedeck/pkg/schema"
	"github.com/pipedeck/pipedeck/pkg/validation"
	"github.com/urfave/cli/v3"
)

var errDraftInvalid = errors.New("draft failed validation")

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check a workflow draft file without submitting it",
		ArgsUsage: "<draft.json>",
		Action: func(_ context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one draft file argument")
			}

			draftFile, err := schema.LoadDraftFile(command.Args().First())
			if err != nil {
				return err
			}

			errs := validation.ValidateDraft(draftFile.Name, draftFile.Description, draftFile.Tasks)
			if err := models.ValidateSchedule(draftFile.Schedule); err != nil {
				errs.Schedule = err.Error()
			}

			if errs.HasErrors() {
				printDraftErrors(errs)

				return errDraftInvalid
			}

			fmt.Printf("Draft %q is valid (%d tasks)\n", draftFile.Name, len(draftFile.Tasks))

			return nil
		},
	}
}

func printDraftErrors(errs validation.DraftErrors) {
	fields := []struct {
		label   string
		message string
	}{
		{"name", errs.Name},
		{"description", errs.Description},
		{"tags", errs.Tags},
		{"tasks", errs.Tasks},
		{"schedule", errs.Schedule},
	}

	for _, field := range fields {
		if field.message != "" {
			fmt.Printf("  %s: %s\n", field.label, field.message)
		}
	}

	indexes := make([]int, 0, len(errs.TaskErrors))
	for index := range errs.TaskErrors {
		indexes = append(indexes, index)
	}

	sort.Ints(indexes)

	for _, index := range indexes {
		taskErrs := errs.TaskErrors[index]

		for _, field := range []struct {
			label   string
			message string
		}{
			{"name", taskErrs.Name},
			{"action", taskErrs.Action},
			{"depends_on", taskErrs.DependsOn},
		} {
			if field.message != "" {
				fmt.Printf("  task[%d].%s: %s\n", index, field.label, field.message)
			}
		}
	}
}
