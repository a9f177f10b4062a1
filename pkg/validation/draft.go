// Package validation turns a user-edited workflow draft into a well-formed
// task-dependency graph before it is allowed to reach the network.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pipedeck/pipedeck/pkg/models"
)

const (
	// MaxNameLength bounds the workflow name.
	MaxNameLength = 200
	// MaxDescriptionLength bounds the workflow description.
	MaxDescriptionLength = 5000
)

// TaskErrors holds the field errors for one task entry. Empty fields mean
// the field is fine.
type TaskErrors struct {
	Name      string `json:"name,omitempty"`
	Action    string `json:"action,omitempty"`
	DependsOn string `json:"depends_on,omitempty"`
}

// IsZero reports whether the task has no violations.
func (e TaskErrors) IsZero() bool {
	return e == TaskErrors{}
}

// DraftErrors is the structured result of validating a draft. It is built
// once per submit attempt and discarded on the next edit. An empty value
// means the draft is valid.
type DraftErrors struct {
	Name        string             `json:"name,omitempty"`
	Description string             `json:"description,omitempty"`
	Tags        string             `json:"tags,omitempty"`
	Tasks       string             `json:"tasks,omitempty"`
	Schedule    string             `json:"schedule,omitempty"`
	TaskErrors  map[int]TaskErrors `json:"task_errors,omitempty"`
}

// HasErrors reports whether any field of the draft failed validation.
func (e DraftErrors) HasErrors() bool {
	return e.Name != "" || e.Description != "" || e.Tags != "" ||
		e.Tasks != "" || e.Schedule != "" || len(e.TaskErrors) > 0
}

// ValidateDraft checks a draft's name, description and task list. It is pure
// and side-effect free, so callers may run it on every keystroke. Tasks with
// zero violations are omitted from TaskErrors; a draft with zero tasks is
// always dependency-valid.
//
// Dependency edges are checked for referential integrity only: each name in
// depends_on must resolve to some other task in the draft. Cycles are not
// detected here.
func ValidateDraft(name, description string, tasks []models.TaskEntry) DraftErrors {
	var errs DraftErrors

	// Limits count characters, not bytes, matching the max=200/max=5000
	// validate tags on the submission payload.
	switch trimmed := strings.TrimSpace(name); {
	case trimmed == "":
		errs.Name = "Name is required"
	case utf8.RuneCountInString(name) > MaxNameLength:
		errs.Name = fmt.Sprintf("Name must be %d characters or fewer", MaxNameLength)
	}

	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		errs.Description = fmt.Sprintf("Description must be %d characters or fewer", MaxDescriptionLength)
	}

	for i, task := range tasks {
		taskErrs := validateTask(i, task, tasks)
		if !taskErrs.IsZero() {
			if errs.TaskErrors == nil {
				errs.TaskErrors = make(map[int]TaskErrors)
			}

			errs.TaskErrors[i] = taskErrs
		}
	}

	return errs
}

func validateTask(index int, task models.TaskEntry, all []models.TaskEntry) TaskErrors {
	var errs TaskErrors

	trimmed := strings.TrimSpace(task.Name)
	if trimmed == "" {
		errs.Name = "Task name is required"
	} else if isDuplicateName(trimmed, index, all) {
		errs.Name = "Duplicate task name"
	}

	if !task.Action.IsValid() {
		errs.Action = fmt.Sprintf("Unknown action %q", task.Action)
	}

	siblings := siblingNames(index, all)
	for _, dep := range task.DependsOn {
		if !siblings[dep] {
			// First unresolved reference wins.
			errs.DependsOn = fmt.Sprintf("Depends on unknown task %q", dep)

			break
		}
	}

	return errs
}

// isDuplicateName flags only later occurrences: the first task carrying a
// name is never the duplicate.
func isDuplicateName(trimmed string, index int, all []models.TaskEntry) bool {
	for i := range index {
		if strings.TrimSpace(all[i].Name) == trimmed {
			return true
		}
	}

	return false
}

// siblingNames collects the trimmed names of every task except the one at
// index, so a task can never satisfy a dependency on itself.
func siblingNames(index int, all []models.TaskEntry) map[string]bool {
	names := make(map[string]bool, len(all))

	for i, task := range all {
		if i == index {
			continue
		}

		if trimmed := strings.TrimSpace(task.Name); trimmed != "" {
			names[trimmed] = true
		}
	}

	return names
}
