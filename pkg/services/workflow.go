// Package services implements the application services behind the dev API
// server: workflow CRUD, execution lifecycle and the execution simulator.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/pipedeck/pipedeck/pkg/persistence"
)

// Workflow provides workflow CRUD over the persistence layer.
type Workflow struct {
	persistence persistence.Persistence
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence) *Workflow {
	return &Workflow{persistence: persistence}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := w.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Create stores a new workflow built from a submission, generating its id
// and timestamps.
func (w *Workflow) Create(ctx context.Context, submission models.WorkflowSubmission) (*models.Workflow, error) {
	now := time.Now().UTC()
	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        submission.Name,
		Description: submission.Description,
		Tags:        submission.Tags,
		Tasks:       tasksFromSubmission(submission.Tasks),
		Schedule:    submission.Schedule,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return workflow, nil
}

// Update replaces the stored workflow's fields with the submission.
func (w *Workflow) Update(ctx context.Context, id string, submission models.WorkflowSubmission) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	workflow.Name = submission.Name
	workflow.Description = submission.Description
	workflow.Tags = submission.Tags
	workflow.Tasks = tasksFromSubmission(submission.Tasks)
	workflow.Schedule = submission.Schedule
	workflow.UpdatedAt = time.Now().UTC()

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return workflow, nil
}

// FetchByID loads one workflow.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.persistence.WorkflowRepository().GetByID(ctx, id)
}

// FetchAll loads every workflow.
func (w *Workflow) FetchAll(ctx context.Context) ([]*models.Workflow, error) {
	return w.persistence.WorkflowRepository().List(ctx)
}

// Delete removes a workflow.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	return w.persistence.WorkflowRepository().Delete(ctx, id)
}

func tasksFromSubmission(submissions []models.TaskSubmission) []models.TaskEntry {
	tasks := make([]models.TaskEntry, 0, len(submissions))

	for _, sub := range submissions {
		tasks = append(tasks, models.TaskEntry{
			Name:       sub.Name,
			Action:     sub.Action,
			Parameters: sub.Parameters,
			DependsOn:  sub.DependsOn,
			Priority:   sub.Priority,
			PreHook:    deref(sub.PreHook),
			PostHook:   deref(sub.PostHook),
		})
	}

	return tasks
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
