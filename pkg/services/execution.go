package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/pipedeck/pipedeck/pkg/persistence"
)

// Execution manages execution snapshots: starting, retrying and cancelling
// runs of a workflow.
type Execution struct {
	persistence persistence.Persistence
}

// NewExecution creates a new execution service.
func NewExecution(persistence persistence.Persistence) *Execution {
	return &Execution{persistence: persistence}
}

// Start enqueues a pending execution of the given workflow, with one pending
// task result per task.
func (e *Execution) Start(ctx context.Context, workflowID, trigger string) (*models.Execution, error) {
	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if trigger == "" {
		trigger = "manual"
	}

	execution := &models.Execution{
		ID:          uuid.New().String(),
		WorkflowID:  workflow.ID,
		Status:      models.ExecutionStatusPending,
		Trigger:     trigger,
		TaskResults: pendingResults(workflow.Tasks),
	}

	if err := e.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	return execution, nil
}

// Get loads one execution snapshot.
func (e *Execution) Get(ctx context.Context, id string) (*models.Execution, error) {
	return e.persistence.ExecutionRepository().GetByID(ctx, id)
}

// ListByWorkflow loads the executions of one workflow.
func (e *Execution) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	return e.persistence.ExecutionRepository().ListByWorkflow(ctx, workflowID)
}

// Retry re-seeds an execution as a fresh pending snapshot under the same id,
// dropping previous task results and timestamps. Works from any state.
func (e *Execution) Retry(ctx context.Context, id string) (*models.Execution, error) {
	execution, err := e.persistence.ExecutionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, execution.WorkflowID)
	if err != nil {
		return nil, err
	}

	fresh := &models.Execution{
		ID:          execution.ID,
		WorkflowID:  execution.WorkflowID,
		Status:      models.ExecutionStatusPending,
		Trigger:     "retry",
		TaskResults: pendingResults(workflow.Tasks),
		Metadata:    execution.Metadata,
	}

	if err := e.persistence.ExecutionRepository().Save(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	return fresh, nil
}

// Cancel moves a non-terminal execution to cancelled. Cancelling a terminal
// execution is a conflict.
func (e *Execution) Cancel(ctx context.Context, id string) (*models.Execution, error) {
	execution, err := e.persistence.ExecutionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if execution.Status.IsTerminal() {
		return nil, ErrExecutionTerminal
	}

	now := time.Now().UTC()
	execution.Status = models.ExecutionStatusCancelled
	execution.CompletedAt = &now

	for i := range execution.TaskResults {
		if !execution.TaskResults[i].Status.IsTerminal() {
			execution.TaskResults[i].Status = models.ExecutionStatusCancelled
		}
	}

	if err := e.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	return execution, nil
}

func pendingResults(tasks []models.TaskEntry) []models.TaskResult {
	results := make([]models.TaskResult, 0, len(tasks))

	for _, task := range tasks {
		results = append(results, models.TaskResult{
			TaskID: task.Name,
			Status: models.ExecutionStatusPending,
		})
	}

	return results
}
