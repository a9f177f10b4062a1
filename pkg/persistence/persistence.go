// Package persistence defines the storage contracts backing the dev API
// server.
package persistence

import (
	"context"
	"errors"

	"github.com/pipedeck/pipedeck/pkg/models"
)

var (
	// ErrWorkflowNotFound is returned when a workflow id resolves to nothing.
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrExecutionNotFound is returned when an execution id resolves to nothing.
	ErrExecutionNotFound = errors.New("execution not found")
)

// IsWorkflowNotFound reports whether err is a missing-workflow error.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound reports whether err is a missing-execution error.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// WorkflowRepository stores workflows.
type WorkflowRepository interface {
	List(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores execution snapshots.
type ExecutionRepository interface {
	List(ctx context.Context) ([]*models.Execution, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error)
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	Save(ctx context.Context, execution *models.Execution) error
	Delete(ctx context.Context, id string) error
}

// Persistence aggregates the repositories of one storage backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
