package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/pipedeck/pipedeck/pkg/persistence"
)

// ExecutionRepository stores one JSON file per execution snapshot under
// <root>/executions.
type ExecutionRepository struct {
	root string
}

// NewExecutionRepository creates an execution repository rooted at root.
func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (er *ExecutionRepository) dir() string {
	return filepath.Join(er.root, "executions")
}

func (er *ExecutionRepository) path(id string) string {
	return filepath.Join(er.dir(), id+".json")
}

// List returns every stored execution, oldest first.
func (er *ExecutionRepository) List(ctx context.Context) ([]*models.Execution, error) {
	entries, err := fs.Glob(os.DirFS(er.dir()), "*.json")
	if err != nil || len(entries) == 0 {
		return []*models.Execution{}, nil
	}

	executions := make([]*models.Execution, 0, len(entries))

	for _, entry := range entries {
		id := strings.TrimSuffix(entry, ".json")

		execution, err := er.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load execution %s: %w", id, err)
		}

		executions = append(executions, execution)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].ID < executions[j].ID
	})

	return executions, nil
}

// ListByWorkflow returns the executions belonging to one workflow.
func (er *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	all, err := er.List(ctx)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.Execution, 0, len(all))

	for _, execution := range all {
		if execution.WorkflowID == workflowID {
			executions = append(executions, execution)
		}
	}

	return executions, nil
}

// GetByID loads one execution snapshot.
func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.Execution, error) {
	data, err := os.ReadFile(er.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to read execution %s: %w", id, err)
	}

	var execution models.Execution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("failed to parse execution %s: %w", id, err)
	}

	return &execution, nil
}

// Save writes an execution snapshot, creating the directory on first use.
func (er *ExecutionRepository) Save(_ context.Context, execution *models.Execution) error {
	if err := os.MkdirAll(er.dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode execution %s: %w", execution.ID, err)
	}

	if err := os.WriteFile(er.path(execution.ID), data, fileMode); err != nil {
		return fmt.Errorf("failed to write execution %s: %w", execution.ID, err)
	}

	return nil
}

// Delete removes an execution file.
func (er *ExecutionRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(er.path(id))
	if os.IsNotExist(err) {
		return persistence.ErrExecutionNotFound
	}

	return err
}
