package models

import (
	"fmt"
	"time"
)

// ExecutionStatus represents the lifecycle state of one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// ParseExecutionStatus converts a raw string into an ExecutionStatus.
func ParseExecutionStatus(s string) (ExecutionStatus, error) {
	switch ExecutionStatus(s) {
	case ExecutionStatusPending, ExecutionStatusRunning,
		ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCancelled:
		return ExecutionStatus(s), nil
	default:
		return "", fmt.Errorf("unknown execution status %q", s)
	}
}

// IsTerminal reports whether no further state change is expected.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCancelled:
		return true
	default:
		return false
	}
}

// TaskResult is the per-task outcome inside an execution snapshot.
type TaskResult struct {
	TaskID      string          `json:"task_id"`
	Status      ExecutionStatus `json:"status"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Output      map[string]any  `json:"output,omitempty"`
	Error       string          `json:"error,omitempty"`
	DurationMS  int64           `json:"duration_ms"`
}

// Execution is an immutable snapshot of one workflow run. Pollers replace the
// whole value on each tick; snapshots are never mutated in place.
type Execution struct {
	ID          string          `json:"id"`
	WorkflowID  string          `json:"workflow_id"`
	Status      ExecutionStatus `json:"status"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Trigger     string          `json:"trigger,omitempty"`
	TaskResults []TaskResult    `json:"task_results"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}
