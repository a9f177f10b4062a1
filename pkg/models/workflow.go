// Package models defines the core domain models for the workflow console.
package models

import "time"

// Workflow represents a named collection of tasks with metadata, as returned
// by the workflow API.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"                   validate:"required,max=200"`
	Description string         `json:"description"            validate:"max=5000"`
	Tags        []string       `json:"tags,omitempty"`
	Tasks       []TaskEntry    `json:"tasks"`
	Schedule    string         `json:"schedule,omitempty"` // cron expression, empty means manual only
	Owner       string         `json:"owner,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
