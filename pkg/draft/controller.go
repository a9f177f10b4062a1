// Package draft owns the mutable, unsaved representation of a workflow being
// created or edited, and the submission path that turns it into an API call.
package draft

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/pipedeck/pipedeck/pkg/validation"
)

// WorkflowAPI is the external create-or-update collaborator the controller
// delegates to on a successful validation pass.
type WorkflowAPI interface {
	CreateWorkflow(ctx context.Context, submission models.WorkflowSubmission) (*models.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, submission models.WorkflowSubmission) (*models.Workflow, error)
}

// Controller holds one workflow draft. A controller has a single owner and
// is not safe for concurrent use; mutations apply in the order issued.
type Controller struct {
	api    WorkflowAPI
	logger *slog.Logger

	workflowID  string // empty until first successful create
	name        string
	description string
	rawTags     string
	schedule    string
	tasks       []models.TaskEntry

	errors      validation.DraftErrors
	submitting  bool
	submitError string

	paramSeq int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates an empty draft for a new workflow.
func NewController(api WorkflowAPI, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		logger: slog.Default(),
		tasks:  []models.TaskEntry{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewControllerFromWorkflow creates a draft pre-populated from an existing
// workflow (edit mode). Submitting updates the workflow in place.
func NewControllerFromWorkflow(api WorkflowAPI, workflow *models.Workflow, opts ...Option) *Controller {
	c := NewController(api, opts...)
	c.workflowID = workflow.ID
	c.name = workflow.Name
	c.description = workflow.Description
	c.rawTags = strings.Join(workflow.Tags, ", ")
	c.schedule = workflow.Schedule
	c.tasks = make([]models.TaskEntry, len(workflow.Tasks))
	copy(c.tasks, workflow.Tasks)

	return c
}

// touch discards the previous validation result; the error tree is built
// once per submit attempt and dropped on the next edit.
func (c *Controller) touch() {
	c.errors = validation.DraftErrors{}
}

// SetName replaces the draft's name.
func (c *Controller) SetName(name string) {
	c.touch()
	c.name = name
}

// SetDescription replaces the draft's description.
func (c *Controller) SetDescription(description string) {
	c.touch()
	c.description = description
}

// SetTags replaces the raw comma-separated tags string. Parsing happens at
// submit time via ParseTags.
func (c *Controller) SetTags(raw string) {
	c.touch()
	c.rawTags = raw
}

// SetSchedule replaces the draft's cron expression.
func (c *Controller) SetSchedule(expr string) {
	c.touch()
	c.schedule = expr
}

// SetTasks replaces the whole task list, e.g. when populating the draft
// from a file.
func (c *Controller) SetTasks(tasks []models.TaskEntry) {
	c.touch()
	c.tasks = make([]models.TaskEntry, len(tasks))
	copy(c.tasks, tasks)
}

// AddTask appends one task entry with defaults: action log, priority medium,
// no parameters, no dependencies, no hooks.
func (c *Controller) AddTask() {
	c.touch()
	c.tasks = append(c.tasks, models.TaskEntry{
		Action:     models.ActionLog,
		Priority:   models.PriorityMedium,
		Parameters: []models.Parameter{},
		DependsOn:  []string{},
	})
}

// RemoveTask removes the entry at index i. Out-of-range indexes are no-ops.
func (c *Controller) RemoveTask(i int) {
	if i < 0 || i >= len(c.tasks) {
		return
	}

	c.touch()
	c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
}

// MoveTask swaps the entry at i with its neighbor at i+delta (±1). The first
// entry cannot move up and the last cannot move down; those are no-ops.
func (c *Controller) MoveTask(i, delta int) {
	target := i + delta
	if i < 0 || i >= len(c.tasks) || target < 0 || target >= len(c.tasks) {
		return
	}

	c.touch()
	c.tasks[i], c.tasks[target] = c.tasks[target], c.tasks[i]
}

// TaskPatch is a partial update for one task entry; nil fields are left
// untouched.
type TaskPatch struct {
	Name     *string
	Action   *models.Action
	Priority *models.Priority
	PreHook  *string
	PostHook *string
}

// UpdateTask shallow-merges patch into the entry at index i.
func (c *Controller) UpdateTask(i int, patch TaskPatch) {
	if i < 0 || i >= len(c.tasks) {
		return
	}

	c.touch()
	task := &c.tasks[i]

	if patch.Name != nil {
		task.Name = *patch.Name
	}

	if patch.Action != nil {
		task.Action = *patch.Action
	}

	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}

	if patch.PreHook != nil {
		task.PreHook = *patch.PreHook
	}

	if patch.PostHook != nil {
		task.PostHook = *patch.PostHook
	}
}

// AddParameter appends a parameter with an auto-generated placeholder key to
// the task at index i.
func (c *Controller) AddParameter(i int) {
	if i < 0 || i >= len(c.tasks) {
		return
	}

	c.touch()
	task := &c.tasks[i]

	for {
		c.paramSeq++

		key := fmt.Sprintf("param_%d", c.paramSeq)
		if _, exists := task.Parameter(key); !exists {
			task.SetParameter(key, "")

			return
		}
	}
}

// SetParameter sets key to value on the task at index i, preserving the
// parameter's position when the key already exists.
func (c *Controller) SetParameter(i int, key, value string) {
	if i < 0 || i >= len(c.tasks) {
		return
	}

	c.touch()
	c.tasks[i].SetParameter(key, value)
}

// RemoveParameter deletes key from the task at index i.
func (c *Controller) RemoveParameter(i int, key string) {
	if i < 0 || i >= len(c.tasks) {
		return
	}

	c.touch()
	c.tasks[i].RemoveParameter(key)
}

// RenameParameter renames a key on the task at index i, keeping the value
// and relative position.
func (c *Controller) RenameParameter(i int, oldKey, newKey string) {
	if i < 0 || i >= len(c.tasks) {
		return
	}

	c.touch()
	c.tasks[i].RenameParameter(oldKey, newKey)
}

// ToggleDependency adds depName to the task's dependency set when absent and
// removes it when present.
func (c *Controller) ToggleDependency(i int, depName string) {
	if i < 0 || i >= len(c.tasks) {
		return
	}

	c.touch()
	task := &c.tasks[i]

	for j, dep := range task.DependsOn {
		if dep == depName {
			task.DependsOn = append(task.DependsOn[:j], task.DependsOn[j+1:]...)

			return
		}
	}

	task.DependsOn = append(task.DependsOn, depName)
}

// ParseTags splits a raw tags string on commas, trims each piece and drops
// empties. It is a pure transform over the raw string.
func ParseTags(raw string) []string {
	tags := make([]string, 0)

	for _, piece := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}

	return tags
}

// Name returns the draft's current name.
func (c *Controller) Name() string { return c.name }

// Description returns the draft's current description.
func (c *Controller) Description() string { return c.description }

// Tags returns the parsed form of the draft's raw tags string.
func (c *Controller) Tags() []string { return ParseTags(c.rawTags) }

// Schedule returns the draft's cron expression.
func (c *Controller) Schedule() string { return c.schedule }

// Tasks returns the draft's task entries in order.
func (c *Controller) Tasks() []models.TaskEntry { return c.tasks }

// WorkflowID returns the identity of the workflow being edited, or "" for a
// new workflow.
func (c *Controller) WorkflowID() string { return c.workflowID }

// Errors returns the validation result of the last submit attempt.
func (c *Controller) Errors() validation.DraftErrors { return c.errors }

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool { return c.submitting }

// SubmitError returns the message of the last rejected submission, or "".
func (c *Controller) SubmitError() string { return c.submitError }

// Submit validates the draft and, when valid, delegates to the create or
// update collaborator. Validation errors abort before any network call. A
// rejected call surfaces as SubmitError without altering the error tree; on
// success onSaved is invoked exactly once with the saved workflow.
func (c *Controller) Submit(ctx context.Context, onSaved func(*models.Workflow)) error {
	c.submitError = ""

	errs := validation.ValidateDraft(c.name, c.description, c.tasks)
	if err := models.ValidateSchedule(c.schedule); err != nil {
		errs.Schedule = err.Error()
	}

	c.errors = errs
	if errs.HasErrors() {
		return nil
	}

	submission := c.buildSubmission()

	c.submitting = true
	defer func() { c.submitting = false }()

	var (
		saved *models.Workflow
		err   error
	)

	if c.workflowID == "" {
		saved, err = c.api.CreateWorkflow(ctx, submission)
	} else {
		saved, err = c.api.UpdateWorkflow(ctx, c.workflowID, submission)
	}

	if err != nil {
		c.submitError = err.Error()
		c.logger.WarnContext(ctx, "workflow submission rejected", "error", err)

		return err
	}

	c.workflowID = saved.ID

	if onSaved != nil {
		onSaved(saved)
	}

	return nil
}

// buildSubmission maps the draft into the create/update payload: trimmed
// name, description as-is, parsed tags, and nil-able hooks.
func (c *Controller) buildSubmission() models.WorkflowSubmission {
	tasks := make([]models.TaskSubmission, 0, len(c.tasks))

	for _, task := range c.tasks {
		parameters := make([]models.Parameter, len(task.Parameters))
		copy(parameters, task.Parameters)

		dependsOn := make([]string, len(task.DependsOn))
		copy(dependsOn, task.DependsOn)

		tasks = append(tasks, models.TaskSubmission{
			Name:       strings.TrimSpace(task.Name),
			Action:     task.Action,
			Parameters: parameters,
			DependsOn:  dependsOn,
			Priority:   task.Priority,
			PreHook:    hookOrNil(task.PreHook),
			PostHook:   hookOrNil(task.PostHook),
		})
	}

	return models.WorkflowSubmission{
		Name:        strings.TrimSpace(c.name),
		Description: c.description,
		Tags:        ParseTags(c.rawTags),
		Tasks:       tasks,
		Schedule:    c.schedule,
	}
}

func hookOrNil(hook string) *string {
	if hook == "" {
		return nil
	}

	return &hook
}
