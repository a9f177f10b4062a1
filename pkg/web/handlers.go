// Package web provides the HTTP handlers and REST endpoints of the dev API
// server.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/pipedeck/pipedeck/pkg/services"
	"github.com/pipedeck/pipedeck/pkg/validation"
)

// APIHandlers bundles the handlers of the workflow and execution endpoints.
type APIHandlers struct {
	workflowService  *services.Workflow
	executionService *services.Execution
	validator        *validator.Validate
}

// NewAPIHandlers creates the handler set.
func NewAPIHandlers(
	workflowService *services.Workflow,
	executionService *services.Execution,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService:  workflowService,
		executionService: executionService,
		validator:        validator,
	}
}

// GetWorkflows lists every workflow.
func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.FetchAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(workflows)
}

// GetWorkflow returns one workflow by id.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

// CreateWorkflow stores a new workflow from a submission payload.
func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var submission models.WorkflowSubmission
	if err := c.Bind().JSON(&submission); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(submission); err != nil {
		return badRequest(c, err.Error())
	}

	if detail, ok := checkDraft(&submission); !ok {
		return badRequest(c, detail)
	}

	created, err := h.workflowService.Create(c.Context(), submission)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateWorkflow replaces an existing workflow.
func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var submission models.WorkflowSubmission
	if err := c.Bind().JSON(&submission); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(submission); err != nil {
		return badRequest(c, err.Error())
	}

	if detail, ok := checkDraft(&submission); !ok {
		return badRequest(c, detail)
	}

	updated, err := h.workflowService.Update(c.Context(), id, submission)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

// DeleteWorkflow removes a workflow.
func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.workflowService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// StartExecution enqueues a pending execution of a workflow.
func (h *APIHandlers) StartExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	execution, err := h.executionService.Start(c.Context(), id, c.Query("trigger"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

// ListExecutions returns the executions of one workflow.
func (h *APIHandlers) ListExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	executions, err := h.executionService.ListByWorkflow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(executions)
}

// GetExecution returns one execution snapshot.
func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.executionService.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

// RetryExecution re-seeds an execution as a fresh pending snapshot.
func (h *APIHandlers) RetryExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.executionService.Retry(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

// CancelExecution cancels a non-terminal execution.
func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.executionService.Cancel(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

// HealthCheck reports the health of the persistence layer.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, ok := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// checkDraft reruns the draft validator server-side so a client skipping
// validation cannot store an inconsistent task graph.
func checkDraft(submission *models.WorkflowSubmission) (string, bool) {
	tasks := make([]models.TaskEntry, 0, len(submission.Tasks))
	for _, task := range submission.Tasks {
		tasks = append(tasks, models.TaskEntry{
			Name:      task.Name,
			Action:    task.Action,
			DependsOn: task.DependsOn,
			Priority:  task.Priority,
		})
	}

	errs := validation.ValidateDraft(submission.Name, submission.Description, tasks)
	if err := models.ValidateSchedule(submission.Schedule); err != nil {
		errs.Schedule = err.Error()
	}

	if !errs.HasErrors() {
		return "", true
	}

	return summarize(errs), false
}

// summarize flattens an error tree into one detail line for the problem
// response.
func summarize(errs validation.DraftErrors) string {
	for _, msg := range []string{errs.Name, errs.Description, errs.Tags, errs.Tasks, errs.Schedule} {
		if msg != "" {
			return msg
		}
	}

	for _, taskErrs := range errs.TaskErrors {
		for _, msg := range []string{taskErrs.Name, taskErrs.Action, taskErrs.DependsOn} {
			if msg != "" {
				return msg
			}
		}
	}

	return "workflow draft failed validation"
}
