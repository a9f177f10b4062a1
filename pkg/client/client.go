// Package client is the HTTP implementation of the workflow API contracts
// consumed by the draft controller and the execution poller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/pipedeck/pipedeck/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Client talks to a workflow API over HTTP. All failures surface as a single
// opaque message of the shape "API error <status>: <body>"; callers render
// it, they never parse it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer enables one client span per API request.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CreateWorkflow submits a new workflow.
func (c *Client) CreateWorkflow(ctx context.Context, submission models.WorkflowSubmission) (*models.Workflow, error) {
	var workflow models.Workflow

	err := c.do(ctx, http.MethodPost, "/workflows", submission, &workflow,
		attribute.String(tracing.WorkflowNameKey, submission.Name))
	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

// UpdateWorkflow replaces an existing workflow.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, submission models.WorkflowSubmission) (*models.Workflow, error) {
	var workflow models.Workflow

	err := c.do(ctx, http.MethodPut, "/workflows/"+id, submission, &workflow,
		attribute.String(tracing.WorkflowIDKey, id))
	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

// GetWorkflow fetches one workflow by id.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	err := c.do(ctx, http.MethodGet, "/workflows/"+id, nil, &workflow,
		attribute.String(tracing.WorkflowIDKey, id))
	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

// ListWorkflows fetches every workflow.
func (c *Client) ListWorkflows(ctx context.Context) ([]models.Workflow, error) {
	var workflows []models.Workflow

	err := c.do(ctx, http.MethodGet, "/workflows", nil, &workflows)
	if err != nil {
		return nil, err
	}

	return workflows, nil
}

// DeleteWorkflow removes a workflow.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/workflows/"+id, nil, nil,
		attribute.String(tracing.WorkflowIDKey, id))
}

// StartExecution enqueues a new pending execution of a workflow.
func (c *Client) StartExecution(ctx context.Context, workflowID string) (*models.Execution, error) {
	var execution models.Execution

	err := c.do(ctx, http.MethodPost, "/workflows/"+workflowID+"/executions", nil, &execution,
		attribute.String(tracing.WorkflowIDKey, workflowID))
	if err != nil {
		return nil, err
	}

	return &execution, nil
}

// GetExecution fetches the current snapshot of one execution.
func (c *Client) GetExecution(ctx context.Context, id string) (*models.Execution, error) {
	var execution models.Execution

	err := c.do(ctx, http.MethodGet, "/executions/"+id, nil, &execution,
		attribute.String(tracing.ExecutionIDKey, id))
	if err != nil {
		return nil, err
	}

	return &execution, nil
}

// ListExecutions fetches the executions of one workflow.
func (c *Client) ListExecutions(ctx context.Context, workflowID string) ([]models.Execution, error) {
	var executions []models.Execution

	err := c.do(ctx, http.MethodGet, "/workflows/"+workflowID+"/executions", nil, &executions,
		attribute.String(tracing.WorkflowIDKey, workflowID))
	if err != nil {
		return nil, err
	}

	return executions, nil
}

// RetryExecution re-seeds an execution; the returned snapshot is fresh and
// suitable for re-binding a poller.
func (c *Client) RetryExecution(ctx context.Context, id string) (*models.Execution, error) {
	var execution models.Execution

	err := c.do(ctx, http.MethodPost, "/executions/"+id+"/retry", nil, &execution,
		attribute.String(tracing.ExecutionIDKey, id))
	if err != nil {
		return nil, err
	}

	return &execution, nil
}

// CancelExecution asks the backend to cancel a non-terminal execution.
func (c *Client) CancelExecution(ctx context.Context, id string) (*models.Execution, error) {
	var execution models.Execution

	err := c.do(ctx, http.MethodPost, "/executions/"+id+"/cancel", nil, &execution,
		attribute.String(tracing.ExecutionIDKey, id))
	if err != nil {
		return nil, err
	}

	return &execution, nil
}

// problemBody is the subset of an RFC 7807 problem document the client reads
// when turning an error response into a message.
type problemBody struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, attrs ...attribute.KeyValue) error {
	if c.tracer == nil {
		return c.doRequest(ctx, method, path, body, out)
	}

	ctx, span := tracing.StartSpan(ctx, c.tracer, method+" "+path,
		append(attrs, attribute.String(tracing.RequestPathKey, path))...)
	defer span.End()

	err := c.doRequest(ctx, method, path, body, out)
	if err != nil {
		tracing.SetError(span, err)
	}

	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.WarnContext(ctx, "failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.apiError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// apiError flattens a non-2xx response into "API error <status>: <body>".
// Problem documents contribute their detail (or title) as the body.
func (c *Client) apiError(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		raw = nil
	}

	body := strings.TrimSpace(string(raw))

	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		var problem problemBody
		if err := json.Unmarshal(raw, &problem); err == nil {
			if problem.Detail != "" {
				body = problem.Detail
			} else if problem.Title != "" {
				body = problem.Title
			}
		}
	}

	return fmt.Errorf("API error %d: %s", resp.StatusCode, body)
}
