package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moogar0880/problems"
	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateWorkflow(t *testing.T) {
	var received models.WorkflowSubmission

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/workflows", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Workflow{ID: "wf-1", Name: received.Name})
	}))
	defer server.Close()

	c := New(server.URL)

	workflow, err := c.CreateWorkflow(t.Context(), models.WorkflowSubmission{
		Name: "Nightly ETL",
		Tags: []string{"etl"},
	})
	require.NoError(t, err)

	assert.Equal(t, "wf-1", workflow.ID)
	assert.Equal(t, "Nightly ETL", received.Name)
	assert.Equal(t, []string{"etl"}, received.Tags)
}

func TestClient_UpdateWorkflow_UsesPut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/workflows/wf-9", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Workflow{ID: "wf-9"})
	}))
	defer server.Close()

	workflow, err := New(server.URL).UpdateWorkflow(t.Context(), "wf-9", models.WorkflowSubmission{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "wf-9", workflow.ID)
}

func TestClient_GetExecution(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/executions/exec-1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Execution{
			ID:         "exec-1",
			WorkflowID: "wf-1",
			Status:     models.ExecutionStatusRunning,
			TaskResults: []models.TaskResult{
				{TaskID: "extract", Status: models.ExecutionStatusCompleted, DurationMS: 42},
			},
		})
	}))
	defer server.Close()

	execution, err := New(server.URL).GetExecution(t.Context(), "exec-1")
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusRunning, execution.Status)
	require.Len(t, execution.TaskResults, 1)
	assert.Equal(t, int64(42), execution.TaskResults[0].DurationMS)
}

func TestClient_ErrorShape_PlainBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("execution not found"))
	}))
	defer server.Close()

	_, err := New(server.URL).GetExecution(t.Context(), "missing")
	require.Error(t, err)
	assert.Equal(t, "API error 404: execution not found", err.Error())
}

func TestClient_ErrorShape_ProblemDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem := problems.NewStatusProblem(http.StatusConflict).
			WithInstance(r.URL.Path).
			WithType("conflict").
			WithDetail("execution already terminal")

		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(problem)
	}))
	defer server.Close()

	_, err := New(server.URL).CancelExecution(t.Context(), "exec-1")
	require.Error(t, err)
	assert.Equal(t, "API error 409: execution already terminal", err.Error())
}

func TestClient_RetryExecution_ReturnsFreshSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/executions/exec-1/retry", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Execution{
			ID:     "exec-1",
			Status: models.ExecutionStatusPending,
		})
	}))
	defer server.Close()

	execution, err := New(server.URL).RetryExecution(t.Context(), "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusPending, execution.Status)
}

func TestClient_ListExecutions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/workflows/wf-1/executions", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.Execution{
			{ID: "exec-1", Status: models.ExecutionStatusCompleted},
			{ID: "exec-2", Status: models.ExecutionStatusPending},
		})
	}))
	defer server.Close()

	executions, err := New(server.URL).ListExecutions(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Len(t, executions, 2)
}
