package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	createCalls int
	updateCalls int

	lastID         string
	lastSubmission models.WorkflowSubmission

	result *models.Workflow
	err    error
}

func (f *fakeAPI) CreateWorkflow(_ context.Context, submission models.WorkflowSubmission) (*models.Workflow, error) {
	f.createCalls++
	f.lastSubmission = submission

	return f.result, f.err
}

func (f *fakeAPI) UpdateWorkflow(_ context.Context, id string, submission models.WorkflowSubmission) (*models.Workflow, error) {
	f.updateCalls++
	f.lastID = id
	f.lastSubmission = submission

	return f.result, f.err
}

func validDraft(api WorkflowAPI) *Controller {
	c := NewController(api)
	c.SetName("Nightly ETL")
	c.AddTask()
	name := "extract"
	c.UpdateTask(0, TaskPatch{Name: &name})

	return c
}

func TestController_AddTaskDefaults(t *testing.T) {
	c := NewController(&fakeAPI{})
	c.AddTask()

	require.Len(t, c.Tasks(), 1)
	task := c.Tasks()[0]
	assert.Empty(t, task.Name)
	assert.Equal(t, models.ActionLog, task.Action)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Empty(t, task.Parameters)
	assert.Empty(t, task.DependsOn)
	assert.Empty(t, task.PreHook)
	assert.Empty(t, task.PostHook)
}

func TestController_RemoveTask_OutOfRangeIsNoOp(t *testing.T) {
	c := NewController(&fakeAPI{})
	c.AddTask()

	c.RemoveTask(-1)
	c.RemoveTask(5)
	assert.Len(t, c.Tasks(), 1)

	c.RemoveTask(0)
	assert.Empty(t, c.Tasks())
}

func TestController_MoveTask_Boundaries(t *testing.T) {
	c := NewController(&fakeAPI{})

	for _, name := range []string{"a", "b", "c"} {
		c.AddTask()

		name := name
		c.UpdateTask(len(c.Tasks())-1, TaskPatch{Name: &name})
	}

	names := func() []string {
		out := make([]string, 0, len(c.Tasks()))
		for _, task := range c.Tasks() {
			out = append(out, task.Name)
		}

		return out
	}

	c.MoveTask(0, -1)
	assert.Equal(t, []string{"a", "b", "c"}, names(), "first entry cannot move up")

	c.MoveTask(2, +1)
	assert.Equal(t, []string{"a", "b", "c"}, names(), "last entry cannot move down")

	c.MoveTask(1, -1)
	assert.Equal(t, []string{"b", "a", "c"}, names())

	c.MoveTask(1, +1)
	assert.Equal(t, []string{"b", "c", "a"}, names())
}

func TestController_AddParameter_GeneratesUniqueKeys(t *testing.T) {
	c := NewController(&fakeAPI{})
	c.AddTask()

	c.AddParameter(0)
	c.AddParameter(0)

	task := c.Tasks()[0]
	require.Len(t, task.Parameters, 2)
	assert.NotEqual(t, task.Parameters[0].Key, task.Parameters[1].Key)
}

func TestController_RenameParameter_KeepsOrder(t *testing.T) {
	c := NewController(&fakeAPI{})
	c.AddTask()
	c.SetParameter(0, "first", "1")
	c.SetParameter(0, "second", "2")

	c.RenameParameter(0, "first", "renamed")

	task := c.Tasks()[0]
	require.Len(t, task.Parameters, 2)
	assert.Equal(t, models.Parameter{Key: "renamed", Value: "1"}, task.Parameters[0])
}

func TestController_ToggleDependency(t *testing.T) {
	c := NewController(&fakeAPI{})
	c.AddTask()

	c.ToggleDependency(0, "extract")
	assert.Equal(t, []string{"extract"}, c.Tasks()[0].DependsOn)

	c.ToggleDependency(0, "extract")
	assert.Empty(t, c.Tasks()[0].DependsOn)
}

func TestParseTags(t *testing.T) {
	testCases := []struct {
		raw      string
		expected []string
	}{
		{"", []string{}},
		{"etl", []string{"etl"}},
		{" etl , nightly ,, reporting ", []string{"etl", "nightly", "reporting"}},
		{",,,", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseTags(tc.raw))
		})
	}
}

func TestController_Submit_InvalidDraftSkipsNetwork(t *testing.T) {
	api := &fakeAPI{}
	c := NewController(api)

	err := c.Submit(t.Context(), nil)
	require.NoError(t, err)

	assert.True(t, c.Errors().HasErrors())
	assert.NotEmpty(t, c.Errors().Name)
	assert.Zero(t, api.createCalls, "validation failures must not reach the network")
	assert.Zero(t, api.updateCalls)
}

func TestController_Submit_CreatesNewWorkflow(t *testing.T) {
	api := &fakeAPI{result: &models.Workflow{ID: "wf-1", Name: "Nightly ETL"}}
	c := validDraft(api)
	c.SetDescription("loads yesterday's orders")
	c.SetTags("etl, nightly")
	c.SetParameter(0, "source", "orders")
	post := "notify"
	c.UpdateTask(0, TaskPatch{PostHook: &post})

	var saved *models.Workflow

	err := c.Submit(t.Context(), func(wf *models.Workflow) { saved = wf })
	require.NoError(t, err)

	assert.Equal(t, 1, api.createCalls)
	assert.Zero(t, api.updateCalls)
	require.NotNil(t, saved)
	assert.Equal(t, "wf-1", saved.ID)
	assert.Equal(t, "wf-1", c.WorkflowID())

	submission := api.lastSubmission
	assert.Equal(t, "Nightly ETL", submission.Name)
	assert.Equal(t, "loads yesterday's orders", submission.Description)
	assert.Equal(t, []string{"etl", "nightly"}, submission.Tags)
	require.Len(t, submission.Tasks, 1)
	assert.Equal(t, "extract", submission.Tasks[0].Name)
	assert.Nil(t, submission.Tasks[0].PreHook)
	require.NotNil(t, submission.Tasks[0].PostHook)
	assert.Equal(t, "notify", *submission.Tasks[0].PostHook)
}

func TestController_Submit_TrimsTaskNames(t *testing.T) {
	api := &fakeAPI{result: &models.Workflow{ID: "wf-1"}}
	c := NewController(api)
	c.SetName("  Padded  ")
	c.AddTask()
	name := "  extract  "
	c.UpdateTask(0, TaskPatch{Name: &name})

	require.NoError(t, c.Submit(t.Context(), nil))

	assert.Equal(t, "Padded", api.lastSubmission.Name)
	assert.Equal(t, "extract", api.lastSubmission.Tasks[0].Name)
}

func TestController_Submit_EditModeUpdates(t *testing.T) {
	api := &fakeAPI{result: &models.Workflow{ID: "wf-9"}}
	c := NewControllerFromWorkflow(api, &models.Workflow{
		ID:   "wf-9",
		Name: "Existing",
		Tags: []string{"etl"},
		Tasks: []models.TaskEntry{
			{Name: "extract", Action: models.ActionTransform, Priority: models.PriorityHigh},
		},
	})

	require.NoError(t, c.Submit(t.Context(), nil))

	assert.Zero(t, api.createCalls)
	assert.Equal(t, 1, api.updateCalls)
	assert.Equal(t, "wf-9", api.lastID)
	assert.Equal(t, []string{"etl"}, api.lastSubmission.Tags)
}

func TestController_Submit_RejectionSurfacesMessage(t *testing.T) {
	api := &fakeAPI{err: errors.New("API error 422: name already taken")}
	c := validDraft(api)

	err := c.Submit(t.Context(), func(*models.Workflow) {
		t.Fatal("completion callback must not fire on rejection")
	})
	require.Error(t, err)

	assert.Equal(t, "API error 422: name already taken", c.SubmitError())
	assert.False(t, c.Errors().HasErrors(), "rejection must not alter the error tree")
	assert.False(t, c.Submitting())
}

func TestController_Submit_ErrorsDiscardedOnNextEdit(t *testing.T) {
	c := NewController(&fakeAPI{})

	require.NoError(t, c.Submit(t.Context(), nil))
	require.True(t, c.Errors().HasErrors())

	c.SetName("Fixed")
	assert.False(t, c.Errors().HasErrors())
}

func TestController_Submit_InvalidScheduleBlocks(t *testing.T) {
	api := &fakeAPI{result: &models.Workflow{ID: "wf-1"}}
	c := validDraft(api)
	c.SetSchedule("not-a-cron")

	require.NoError(t, c.Submit(t.Context(), nil))

	assert.Contains(t, c.Errors().Schedule, "invalid schedule expression")
	assert.Contains(t, c.Errors().Schedule, "not-a-cron", "error should carry the parser detail")
	assert.Zero(t, api.createCalls)
}
