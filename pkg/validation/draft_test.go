package validation

import (
	"strings"
	"testing"

	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(name string, deps ...string) models.TaskEntry {
	return models.TaskEntry{
		Name:      name,
		Action:    models.ActionLog,
		DependsOn: deps,
		Priority:  models.PriorityMedium,
	}
}

func TestValidateDraft_NameRequired(t *testing.T) {
	errs := ValidateDraft("", "", nil)
	assert.NotEmpty(t, errs.Name)
	assert.True(t, errs.HasErrors())

	errs = ValidateDraft("   ", "", nil)
	assert.NotEmpty(t, errs.Name, "whitespace-only name should be rejected")
}

func TestValidateDraft_NameLengthLimit(t *testing.T) {
	errs := ValidateDraft(strings.Repeat("A", 200), "", nil)
	assert.Empty(t, errs.Name, "200 characters is still valid")

	errs = ValidateDraft(strings.Repeat("A", 201), "", nil)
	require.NotEmpty(t, errs.Name)
	assert.Contains(t, errs.Name, "200", "message should mention the limit")
}

func TestValidateDraft_NameLimitCountsCharactersNotBytes(t *testing.T) {
	// 150 multibyte characters are 450 bytes but well under the limit.
	errs := ValidateDraft(strings.Repeat("あ", 150), "", nil)
	assert.Empty(t, errs.Name)

	errs = ValidateDraft(strings.Repeat("あ", 200), "", nil)
	assert.Empty(t, errs.Name)

	errs = ValidateDraft(strings.Repeat("あ", 201), "", nil)
	assert.Contains(t, errs.Name, "200")
}

func TestValidateDraft_DescriptionLengthLimit(t *testing.T) {
	errs := ValidateDraft("Pipeline", strings.Repeat("d", 5000), nil)
	assert.Empty(t, errs.Description)

	errs = ValidateDraft("Pipeline", strings.Repeat("d", 5001), nil)
	assert.NotEmpty(t, errs.Description)

	errs = ValidateDraft("Pipeline", strings.Repeat("é", 5000), nil)
	assert.Empty(t, errs.Description, "multibyte description within the limit")
}

func TestValidateDraft_ValidDraftIsEmpty(t *testing.T) {
	errs := ValidateDraft("Pipeline", "description", []models.TaskEntry{
		task("extract"),
		task("load", "extract"),
	})

	assert.False(t, errs.HasErrors())
	assert.Empty(t, errs.TaskErrors)
}

func TestValidateDraft_ZeroTasksAlwaysDependencyValid(t *testing.T) {
	errs := ValidateDraft("", "", []models.TaskEntry{})
	assert.NotEmpty(t, errs.Name)
	assert.Empty(t, errs.TaskErrors)
}

func TestValidateDraft_TaskNameRequired(t *testing.T) {
	errs := ValidateDraft("Pipeline", "", []models.TaskEntry{task("  ")})

	require.Contains(t, errs.TaskErrors, 0)
	assert.NotEmpty(t, errs.TaskErrors[0].Name)
}

func TestValidateDraft_DuplicateFlagsOnlyLaterOccurrence(t *testing.T) {
	errs := ValidateDraft("Pipeline", "", []models.TaskEntry{
		task("Same"),
		task("Same"),
	})

	assert.NotContains(t, errs.TaskErrors, 0, "first occurrence is never flagged")
	require.Contains(t, errs.TaskErrors, 1)
	assert.Contains(t, errs.TaskErrors[1].Name, "Duplicate")
}

func TestValidateDraft_DuplicateComparesTrimmedNames(t *testing.T) {
	errs := ValidateDraft("Pipeline", "", []models.TaskEntry{
		task("step"),
		task("  step  "),
	})

	require.Contains(t, errs.TaskErrors, 1)
	assert.Contains(t, errs.TaskErrors[1].Name, "Duplicate")
}

func TestValidateDraft_UnknownAction(t *testing.T) {
	entry := task("step")
	entry.Action = "shell"

	errs := ValidateDraft("Pipeline", "", []models.TaskEntry{entry})

	require.Contains(t, errs.TaskErrors, 0)
	assert.NotEmpty(t, errs.TaskErrors[0].Action)
}

func TestValidateDraft_UnresolvedDependencyEmbedsName(t *testing.T) {
	errs := ValidateDraft("Pipeline", "", []models.TaskEntry{
		task("step", "Ghost"),
	})

	require.Contains(t, errs.TaskErrors, 0)
	assert.Contains(t, errs.TaskErrors[0].DependsOn, "Ghost")
}

func TestValidateDraft_FirstUnresolvedDependencyWins(t *testing.T) {
	errs := ValidateDraft("Pipeline", "", []models.TaskEntry{
		task("a"),
		task("b", "Missing1", "Missing2", "a"),
	})

	require.Contains(t, errs.TaskErrors, 1)
	assert.Contains(t, errs.TaskErrors[1].DependsOn, "Missing1")
	assert.NotContains(t, errs.TaskErrors[1].DependsOn, "Missing2")
}

func TestValidateDraft_SelfDependencyIsUnresolved(t *testing.T) {
	errs := ValidateDraft("Pipeline", "", []models.TaskEntry{
		task("loop", "loop"),
	})

	require.Contains(t, errs.TaskErrors, 0)
	assert.Contains(t, errs.TaskErrors[0].DependsOn, "loop")
}

func TestValidateDraft_DependencyOnSiblingResolves(t *testing.T) {
	errs := ValidateDraft("Pipeline", "", []models.TaskEntry{
		task("first"),
		task("second", "first"),
		task("third", "first", "second"),
	})

	assert.Empty(t, errs.TaskErrors)
}

func TestValidateDraft_CyclesAreNotDetected(t *testing.T) {
	// Referential integrity only: A<->B resolves even though it cycles.
	errs := ValidateDraft("Pipeline", "", []models.TaskEntry{
		task("A", "B"),
		task("B", "A"),
	})

	assert.False(t, errs.HasErrors())
}

func TestValidateDraft_ValidTasksOmittedFromResult(t *testing.T) {
	errs := ValidateDraft("Pipeline", "", []models.TaskEntry{
		task("good"),
		task("", "Ghost"),
	})

	assert.NotContains(t, errs.TaskErrors, 0)
	assert.Contains(t, errs.TaskErrors, 1)
}
