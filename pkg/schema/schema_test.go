package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDraft = `{
  "name": "Nightly ETL",
  "description": "loads orders",
  "tags": ["etl", "nightly"],
  "tasks": [
    {
      "name": "extract",
      "action": "transform",
      "parameters": [{"key": "source", "value": "orders"}],
      "priority": "high"
    },
    {
      "name": "load",
      "action": "aggregate",
      "depends_on": ["extract"]
    }
  ]
}`

func TestValidateDraftDocument_Valid(t *testing.T) {
	assert.NoError(t, ValidateDraftDocument([]byte(validDraft)))
}

func TestValidateDraftDocument_MissingName(t *testing.T) {
	err := ValidateDraftDocument([]byte(`{"tasks": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestValidateDraftDocument_TaskMissingAction(t *testing.T) {
	err := ValidateDraftDocument([]byte(`{"name": "x", "tasks": [{"name": "step"}]}`))
	assert.Error(t, err)
}

func TestValidateDraftDocument_WrongTypes(t *testing.T) {
	err := ValidateDraftDocument([]byte(`{"name": "x", "tasks": "not-a-list"}`))
	assert.Error(t, err)
}

func TestLoadDraftFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.json")
	require.NoError(t, os.WriteFile(path, []byte(validDraft), 0o644))

	draft, err := LoadDraftFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Nightly ETL", draft.Name)
	require.Len(t, draft.Tasks, 2)
	assert.Equal(t, models.ActionTransform, draft.Tasks[0].Action)
	assert.Equal(t, []string{"extract"}, draft.Tasks[1].DependsOn)
}

func TestLoadDraftFile_Missing(t *testing.T) {
	_, err := LoadDraftFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
