// Package schema validates workflow draft files against the draft JSON
// Schema before their contents are handed to the task-graph validator.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// draftSchema describes the shape of a workflow draft file. Semantic rules
// (duplicate names, dependency resolution) stay in pkg/validation; this
// schema only rejects structurally broken files early with a useful message.
const draftSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "description": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "schedule": {"type": "string"},
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "action"],
        "properties": {
          "name": {"type": "string"},
          "action": {"type": "string"},
          "parameters": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["key"],
              "properties": {
                "key": {"type": "string"},
                "value": {"type": "string"}
              }
            }
          },
          "depends_on": {"type": "array", "items": {"type": "string"}},
          "pre_hook": {"type": "string"},
          "post_hook": {"type": "string"},
          "priority": {"type": "string"}
        }
      }
    }
  }
}`

// DraftFile is the on-disk form of a workflow draft accepted by the CLI.
type DraftFile struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Tags        []string           `json:"tags"`
	Schedule    string             `json:"schedule"`
	Tasks       []models.TaskEntry `json:"tasks"`
}

// ValidateDraftDocument checks raw JSON against the draft schema.
func ValidateDraftDocument(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(draftSchema)
	dataLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate draft document: %w", err)
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(descriptions, "; "))
	}

	return nil
}

// LoadDraftFile reads and schema-checks a draft file.
func LoadDraftFile(path string) (*DraftFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft file %s: %w", path, err)
	}

	if err := ValidateDraftDocument(data); err != nil {
		return nil, err
	}

	var draft DraftFile
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to parse draft file %s: %w", path, err)
	}

	return &draft, nil
}
