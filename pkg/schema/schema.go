// Package schema validates workflow definition documents against the
// interchange JSON Schema before they are turned into workflows.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDefinition indicates a document failed schema validation.
var ErrInvalidDefinition = errors.New("workflow definition does not match schema")

const workflowSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "WorkflowDefinition",
  "type": "object",
  "required": ["workflow_id", "name", "environment", "nodes", "edges"],
  "properties": {
    "workflow_id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 3},
    "description": {"type": "string"},
    "environment": {"enum": ["sandbox", "staging", "production", "development"]},
    "metadata": {"type": "object"},
    "start_node": {"type": "string"},
    "end_nodes": {"type": "array", "items": {"type": "string"}},
    "created_at": {"type": "string"},
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "type"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "type": {"enum": ["start", "process", "decision", "end", "parallel", "merge"]},
          "action": {"type": "string"},
          "config": {"type": "object"},
          "metadata": {"type": "object"}
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "from", "to"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "from": {"type": "string", "minLength": 1},
          "to": {"type": "string", "minLength": 1},
          "priority": {"type": "integer"},
          "condition": {
            "type": "object",
            "required": ["type"],
            "properties": {
              "type": {"enum": ["always", "equals", "not_equals", "greater_than", "less_than", "contains", "custom"]},
              "field": {"type": "string"}
            }
          },
          "metadata": {"type": "object"}
        }
      }
    }
  }
}`

// Validate checks a raw JSON document against the workflow definition
// schema. The returned error lists every violation.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(workflowSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidDefinition, strings.Join(msgs, "; "))
}
