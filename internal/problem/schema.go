package problem

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// elementSchema accepts every shape the backend has sent across revisions:
// scalar text fields may arrive as numbers or booleans, and id is left
// unconstrained because an unreadable id maps to UnknownID instead of
// rejecting the element.
const elementSchema = `{
	"type": "object",
	"properties": {
		"category":      {"$ref": "#/$defs/text"},
		"type":          {"$ref": "#/$defs/text"},
		"title":         {"$ref": "#/$defs/text"},
		"description":   {"$ref": "#/$defs/text"},
		"answer":        {"$ref": "#/$defs/text"},
		"targetSnippet": {"$ref": "#/$defs/text"},
		"correctFix":    {"$ref": "#/$defs/text"},
		"choices": {
			"type": ["array", "null"],
			"items": {"$ref": "#/$defs/text"}
		}
	},
	"$defs": {
		"text": {"type": ["string", "number", "boolean", "null"]}
	}
}`

const elementSchemaURL = "schema://problem-element.json"

var compiledElementSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var def any
	if err := json.Unmarshal([]byte(elementSchema), &def); err != nil {
		return nil, fmt.Errorf("parse element schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(elementSchemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(elementSchemaURL)
})

// validateElement checks one raw array element against elementSchema.
func validateElement(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := compiledElementSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
