package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/starford/coursebook/internal/apperr"
)

// courseSchema describes the structural skeleton a base-language bundle
// must provide. Only ids and containment are enforced; text fields are
// free-form.
const courseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "topic": {
      "type": "object",
      "required": ["id", "title", "explanations"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "title": {"type": "string"},
        "explanations": {
          "type": "object",
          "properties": {
            "english": {"type": "string"},
            "hinglish": {"type": "string"}
          }
        },
        "keyPoints": {"type": "array", "items": {"type": "string"}}
      }
    },
    "section": {
      "type": "object",
      "required": ["id", "topics"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "topics": {"type": "array", "items": {"$ref": "#/definitions/topic"}}
      }
    },
    "course": {
      "type": "object",
      "required": ["id", "title", "sections"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "title": {"type": "string"},
        "sections": {"type": "array", "items": {"$ref": "#/definitions/section"}}
      }
    }
  },
  "oneOf": [
    {"$ref": "#/definitions/course"},
    {"type": "array", "items": {"$ref": "#/definitions/course"}}
  ]
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(courseSchema))
	})
	return schema, schemaErr
}

// Validate checks data against the course bundle schema.
func Validate(data []byte) error {
	s, err := loadSchema()
	if err != nil {
		return fmt.Errorf("parser: compile schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("parser: %w: %v", apperr.ErrInvalidBundle, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("parser: %w: %s", apperr.ErrInvalidBundle, strings.Join(msgs, "; "))
}

// Schema returns the JSON schema base-language bundles are validated
// against.
func Schema() string { return courseSchema }
