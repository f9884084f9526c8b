// Package parser decodes course-set bundles. A bundle is either a single
// course object or an array of course objects; both normalize to a slice.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/models"
)

// Parse decodes a bundle into its courses, preserving array order.
func Parse(data []byte) ([]models.Course, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("parser: empty bundle: %w", apperr.ErrInvalidBundle)
	}

	switch trimmed[0] {
	case '[':
		var courses []models.Course
		if err := json.Unmarshal(trimmed, &courses); err != nil {
			return nil, fmt.Errorf("parser: decode course array: %w: %v", apperr.ErrInvalidBundle, err)
		}
		return courses, nil
	case '{':
		var course models.Course
		if err := json.Unmarshal(trimmed, &course); err != nil {
			return nil, fmt.Errorf("parser: decode course object: %w: %v", apperr.ErrInvalidBundle, err)
		}
		return []models.Course{course}, nil
	default:
		return nil, fmt.Errorf("parser: bundle must be an object or array: %w", apperr.ErrInvalidBundle)
	}
}

// ParseStrict validates data against the course schema before decoding.
// Base-language bundles go through here; overlays use Parse because a
// translation may legitimately omit most fields.
func ParseStrict(data []byte) ([]models.Course, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	return Parse(data)
}

// Find returns the first course in courses with the given id.
func Find(courses []models.Course, id string) (*models.Course, bool) {
	for i := range courses {
		if courses[i].ID == id {
			return &courses[i], true
		}
	}
	return nil, false
}
