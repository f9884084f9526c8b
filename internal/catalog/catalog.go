// Package catalog holds the ordered list of courses shown in the sidebar.
package catalog

import (
	"fmt"
	"log/slog"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/models"
)

// Catalog is an immutable, ordered view over course metadata. Order is the
// concatenation order of the configured course sets; nothing is sorted.
type Catalog struct {
	courses []models.CourseMetadata
	byID    map[string]int
}

// New builds a catalog from metadata in load order. A repeated id keeps the
// first occurrence, or fails with apperr.ErrDuplicateCourse when strict.
func New(metas []models.CourseMetadata, strict bool, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		courses: make([]models.CourseMetadata, 0, len(metas)),
		byID:    make(map[string]int, len(metas)),
	}
	for _, m := range metas {
		if _, dup := c.byID[m.ID]; dup {
			if strict {
				return nil, fmt.Errorf("catalog: course %q: %w", m.ID, apperr.ErrDuplicateCourse)
			}
			logger.Warn("catalog: duplicate course id ignored", slog.String("course_id", m.ID))
			continue
		}
		c.byID[m.ID] = len(c.courses)
		c.courses = append(c.courses, m)
	}
	return c, nil
}

// Empty returns a catalog with no courses.
func Empty() *Catalog {
	return &Catalog{byID: map[string]int{}}
}

// List returns a copy of the courses in catalog order.
func (c *Catalog) List() []models.CourseMetadata {
	out := make([]models.CourseMetadata, len(c.courses))
	copy(out, c.courses)
	return out
}

// Len returns the number of courses.
func (c *Catalog) Len() int { return len(c.courses) }

// Get returns the metadata for id.
func (c *Catalog) Get(id string) (models.CourseMetadata, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.CourseMetadata{}, false
	}
	return c.courses[i], true
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Select applies the initial selection rule: the persisted id if it is still
// listed, otherwise the first course. ok is false for an empty catalog.
func (c *Catalog) Select(persisted string) (id string, ok bool) {
	if persisted != "" && c.Contains(persisted) {
		return persisted, true
	}
	if len(c.courses) == 0 {
		return "", false
	}
	return c.courses[0].ID, true
}
