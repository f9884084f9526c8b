// Package search filters a course's sections and topics by a free-text query.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/starford/coursebook/internal/models"
)

// Filter keeps the topics whose title or English explanation contains query,
// compared case-insensitively, and drops sections left without topics.
// Order is preserved and course is not modified. An empty query returns the
// sections unchanged.
func Filter(course *models.Course, query string) []models.Section {
	if course == nil {
		return nil
	}
	if query == "" {
		return course.Sections
	}
	m := newMatcher(query)
	return filter(course.Sections, func(si, ti int) bool {
		t := &course.Sections[si].Topics[ti]
		return m.match(t.Title) || m.match(t.Explanations.English)
	})
}

// FilterResolved filters a resolved course while matching only the
// base-language title and English explanation, so results do not change
// when the learner switches display language. resolved must share base's
// section/topic skeleton, which merge.Resolve guarantees.
func FilterResolved(resolved, base *models.Course, query string) []models.Section {
	if resolved == nil {
		return nil
	}
	if base == nil || base == resolved {
		return Filter(resolved, query)
	}
	if query == "" {
		return resolved.Sections
	}
	m := newMatcher(query)
	return filter(resolved.Sections, func(si, ti int) bool {
		if si >= len(base.Sections) || ti >= len(base.Sections[si].Topics) {
			return false
		}
		bt := &base.Sections[si].Topics[ti]
		return m.match(bt.Title) || m.match(bt.Explanations.English)
	})
}

// Count returns the number of topics across sections.
func Count(sections []models.Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Topics)
	}
	return n
}

func filter(sections []models.Section, keep func(si, ti int) bool) []models.Section {
	out := make([]models.Section, 0, len(sections))
	for si, s := range sections {
		var topics []models.Topic
		for ti := range s.Topics {
			if keep(si, ti) {
				topics = append(topics, s.Topics[ti])
			}
		}
		if len(topics) == 0 {
			continue
		}
		s.Topics = topics
		out = append(out, s)
	}
	return out
}

// matcher folds case once for the query. A cases.Caser is stateful, so each
// matcher owns its own.
type matcher struct {
	fold   cases.Caser
	needle string
}

func newMatcher(query string) *matcher {
	m := &matcher{fold: cases.Fold()}
	m.needle = m.fold.String(query)
	return m
}

func (m *matcher) match(s string) bool {
	return strings.Contains(m.fold.String(s), m.needle)
}
