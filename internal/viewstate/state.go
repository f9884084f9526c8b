// Package viewstate owns the learner's view: which course and language are
// active, the search query, progress, and how those combine with loaded
// content into a renderable CourseView.
package viewstate

import (
	"maps"
	"slices"

	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/progress"
	"github.com/starford/coursebook/internal/state"
)

// State is an immutable snapshot of the view. Transitions return a new
// State and never modify the receiver's slices or map.
type State struct {
	CourseID      string                     `json:"courseId"`
	Language      models.Language            `json:"language"`
	Query         string                     `json:"query"`
	TopicLanguage map[string]models.Language `json:"topicLanguage"`
	DarkMode      bool                       `json:"darkMode"`
	Bookmarks     []string                   `json:"bookmarks"`
	Completed     []string                   `json:"completed"`
}

func fromPersisted(p state.Persisted, lang models.Language) State {
	return State{
		CourseID:  p.ActiveCourseID,
		Language:  lang,
		DarkMode:  p.DarkMode,
		Bookmarks: slices.Clone(p.Bookmarks),
		Completed: slices.Clone(p.Completed),
	}
}

func (s State) persisted() state.Persisted {
	return state.Persisted{
		DarkMode:       s.DarkMode,
		Bookmarks:      s.Bookmarks,
		Completed:      s.Completed,
		ActiveCourseID: s.CourseID,
		Language:       s.Language,
	}
}

// Tracker returns the progress sets of the snapshot.
func (s State) Tracker() progress.Tracker {
	return progress.New(s.Bookmarks, s.Completed)
}

// LanguageFor returns the display language of one topic: its own choice if
// the learner made one, otherwise the global language.
func (s State) LanguageFor(topicID string) models.Language {
	if l, ok := s.TopicLanguage[topicID]; ok {
		return l
	}
	return s.Language
}

// WithCourse selects a course and clears the query.
func (s State) WithCourse(id string) State {
	s.CourseID = id
	s.Query = ""
	return s
}

// WithLanguage switches the global display language.
func (s State) WithLanguage(lang models.Language) State {
	s.Language = lang
	return s
}

// WithQuery sets the search query.
func (s State) WithQuery(q string) State {
	s.Query = q
	return s
}

// WithTopicLanguage overrides the display language of one topic.
func (s State) WithTopicLanguage(topicID string, lang models.Language) State {
	m := make(map[string]models.Language, len(s.TopicLanguage)+1)
	maps.Copy(m, s.TopicLanguage)
	m[topicID] = lang
	s.TopicLanguage = m
	return s
}

// WithDarkMode sets the theme flag.
func (s State) WithDarkMode(on bool) State {
	s.DarkMode = on
	return s
}

// WithBookmarks replaces the bookmark set.
func (s State) WithBookmarks(ids []string) State {
	s.Bookmarks = slices.Clone(ids)
	return s
}

// WithCompleted replaces the completed set.
func (s State) WithCompleted(ids []string) State {
	s.Completed = slices.Clone(ids)
	return s
}

// clone deep-copies the reference fields so callers can't reach the
// controller's snapshot.
func (s State) clone() State {
	s.Bookmarks = slices.Clone(s.Bookmarks)
	s.Completed = slices.Clone(s.Completed)
	s.TopicLanguage = maps.Clone(s.TopicLanguage)
	return s
}
