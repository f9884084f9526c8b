package api

import (
	"context"

	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/progress"
	"github.com/starford/coursebook/internal/viewstate"
)

// Service is the view-state surface the handlers drive. It is implemented
// by *viewstate.Controller.
type Service interface {
	Snapshot() viewstate.State
	Courses() []models.CourseMetadata
	Languages() []models.Language
	Refresh(ctx context.Context) error

	View(ctx context.Context, wait bool) (viewstate.CourseView, error)
	ViewOf(ctx context.Context, courseID string, lang models.Language, query string) (viewstate.CourseView, error)
	Progress(ctx context.Context) (progress.Stats, error)

	SelectCourse(ctx context.Context, id string) (viewstate.State, error)
	SetLanguage(lang models.Language) (viewstate.State, error)
	SetQuery(q string) viewstate.State
	SetDarkMode(on bool) viewstate.State
	SetTopicLanguage(topicID string, lang models.Language) (viewstate.State, error)
	ToggleBookmark(topicID string) (bool, error)
	ToggleComplete(topicID string) (bool, error)
}

var _ Service = (*viewstate.Controller)(nil)
