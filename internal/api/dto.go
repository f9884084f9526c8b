package api

import "github.com/starford/coursebook/internal/models"

// CoursesResponse lists the catalog for the sidebar.
type CoursesResponse struct {
	Courses        []models.CourseMetadata `json:"courses"`
	ActiveCourseID string                  `json:"activeCourseId,omitempty" example:"react"`
	Languages      []models.Language       `json:"languages"`
}

// SelectCourseRequest is the body of PUT /state/course.
type SelectCourseRequest struct {
	ID string `json:"id" example:"react"`
}

// LanguageRequest is the body of PUT /state/language and
// PUT /topics/{id}/language.
type LanguageRequest struct {
	Language models.Language `json:"language" example:"hinglish"`
}

// QueryRequest is the body of PUT /state/query.
type QueryRequest struct {
	Query string `json:"query" example:"hooks"`
}

// DarkModeRequest is the body of PUT /state/dark-mode.
type DarkModeRequest struct {
	Enabled *bool `json:"enabled"`
}

// BookmarkResponse reports the bookmark state after a toggle.
type BookmarkResponse struct {
	TopicID    string `json:"topicId" example:"react-hooks"`
	Bookmarked bool   `json:"bookmarked"`
}

// CompleteResponse reports the completion state after a toggle.
type CompleteResponse struct {
	TopicID   string `json:"topicId" example:"react-hooks"`
	Completed bool   `json:"completed"`
}
