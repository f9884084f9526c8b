package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog.
	r.Get("/courses", h.ListCourses)
	r.Get("/courses/{id}", h.GetCourse)
	r.Post("/refresh", h.Refresh)

	// Active view.
	r.Get("/view", h.GetView)
	r.Get("/progress", h.GetProgress)

	// View state.
	r.Get("/state", h.GetState)
	r.Put("/state/course", h.SelectCourse)
	r.Put("/state/language", h.SetLanguage)
	r.Put("/state/query", h.SetQuery)
	r.Put("/state/dark-mode", h.SetDarkMode)

	// Per-topic actions.
	r.Post("/topics/{id}/bookmark", h.ToggleBookmark)
	r.Post("/topics/{id}/complete", h.ToggleComplete)
	r.Put("/topics/{id}/language", h.SetTopicLanguage)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
