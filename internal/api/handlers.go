package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/coursebook/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc Service
}

// NewHandler creates a new Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) courses() CoursesResponse {
	return CoursesResponse{
		Courses:        h.svc.Courses(),
		ActiveCourseID: h.svc.Snapshot().CourseID,
		Languages:      h.svc.Languages(),
	}
}

// ListCourses handles GET /api/courses.
//
//	@Summary	List courses in sidebar order
//	@Tags		courses
//	@Produce	json
//	@Success	200	{object}	CoursesResponse
//	@Security	BearerAuth
//	@Router		/courses [get]
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	writeTagged(w, r, h.courses())
}

// Refresh handles POST /api/refresh.
//
//	@Summary	Reload course metadata
//	@Tags		courses
//	@Produce	json
//	@Success	200	{object}	CoursesResponse
//	@Security	BearerAuth
//	@Router		/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresh(r.Context()); err != nil {
		writeError(w, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, h.courses())
}

// GetCourse handles GET /api/courses/{id}. It renders any course without
// changing the active selection.
//
//	@Summary	Get a resolved course
//	@Tags		courses
//	@Produce	json
//	@Param		id		path		string	true	"Course id"
//	@Param		lang	query		string	false	"Display language"
//	@Param		q		query		string	false	"Topic filter"
//	@Success	200		{object}	viewstate.CourseView
//	@Failure	404		{object}	errResponse
//	@Failure	502		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/courses/{id} [get]
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	view, err := h.svc.ViewOf(r.Context(), id, models.Language(q.Get("lang")), q.Get("q"))
	if err != nil {
		writeError(w, "get course", err)
		return
	}
	writeTagged(w, r, view)
}

// GetView handles GET /api/view.
//
//	@Summary	Render the active course
//	@Tags		view
//	@Produce	json
//	@Param		wait	query		bool	false	"Block until content is loaded"
//	@Success	200		{object}	viewstate.CourseView
//	@Security	BearerAuth
//	@Router		/view [get]
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	wait := false
	if raw := r.URL.Query().Get("wait"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("wait must be a boolean"))
			return
		}
		wait = v
	}
	view, err := h.svc.View(r.Context(), wait)
	if err != nil {
		writeError(w, "view", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetState handles GET /api/state.
func (h *Handler) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Snapshot())
}

// SelectCourse handles PUT /api/state/course.
//
//	@Summary	Switch the active course
//	@Tags		state
//	@Accept		json
//	@Produce	json
//	@Param		body	body		SelectCourseRequest	true	"Course to select"
//	@Success	200		{object}	viewstate.State
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/state/course [put]
func (h *Handler) SelectCourse(w http.ResponseWriter, r *http.Request) {
	var req SelectCourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	s, err := h.svc.SelectCourse(r.Context(), req.ID)
	if err != nil {
		writeError(w, "select course", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SetLanguage handles PUT /api/state/language.
func (h *Handler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.svc.SetLanguage(req.Language)
	if err != nil {
		writeError(w, "set language", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SetQuery handles PUT /api/state/query.
func (h *Handler) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.SetQuery(req.Query))
}

// SetDarkMode handles PUT /api/state/dark-mode.
func (h *Handler) SetDarkMode(w http.ResponseWriter, r *http.Request) {
	var req DarkModeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("enabled is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.SetDarkMode(*req.Enabled))
}

// ToggleBookmark handles POST /api/topics/{id}/bookmark.
//
//	@Summary	Toggle a topic bookmark
//	@Tags		progress
//	@Produce	json
//	@Param		id	path		string	true	"Topic id"
//	@Success	200	{object}	BookmarkResponse
//	@Security	BearerAuth
//	@Router		/topics/{id}/bookmark [post]
func (h *Handler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	added, err := h.svc.ToggleBookmark(id)
	if err != nil {
		writeError(w, "toggle bookmark", err)
		return
	}
	writeJSON(w, http.StatusOK, BookmarkResponse{TopicID: id, Bookmarked: added})
}

// ToggleComplete handles POST /api/topics/{id}/complete.
//
//	@Summary	Toggle topic completion
//	@Tags		progress
//	@Produce	json
//	@Param		id	path		string	true	"Topic id"
//	@Success	200	{object}	CompleteResponse
//	@Security	BearerAuth
//	@Router		/topics/{id}/complete [post]
func (h *Handler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	done, err := h.svc.ToggleComplete(id)
	if err != nil {
		writeError(w, "toggle complete", err)
		return
	}
	writeJSON(w, http.StatusOK, CompleteResponse{TopicID: id, Completed: done})
}

// SetTopicLanguage handles PUT /api/topics/{id}/language.
func (h *Handler) SetTopicLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.svc.SetTopicLanguage(chi.URLParam(r, "id"), req.Language)
	if err != nil {
		writeError(w, "set topic language", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetProgress handles GET /api/progress.
//
//	@Summary	Completion statistics for the active course
//	@Tags		progress
//	@Produce	json
//	@Success	200	{object}	progress.Stats
//	@Failure	502	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/progress [get]
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Progress(r.Context())
	if err != nil {
		writeError(w, "progress", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
