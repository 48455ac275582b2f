// AngelaMos | 2026
// handler.go

package progress

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/progress", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/{courseID}", h.Get)
		r.Patch("/{courseID}/lectures/{lectureID}", h.MarkLecture)
		r.Patch("/{courseID}/complete", h.MarkCourse)
		r.Patch("/{courseID}/reset", h.Reset)
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseID(w, r, "courseID", "invalid course id")
	if !ok {
		return
	}

	resp, err := h.service.Get(
		r.Context(),
		middleware.GetUserID(r.Context()),
		courseID,
	)
	if err != nil {
		respondError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) MarkLecture(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseID(w, r, "courseID", "invalid course id")
	if !ok {
		return
	}
	lectureID, ok := parseID(w, r, "lectureID", "invalid lecture id")
	if !ok {
		return
	}

	resp, err := h.service.MarkLecture(
		r.Context(),
		middleware.GetUserID(r.Context()),
		courseID,
		lectureID,
	)
	if err != nil {
		respondError(w, err)
		return
	}

	core.OKMessage(w, "lecture progress updated", resp)
}

func (h *Handler) MarkCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseID(w, r, "courseID", "invalid course id")
	if !ok {
		return
	}

	resp, err := h.service.MarkCourse(
		r.Context(),
		middleware.GetUserID(r.Context()),
		courseID,
	)
	if err != nil {
		respondError(w, err)
		return
	}

	core.OKMessage(w, "course marked as completed", resp)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseID(w, r, "courseID", "invalid course id")
	if !ok {
		return
	}

	resp, err := h.service.Reset(
		r.Context(),
		middleware.GetUserID(r.Context()),
		courseID,
	)
	if err != nil {
		respondError(w, err)
		return
	}

	core.OKMessage(w, "course progress reset", resp)
}

func parseID(
	w http.ResponseWriter,
	r *http.Request,
	param, message string,
) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		core.BadRequest(w, message)
		return uuid.Nil, false
	}
	return id, true
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLectureNotFound):
		core.NotFound(w, "lecture")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "course")
	default:
		core.InternalServerError(w, err)
	}
}
