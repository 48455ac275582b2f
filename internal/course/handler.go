// AngelaMos | 2026
// handler.go

package course

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/middleware"
)

const (
	maxThumbnailSize = 10 << 20
	maxVideoSize     = 500 << 20
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Get("/published", h.ListPublished)
		r.Get("/{courseID}", h.Detail)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/{courseID}/lectures", h.Lectures)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireInstructor)
			r.Post("/", h.Create)
			r.Get("/", h.MyCourses)
			r.Patch("/{courseID}", h.Update)
			r.Post("/{courseID}/lectures", h.AddLecture)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.CreatedMessage(w, "course created successfully", c)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	courses, err := h.service.Search(r.Context(), filter)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Collection(w, len(courses), courses)
}

func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListPublished(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Collection(w, len(courses), courses)
}

func (h *Handler) MyCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.MyCourses(
		r.Context(),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Collection(w, len(courses), courses)
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Detail(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "course")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	var req UpdateCourseRequest
	var thumbnail *Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxThumbnailSize); err != nil {
			core.BadRequest(w, "invalid multipart form")
			return
		}

		if err := decodeCourseForm(r, &req); err != nil {
			core.BadRequest(w, err.Error())
			return
		}

		file, header, err := r.FormFile("thumbnail")
		if err == nil {
			defer file.Close() //nolint:errcheck // multipart file close
			thumbnail = &Upload{Filename: header.Filename, Reader: file}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		courseID,
		req,
		thumbnail,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "course")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "you do not own this course")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OKMessage(w, "course updated successfully", c)
}

func (h *Handler) AddLecture(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxVideoSize); err != nil {
		core.BadRequest(w, "invalid multipart form")
		return
	}

	req := CreateLectureRequest{
		Title:     r.FormValue("title"),
		IsPreview: r.FormValue("isPreview") == "true",
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	var video *Upload
	file, header, err := r.FormFile("video")
	if err == nil {
		defer file.Close() //nolint:errcheck // multipart file close
		video = &Upload{Filename: header.Filename, Reader: file}
	}

	l, err := h.service.AddLecture(
		r.Context(),
		middleware.GetUserID(r.Context()),
		courseID,
		req,
		video,
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrVideoRequired):
			core.BadRequest(w, "lecture video is required")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "course")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "you do not own this course")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.CreatedMessage(w, "lecture added successfully", l)
}

func (h *Handler) Lectures(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	role := middleware.GetUserRole(r.Context())

	resp, err := h.service.Lectures(r.Context(), courseID, userID, role)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "course")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func parseCourseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return uuid.Nil, false
	}
	return id, true
}

func parseSearchFilter(r *http.Request) (SearchFilter, error) {
	q := r.URL.Query()

	filter := SearchFilter{
		Query:  strings.TrimSpace(q.Get("query")),
		Level:  q.Get("level"),
		SortBy: q.Get("sortBy"),
	}

	if raw := q.Get("categories"); raw != "" {
		for _, cat := range strings.Split(raw, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				filter.Categories = append(filter.Categories, cat)
			}
		}
	}

	// priceRange comes in as "min-max", either side optional.
	if raw := q.Get("priceRange"); raw != "" {
		lo, hi, found := strings.Cut(raw, "-")
		if !found {
			return filter, errors.New("invalid price range")
		}
		if lo != "" {
			v, err := strconv.ParseInt(lo, 10, 64)
			if err != nil {
				return filter, errors.New("invalid price range")
			}
			filter.PriceMin = &v
		}
		if hi != "" {
			v, err := strconv.ParseInt(hi, 10, 64)
			if err != nil {
				return filter, errors.New("invalid price range")
			}
			filter.PriceMax = &v
		}
	}

	return filter, nil
}

func decodeCourseForm(r *http.Request, req *UpdateCourseRequest) error {
	setString := func(key string, dst **string) {
		if vals, ok := r.MultipartForm.Value[key]; ok && len(vals) > 0 {
			v := vals[0]
			*dst = &v
		}
	}

	setString("title", &req.Title)
	setString("subtitle", &req.Subtitle)
	setString("description", &req.Description)
	setString("category", &req.Category)
	setString("level", &req.Level)

	if vals, ok := r.MultipartForm.Value["price"]; ok && len(vals) > 0 {
		price, err := strconv.ParseInt(vals[0], 10, 64)
		if err != nil {
			return errors.New("invalid price")
		}
		req.Price = &price
	}

	if vals, ok := r.MultipartForm.Value["isPublished"]; ok && len(vals) > 0 {
		published := vals[0] == "true"
		req.IsPublished = &published
	}

	return nil
}
