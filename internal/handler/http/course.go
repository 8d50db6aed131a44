package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/service"
	"github.com/utafrali/devcamper/pkg/httputil"
	"github.com/utafrali/devcamper/pkg/pagination"
)

// CourseHandler handles HTTP requests for course endpoints.
type CourseHandler struct {
	service *service.CourseService
	logger  *slog.Logger
}

// NewCourseHandler creates a new course HTTP handler.
func NewCourseHandler(svc *service.CourseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/courses and GET /api/v1/bootcamps/{bootcampId}/courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := &queryParser{r: r}
	params := pagination.FromRequest(r)
	filter := domain.CourseFilter{
		BootcampID:   chi.URLParam(r, "bootcampId"),
		MinimumSkill: r.URL.Query().Get("minimum_skill"),
		TuitionLTE:   q.floatPtr("tuition_lte"),
		Sort:         r.URL.Query().Get("sort"),
		Limit:        params.PerPage,
		Offset:       params.Offset,
	}
	if q.err != nil {
		httputil.WriteError(w, r, q.err, h.logger)
		return
	}

	courses, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page := pagination.NewPage(total, params)
	httputil.WriteList(w, courses, &page)
}

// Get handles GET /api/v1/courses/{id}.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, c)
}

// Create handles POST /api/v1/bootcamps/{bootcampId}/courses.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var input service.CreateCourseInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	c, err := h.service.Create(r.Context(), actor, chi.URLParam(r, "bootcampId"), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, c)
}

// Update handles PUT /api/v1/courses/{id}.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var input service.UpdateCourseInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	c, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, c)
}

// Delete handles DELETE /api/v1/courses/{id}.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, nil)
}
