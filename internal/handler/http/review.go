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

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/reviews and GET /api/v1/bootcamps/{bootcampId}/reviews.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	q := &queryParser{r: r}
	params := pagination.FromRequest(r)
	filter := domain.ReviewFilter{
		BootcampID: chi.URLParam(r, "bootcampId"),
		UserID:     r.URL.Query().Get("user_id"),
		RatingGTE:  q.int("rating_gte"),
		Sort:       r.URL.Query().Get("sort"),
		Limit:      params.PerPage,
		Offset:     params.Offset,
	}
	if q.err != nil {
		httputil.WriteError(w, r, q.err, h.logger)
		return
	}

	reviews, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page := pagination.NewPage(total, params)
	httputil.WriteList(w, reviews, &page)
}

// Get handles GET /api/v1/reviews/{id}.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	rv, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, rv)
}

// Create handles POST /api/v1/bootcamps/{bootcampId}/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var input service.CreateReviewInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	rv, err := h.service.Create(r.Context(), actor, chi.URLParam(r, "bootcampId"), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, rv)
}

// Update handles PUT /api/v1/reviews/{id}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var input service.UpdateReviewInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	rv, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, rv)
}

// Delete handles DELETE /api/v1/reviews/{id}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
