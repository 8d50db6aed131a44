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

// UserHandler handles the admin user management endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	users, total, err := h.service.List(r.Context(), domain.UserFilter{
		Role:   r.URL.Query().Get("role"),
		Limit:  params.PerPage,
		Offset: params.Offset,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page := pagination.NewPage(total, params)
	httputil.WriteList(w, users, &page)
}

// Get handles GET /api/v1/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, u)
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateUserInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	u, err := h.service.Create(r.Context(), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, u)
}

// Update handles PUT /api/v1/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateUserInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	u, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, u)
}

// Delete handles DELETE /api/v1/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, nil)
}
