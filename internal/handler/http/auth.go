package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/devcamper/internal/service"
	"github.com/utafrali/devcamper/pkg/httputil"
)

// AuthHandler handles sign-up, sign-in and the caller's own account.
type AuthHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	res, err := h.service.Register(r.Context(), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, res)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	res, err := h.service.Login(r.Context(), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	u, err := h.service.Me(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, u)
}

// UpdateDetails handles PUT /api/v1/auth/updatedetails.
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var input service.UpdateDetailsInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	u, err := h.service.UpdateDetails(r.Context(), actor, &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, u)
}

// UpdatePassword handles PUT /api/v1/auth/updatepassword.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var input service.UpdatePasswordInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	res, err := h.service.UpdatePassword(r.Context(), actor, &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}
