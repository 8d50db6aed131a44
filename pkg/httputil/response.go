package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/devcamper/pkg/errors"
	"github.com/utafrali/devcamper/pkg/logger"
	"github.com/utafrali/devcamper/pkg/pagination"
	"github.com/utafrali/devcamper/pkg/validator"
)

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Success    bool             `json:"success"`
	Count      *int             `json:"count,omitempty"`
	Pagination *pagination.Page `json:"pagination,omitempty"`
	Data       any              `json:"data"`
	Error      *ErrorResponse   `json:"error,omitempty"`
}

// ErrorResponse is the error part of the envelope.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a successful envelope around data.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Success: true, Data: data})
}

// WriteList writes a successful envelope for one page of a collection.
func WriteList[T any](w http.ResponseWriter, items []T, page *pagination.Page) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	WriteJSON(w, http.StatusOK, Response{Success: true, Count: &n, Pagination: page, Data: items})
}

// WriteError maps err onto a status and code and writes the error envelope.
// 5xx responses are logged with the request-scoped logger when one is present.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.RequestIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
			Code:      "VALIDATION_ERROR",
			Message:   "request validation failed",
			Fields:    valErr.Fields(),
			RequestID: requestID,
		}})
		return
	}

	status := apperrors.HTTPStatus(err)
	resp := &ErrorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred", RequestID: requestID}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		resp.Code, resp.Message = appErr.Code, appErr.Message
	case errors.Is(err, apperrors.ErrNotFound):
		resp.Code, resp.Message = "NOT_FOUND", "resource not found"
	case errors.Is(err, apperrors.ErrForbidden):
		resp.Code, resp.Message = "FORBIDDEN", "not authorized to access this resource"
	case errors.Is(err, apperrors.ErrInvalidInput):
		resp.Code, resp.Message = "INVALID_INPUT", err.Error()
	case status == http.StatusGatewayTimeout:
		resp.Code, resp.Message = "TIMEOUT", "request timed out"
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
		)
	}

	WriteJSON(w, status, Response{Error: resp})
}
