package http

import (
	"net/http"
	"strings"

	"github.com/utafrali/devcamper/pkg/httputil"
	"github.com/utafrali/devcamper/pkg/middleware"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
// Excludes multipart/form-data requests (used for photo uploads).
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "multipart/form-data") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json or multipart/form-data",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// LimitJSONBody caps non-multipart request bodies at n bytes. Photo uploads
// apply their own limit in the handler.
func LimitJSONBody(n int64) func(http.Handler) http.Handler {
	capped := middleware.MaxBodySize(n)
	return func(next http.Handler) http.Handler {
		limited := capped(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if n <= 0 || strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
