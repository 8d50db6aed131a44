// Package http exposes the devcamper services over a chi router.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/devcamper/internal/domain"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
	"github.com/utafrali/devcamper/pkg/middleware"
)

// actorFrom returns the authenticated caller. Routes behind middleware.Auth
// always have one; a missing identity is reported as 401.
func actorFrom(r *http.Request) (domain.Actor, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok || id.UserID == "" {
		return domain.Actor{}, apperrors.Unauthorized("not authorized to access this route")
	}
	return domain.Actor{ID: id.UserID, Role: domain.Role(id.Role)}, nil
}

// decodeJSON reads the request body into dst. Unknown fields are rejected so
// derived fields such as average_cost cannot be smuggled into an update.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.FileTooLarge(tooLarge.Limit+1, tooLarge.Limit)
		}
		return apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	return nil
}

// queryParser collects typed query parameters and remembers the first bad one.
type queryParser struct {
	r   *http.Request
	err error
}

func (p *queryParser) boolPtr(name string) *bool {
	raw := p.r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, "must be true or false")
		return nil
	}
	return &v
}

func (p *queryParser) floatPtr(name string) *float64 {
	raw := p.r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(name, "must be a number")
		return nil
	}
	return &v
}

func (p *queryParser) int(name string) int {
	raw := p.r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(name, "must be an integer")
		return 0
	}
	return v
}

// list accepts both careers=a,b and repeated careers=a&careers=b.
func (p *queryParser) list(name string) []string {
	var out []string
	for _, raw := range p.r.URL.Query()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func (p *queryParser) fail(name, msg string) {
	if p.err == nil {
		p.err = apperrors.InvalidInput("query parameter " + name + " " + msg)
	}
}
