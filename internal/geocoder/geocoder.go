// Package geocoder resolves street addresses and postal codes into coordinates.
package geocoder

import (
	"context"
	"errors"

	"github.com/utafrali/devcamper/internal/domain"
)

// ErrNoResult is returned when the provider cannot place the query.
var ErrNoResult = errors.New("geocoder: no result")

// Geocoder turns a free-form address or postal code into a Location.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*domain.Location, error)
}

// Func adapts a plain function to the Geocoder interface.
type Func func(ctx context.Context, query string) (*domain.Location, error)

// Geocode calls f.
func (f Func) Geocode(ctx context.Context, query string) (*domain.Location, error) {
	return f(ctx, query)
}
