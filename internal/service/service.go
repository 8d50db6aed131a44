// Package service holds the resource controllers: each operation resolves its
// target, authorizes the actor, persists the change, keeps bootcamp aggregates
// current and publishes a domain event.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/geocoder"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
)

// AggregateMaintainer recomputes derived bootcamp fields after a course or
// review write has committed. *aggregate.Maintainer satisfies it.
type AggregateMaintainer interface {
	RecomputeAverageCost(ctx context.Context, bootcampID string)
	RecomputeAverageRating(ctx context.Context, bootcampID string)
}

// geocode resolves query and maps provider failures onto the error taxonomy.
func geocode(ctx context.Context, g geocoder.Geocoder, log *slog.Logger, query string) (*domain.Location, error) {
	loc, err := g.Geocode(ctx, query)
	switch {
	case err == nil:
		return loc, nil
	case errors.Is(err, geocoder.ErrNoResult):
		return nil, apperrors.GeocodeFailed(query)
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.Timeout("geocode")
	default:
		log.ErrorContext(ctx, "geocoder failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("geocode %q: %w", query, apperrors.ServiceUnavailable("geocoding provider is unavailable"))
	}
}
