// Package aggregate keeps the derived average cost and average rating of a
// bootcamp in line with its courses and reviews.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/devcamper/pkg/logger"
)

// Fields a recompute can write.
const (
	FieldAverageCost   = "average_cost"
	FieldAverageRating = "average_rating"
)

var recomputeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "devcamper_aggregate_recompute_failures_total",
	Help: "Bootcamp aggregate recomputations that failed and were skipped.",
}, []string{"field"})

// ErrNotFinite is the cause of a ComputeError whose average was NaN or infinite.
var ErrNotFinite = errors.New("average is not a finite number")

// ComputeError reports a recompute that could not be completed. The stored
// value is left as it was.
type ComputeError struct {
	BootcampID string
	Field      string
	Err        error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("recompute %s for bootcamp %s: %v", e.Field, e.BootcampID, e.Err)
}

func (e *ComputeError) Unwrap() error {
	return e.Err
}

// TuitionSource averages the tuition of a bootcamp's courses.
// ok is false when the bootcamp has no courses.
type TuitionSource interface {
	AverageTuition(ctx context.Context, bootcampID string) (avg float64, ok bool, err error)
}

// RatingSource averages the ratings of a bootcamp's reviews.
// ok is false when the bootcamp has no reviews.
type RatingSource interface {
	AverageRating(ctx context.Context, bootcampID string) (avg float64, ok bool, err error)
}

// Target persists derived values on a bootcamp. A nil value clears the field.
type Target interface {
	SetAverageCost(ctx context.Context, bootcampID string, cost *float64) error
	SetAverageRating(ctx context.Context, bootcampID string, rating *float64) error
}

// Notifier is told about every value written by the maintainer.
type Notifier interface {
	PublishAggregatesUpdated(ctx context.Context, bootcampID, field string, value *float64)
}

// Maintainer recomputes bootcamp aggregates after a child write has committed.
// Concurrent recomputes of the same bootcamp are last writer wins.
type Maintainer struct {
	courses  TuitionSource
	reviews  RatingSource
	target   Target
	notifier Notifier
	timeout  time.Duration
}

// Option customises a Maintainer.
type Option func(*Maintainer)

// WithNotifier publishes each written value through n.
func WithNotifier(n Notifier) Option {
	return func(m *Maintainer) { m.notifier = n }
}

// WithTimeout bounds each recompute. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(m *Maintainer) { m.timeout = d }
}

// NewMaintainer creates a Maintainer.
func NewMaintainer(courses TuitionSource, reviews RatingSource, target Target, opts ...Option) *Maintainer {
	m := &Maintainer{courses: courses, reviews: reviews, target: target}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecomputeAverageCost sets the bootcamp's average cost to the mean course
// tuition rounded up to the next multiple of 10, or clears it when the
// bootcamp has no courses. Failures are logged and counted, never returned.
func (m *Maintainer) RecomputeAverageCost(ctx context.Context, bootcampID string) {
	ctx, cancel := m.scope(ctx)
	defer cancel()

	cost, err := m.averageCost(ctx, bootcampID)
	if err == nil {
		err = m.target.SetAverageCost(ctx, bootcampID, cost)
	}
	m.finish(ctx, bootcampID, FieldAverageCost, cost, err)
}

// RecomputeAverageRating sets the bootcamp's average rating to the plain mean
// of its review ratings, or clears it when there are no reviews.
func (m *Maintainer) RecomputeAverageRating(ctx context.Context, bootcampID string) {
	ctx, cancel := m.scope(ctx)
	defer cancel()

	rating, err := m.averageRating(ctx, bootcampID)
	if err == nil {
		err = m.target.SetAverageRating(ctx, bootcampID, rating)
	}
	m.finish(ctx, bootcampID, FieldAverageRating, rating, err)
}

func (m *Maintainer) averageCost(ctx context.Context, bootcampID string) (*float64, error) {
	avg, ok, err := m.courses.AverageTuition(ctx, bootcampID)
	if err != nil || !ok {
		return nil, err
	}
	if err := finite(avg); err != nil {
		return nil, err
	}
	cost := RoundCost(avg)
	return &cost, nil
}

func (m *Maintainer) averageRating(ctx context.Context, bootcampID string) (*float64, error) {
	avg, ok, err := m.reviews.AverageRating(ctx, bootcampID)
	if err != nil || !ok {
		return nil, err
	}
	if err := finite(avg); err != nil {
		return nil, err
	}
	return &avg, nil
}

// scope detaches the recompute from request cancellation: the child write
// has already committed, so the parent must still be brought up to date.
func (m *Maintainer) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if m.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}

func (m *Maintainer) finish(ctx context.Context, bootcampID, field string, value *float64, err error) {
	log := logger.FromContext(ctx)
	if err != nil {
		cerr := &ComputeError{BootcampID: bootcampID, Field: field, Err: err}
		recomputeFailures.WithLabelValues(field).Inc()
		log.ErrorContext(ctx, "bootcamp aggregate recompute failed",
			slog.String("bootcamp_id", bootcampID),
			slog.String("field", field),
			slog.String("error", cerr.Error()),
		)
		return
	}

	log.DebugContext(ctx, "bootcamp aggregate recomputed",
		slog.String("bootcamp_id", bootcampID),
		slog.String("field", field),
		slog.Any("value", value),
	)
	if m.notifier != nil {
		m.notifier.PublishAggregatesUpdated(ctx, bootcampID, field, value)
	}
}

// RoundCost rounds an average tuition up to the next multiple of 10.
func RoundCost(avg float64) float64 {
	return math.Ceil(avg/10) * 10
}

func finite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrNotFinite, v)
	}
	return nil
}
