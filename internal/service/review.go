package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/event"
	"github.com/utafrali/devcamper/internal/policy"
	"github.com/utafrali/devcamper/internal/repository"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
	"github.com/utafrali/devcamper/pkg/validator"
)

// ReviewService implements the business logic for reviews.
type ReviewService struct {
	reviews    repository.ReviewRepository
	bootcamps  repository.BootcampRepository
	aggregates AggregateMaintainer
	producer   *event.Producer
	logger     *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	bootcamps repository.BootcampRepository,
	aggregates AggregateMaintainer,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		bootcamps:  bootcamps,
		aggregates: aggregates,
		producer:   producer,
		logger:     logger,
	}
}

// CreateReviewInput holds the fields of a new review.
type CreateReviewInput struct {
	Title  string `json:"title" validate:"required,max=100"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=10"`
}

// UpdateReviewInput holds a partial review update.
type UpdateReviewInput struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=100"`
	Text   *string `json:"text" validate:"omitempty,min=1"`
	Rating *int    `json:"rating" validate:"omitempty,gte=1,lte=10"`
}

// List returns one page of reviews, optionally restricted to one bootcamp.
func (s *ReviewService) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error) {
	if filter.BootcampID != "" {
		if _, err := s.bootcamps.GetByID(ctx, filter.BootcampID); err != nil {
			return nil, 0, fmt.Errorf("get bootcamp: %w", err)
		}
	}
	reviews, total, err := s.reviews.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

// Get returns a single review.
func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return r, nil
}

// Create records the actor's review of a bootcamp and refreshes its average
// rating. A user may review each bootcamp once.
func (s *ReviewService) Create(ctx context.Context, actor domain.Actor, bootcampID string, input *CreateReviewInput) (*domain.Review, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	b, err := s.bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		return nil, fmt.Errorf("get bootcamp: %w", err)
	}

	exists, err := s.reviews.ExistsForUser(ctx, b.ID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, apperrors.InvalidInput(domain.DuplicateReviewMessage)
	}

	now := time.Now().UTC()
	r := &domain.Review{
		ID:         uuid.New().String(),
		BootcampID: b.ID,
		UserID:     actor.ID,
		Title:      input.Title,
		Text:       input.Text,
		Rating:     input.Rating,
		Bootcamp:   &domain.BootcampSummary{ID: b.ID, Name: b.Name, Description: b.Description},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// The unique index still rejects a concurrent duplicate.
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	s.aggregates.RecomputeAverageRating(ctx, b.ID)

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", r.ID),
		slog.String("bootcamp_id", b.ID),
	)
	s.producer.PublishReviewCreated(ctx, r)
	return r, nil
}

// Update changes a review on behalf of its author or an admin.
func (s *ReviewService) Update(ctx context.Context, actor domain.Actor, id string, input *UpdateReviewInput) (*domain.Review, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if err := policy.Authorize(r.UserID, actor, "review", id); err != nil {
		return nil, err
	}

	ratingChanged := input.Rating != nil && *input.Rating != r.Rating
	if input.Title != nil {
		r.Title = *input.Title
	}
	if input.Text != nil {
		r.Text = *input.Text
	}
	if input.Rating != nil {
		r.Rating = *input.Rating
	}

	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if ratingChanged {
		s.aggregates.RecomputeAverageRating(ctx, r.BootcampID)
	}
	return r, nil
}

// Delete removes a review on behalf of its author or an admin.
func (s *ReviewService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get review: %w", err)
	}
	if err := policy.Authorize(r.UserID, actor, "review", id); err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	s.aggregates.RecomputeAverageRating(ctx, r.BootcampID)

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", id),
		slog.String("bootcamp_id", r.BootcampID),
	)
	s.producer.PublishReviewDeleted(ctx, r)
	return nil
}
