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
	"github.com/utafrali/devcamper/pkg/validator"
)

// CourseService implements the business logic for courses.
type CourseService struct {
	courses    repository.CourseRepository
	bootcamps  repository.BootcampRepository
	aggregates AggregateMaintainer
	producer   *event.Producer
	logger     *slog.Logger
}

// NewCourseService creates a new course service.
func NewCourseService(
	courses repository.CourseRepository,
	bootcamps repository.BootcampRepository,
	aggregates AggregateMaintainer,
	producer *event.Producer,
	logger *slog.Logger,
) *CourseService {
	return &CourseService{
		courses:    courses,
		bootcamps:  bootcamps,
		aggregates: aggregates,
		producer:   producer,
		logger:     logger,
	}
}

// CreateCourseInput holds the fields of a new course.
type CreateCourseInput struct {
	Title                string   `json:"title" validate:"required,max=100"`
	Description          string   `json:"description" validate:"required"`
	Weeks                int      `json:"weeks" validate:"required,gt=0"`
	Tuition              *float64 `json:"tuition" validate:"required,gte=0"`
	MinimumSkill         string   `json:"minimum_skill" validate:"required,skill"`
	ScholarshipAvailable bool     `json:"scholarship_available"`
}

// UpdateCourseInput holds a partial course update.
type UpdateCourseInput struct {
	Title                *string  `json:"title" validate:"omitempty,min=1,max=100"`
	Description          *string  `json:"description" validate:"omitempty,min=1"`
	Weeks                *int     `json:"weeks" validate:"omitempty,gt=0"`
	Tuition              *float64 `json:"tuition" validate:"omitempty,gte=0"`
	MinimumSkill         *string  `json:"minimum_skill" validate:"omitempty,skill"`
	ScholarshipAvailable *bool    `json:"scholarship_available"`
}

// List returns one page of courses, optionally restricted to one bootcamp.
// Listing a bootcamp that does not exist is NotFound.
func (s *CourseService) List(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, int, error) {
	if filter.BootcampID != "" {
		if _, err := s.bootcamps.GetByID(ctx, filter.BootcampID); err != nil {
			return nil, 0, fmt.Errorf("get bootcamp: %w", err)
		}
	}
	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	return courses, total, nil
}

// Get returns a single course.
func (s *CourseService) Get(ctx context.Context, id string) (*domain.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

// Create adds a course to a bootcamp the actor owns and refreshes the
// bootcamp's average cost.
func (s *CourseService) Create(ctx context.Context, actor domain.Actor, bootcampID string, input *CreateCourseInput) (*domain.Course, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	b, err := s.bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		return nil, fmt.Errorf("get bootcamp: %w", err)
	}
	if err := policy.Authorize(b.UserID, actor, "bootcamp", bootcampID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &domain.Course{
		ID:                   uuid.New().String(),
		BootcampID:           b.ID,
		UserID:               actor.ID,
		Title:                input.Title,
		Description:          input.Description,
		Weeks:                input.Weeks,
		Tuition:              *input.Tuition,
		MinimumSkill:         input.MinimumSkill,
		ScholarshipAvailable: input.ScholarshipAvailable,
		Bootcamp:             &domain.BootcampSummary{ID: b.ID, Name: b.Name, Description: b.Description},
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.courses.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	s.aggregates.RecomputeAverageCost(ctx, b.ID)

	s.logger.InfoContext(ctx, "course created",
		slog.String("course_id", c.ID),
		slog.String("bootcamp_id", b.ID),
	)
	s.producer.PublishCourseCreated(ctx, c)
	return c, nil
}

// Update changes a course on behalf of its creator or an admin.
func (s *CourseService) Update(ctx context.Context, actor domain.Actor, id string, input *UpdateCourseInput) (*domain.Course, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if err := policy.Authorize(c.UserID, actor, "course", id); err != nil {
		return nil, err
	}

	tuitionChanged := input.Tuition != nil && *input.Tuition != c.Tuition
	if input.Title != nil {
		c.Title = *input.Title
	}
	if input.Description != nil {
		c.Description = *input.Description
	}
	if input.Weeks != nil {
		c.Weeks = *input.Weeks
	}
	if input.Tuition != nil {
		c.Tuition = *input.Tuition
	}
	if input.MinimumSkill != nil {
		c.MinimumSkill = *input.MinimumSkill
	}
	if input.ScholarshipAvailable != nil {
		c.ScholarshipAvailable = *input.ScholarshipAvailable
	}

	if err := s.courses.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	if tuitionChanged {
		s.aggregates.RecomputeAverageCost(ctx, c.BootcampID)
	}
	return c, nil
}

// Delete removes a course on behalf of its creator or an admin and refreshes
// the bootcamp's average cost.
func (s *CourseService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}
	if err := policy.Authorize(c.UserID, actor, "course", id); err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	s.aggregates.RecomputeAverageCost(ctx, c.BootcampID)

	s.logger.InfoContext(ctx, "course deleted",
		slog.String("course_id", id),
		slog.String("bootcamp_id", c.BootcampID),
	)
	s.producer.PublishCourseDeleted(ctx, c)
	return nil
}
