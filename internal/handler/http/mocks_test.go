package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/repository"
)

// Ensure interfaces are satisfied at compile time.
var (
	_ repository.BootcampRepository = (*mockBootcampRepository)(nil)
	_ repository.CourseRepository   = (*mockCourseRepository)(nil)
	_ repository.ReviewRepository   = (*mockReviewRepository)(nil)
	_ repository.UserRepository     = (*mockUserRepository)(nil)
)

// --- Mock Repositories ---

type mockBootcampRepository struct {
	mock.Mock
}

func (m *mockBootcampRepository) Create(ctx context.Context, b *domain.Bootcamp) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockBootcampRepository) CreateSole(ctx context.Context, b *domain.Bootcamp) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

func (m *mockBootcampRepository) GetByID(ctx context.Context, id string) (*domain.Bootcamp, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bootcamp), args.Error(1)
}

func (m *mockBootcampRepository) List(ctx context.Context, filter domain.BootcampFilter) ([]domain.Bootcamp, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Bootcamp), args.Int(1), args.Error(2)
}

func (m *mockBootcampRepository) Update(ctx context.Context, b *domain.Bootcamp) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockBootcampRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBootcampRepository) ExistsByUser(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBootcampRepository) WithinRadius(ctx context.Context, lat, lng, radians float64) ([]domain.Bootcamp, error) {
	args := m.Called(ctx, lat, lng, radians)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bootcamp), args.Error(1)
}

func (m *mockBootcampRepository) SetPhoto(ctx context.Context, id, photo string) error {
	args := m.Called(ctx, id, photo)
	return args.Error(0)
}

func (m *mockBootcampRepository) SetAverageCost(ctx context.Context, id string, cost *float64) error {
	args := m.Called(ctx, id, cost)
	return args.Error(0)
}

func (m *mockBootcampRepository) SetAverageRating(ctx context.Context, id string, rating *float64) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

type mockCourseRepository struct {
	mock.Mock
}

func (m *mockCourseRepository) Create(ctx context.Context, c *domain.Course) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *mockCourseRepository) List(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Course), args.Int(1), args.Error(2)
}

func (m *mockCourseRepository) Update(ctx context.Context, c *domain.Course) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCourseRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCourseRepository) BootcampIDsByUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCourseRepository) AverageTuition(ctx context.Context, bootcampID string) (float64, bool, error) {
	args := m.Called(ctx, bootcampID)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) Update(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReviewRepository) ExistsForUser(ctx context.Context, bootcampID, userID string) (bool, error) {
	args := m.Called(ctx, bootcampID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepository) BootcampIDsByUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockReviewRepository) AverageRating(ctx context.Context, bootcampID string) (float64, bool, error) {
	args := m.Called(ctx, bootcampID)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepository) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Aggregate Maintainer ---

type mockMaintainer struct {
	mock.Mock
}

func (m *mockMaintainer) RecomputeAverageCost(ctx context.Context, bootcampID string) {
	m.Called(ctx, bootcampID)
}

func (m *mockMaintainer) RecomputeAverageRating(ctx context.Context, bootcampID string) {
	m.Called(ctx, bootcampID)
}
