package repository

import (
	"context"

	"github.com/utafrali/devcamper/internal/domain"
)

// BootcampRepository defines persistence operations for bootcamps.
type BootcampRepository interface {
	// Create inserts a new bootcamp. A duplicate name yields an AlreadyExists error.
	Create(ctx context.Context, b *domain.Bootcamp) error

	// CreateSole inserts b only if its owner has no bootcamp yet. The check and
	// the insert are atomic per owner; created is false when one exists.
	CreateSole(ctx context.Context, b *domain.Bootcamp) (created bool, err error)

	// GetByID retrieves a bootcamp by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Bootcamp, error)

	// List returns bootcamps matching the filter and the total match count.
	List(ctx context.Context, filter domain.BootcampFilter) ([]domain.Bootcamp, int, error)

	// Update writes the editable fields of a bootcamp. Derived averages are not touched.
	Update(ctx context.Context, b *domain.Bootcamp) error

	// Delete removes a bootcamp by its identifier.
	Delete(ctx context.Context, id string) error

	// ExistsByUser reports whether userID already owns a bootcamp.
	ExistsByUser(ctx context.Context, userID string) (bool, error)

	// WithinRadius returns bootcamps whose location lies within radians of the
	// given point, measured as a great-circle angle.
	WithinRadius(ctx context.Context, lat, lng, radians float64) ([]domain.Bootcamp, error)

	// SetPhoto records the stored photo name of a bootcamp.
	SetPhoto(ctx context.Context, id, photo string) error

	// SetAverageCost and SetAverageRating write derived values. Nil clears the field.
	SetAverageCost(ctx context.Context, id string, cost *float64) error
	SetAverageRating(ctx context.Context, id string, rating *float64) error
}

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	Create(ctx context.Context, c *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, int, error)
	Update(ctx context.Context, c *domain.Course) error
	Delete(ctx context.Context, id string) error

	// BootcampIDsByUser lists bootcamps, not owned by userID, that hold a
	// course written by userID.
	BootcampIDsByUser(ctx context.Context, userID string) ([]string, error)

	// AverageTuition averages tuition over a bootcamp's courses. ok is false
	// when the bootcamp has none.
	AverageTuition(ctx context.Context, bootcampID string) (avg float64, ok bool, err error)
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	// Create inserts a review. A second review of the same bootcamp by the same
	// user yields an InvalidInput error.
	Create(ctx context.Context, r *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error)
	Update(ctx context.Context, r *domain.Review) error
	Delete(ctx context.Context, id string) error

	// ExistsForUser reports whether userID has already reviewed bootcampID.
	ExistsForUser(ctx context.Context, bootcampID, userID string) (bool, error)

	// BootcampIDsByUser lists bootcamps, not owned by userID, that userID has reviewed.
	BootcampIDsByUser(ctx context.Context, userID string) ([]string, error)

	// AverageRating averages ratings over a bootcamp's reviews. ok is false
	// when the bootcamp has none.
	AverageRating(ctx context.Context, bootcampID string) (avg float64, ok bool, err error)
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error)
	Update(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}
