package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/pkg/database"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
	"github.com/utafrali/devcamper/pkg/pagination"
)

const reviewSelect = `
	SELECT r.id, r.bootcamp_id, r.user_id, r.title, r.text, r.rating, r.created_at, r.updated_at,
		b.name, b.description
	FROM reviews r
	JOIN bootcamps b ON b.id = r.bootcamp_id`

var reviewSorts = map[string]string{
	"rating":     "r.rating",
	"title":      "r.title",
	"created_at": "r.created_at",
}

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	store
}

// NewReviewRepository creates a PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX, timeout time.Duration) *ReviewRepository {
	return &ReviewRepository{store{db: db, timeout: timeout}}
}

// Create inserts a new review. The (bootcamp_id, user_id) unique key rejects a second review.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (id, bootcamp_id, user_id, title, text, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, "review.Create", query,
		rv.ID,
		rv.BootcampID,
		rv.UserID,
		rv.Title,
		rv.Text,
		rv.Rating,
		rv.CreatedAt,
		rv.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "reviews_bootcamp_user_key") {
			return apperrors.InvalidInput(domain.DuplicateReviewMessage)
		}
		return database.MapError(err, "insert review", "review", rv.ID)
	}
	return nil
}

// GetByID retrieves a review with its bootcamp summary.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := reviewSelect + ` WHERE r.id = $1`

	rv := domain.Review{Bootcamp: &domain.BootcampSummary{}}
	if err := r.queryRow(ctx, "review.GetByID", query, []any{id}, reviewDest(&rv)...); err != nil {
		return nil, database.MapError(err, "get review", "review", id)
	}
	rv.Bootcamp.ID = rv.BootcampID
	return &rv, nil
}

// List returns reviews matching filter along with the total number of matches.
func (r *ReviewRepository) List(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, int, error) {
	var w where
	if f.BootcampID != "" {
		w.add("r.bootcamp_id = %s", f.BootcampID)
	}
	if f.UserID != "" {
		w.add("r.user_id = %s", f.UserID)
	}
	if f.RatingGTE > 0 {
		w.add("r.rating >= %s", f.RatingGTE)
	}

	query := fmt.Sprintf(`%s
		%s
		ORDER BY %s
		%s`,
		withTotal(reviewSelect), w.String(), pagination.Sort(f.Sort, reviewSorts, "r.created_at DESC"), w.page(f.Limit, f.Offset))

	reviews := []domain.Review{}
	var total int
	err := r.query(ctx, "review.List", query, w.args, func(rows pgx.Rows) error {
		rv := domain.Review{Bootcamp: &domain.BootcampSummary{}}
		if err := rows.Scan(append(reviewDest(&rv), &total)...); err != nil {
			return fmt.Errorf("scan review row: %w", err)
		}
		rv.Bootcamp.ID = rv.BootcampID
		reviews = append(reviews, rv)
		return nil
	})
	if err != nil {
		return nil, 0, database.MapError(err, "list reviews", "review", "")
	}
	return reviews, total, nil
}

// Update writes the title, text and rating of a review.
func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	rv.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE reviews
		SET title = $1, text = $2, rating = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.exec(ctx, "review.Update", query, rv.Title, rv.Text, rv.Rating, rv.UpdatedAt, rv.ID)
	if err != nil {
		return database.MapError(err, "update review", "review", rv.ID)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", rv.ID)
	}
	return nil
}

// Delete removes a review by its ID.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.exec(ctx, "review.Delete", `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, "delete review", "review", id)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

// ExistsForUser reports whether userID has already reviewed bootcampID.
func (r *ReviewRepository) ExistsForUser(ctx context.Context, bootcampID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE bootcamp_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.queryRow(ctx, "review.ExistsForUser", query, []any{bootcampID, userID}, &exists); err != nil {
		return false, database.MapError(err, "check existing review", "review", "")
	}
	return exists, nil
}

// BootcampIDsByUser lists the bootcamps userID has reviewed, excluding
// bootcamps the user owns.
func (r *ReviewRepository) BootcampIDsByUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT DISTINCT r.bootcamp_id::text
		FROM reviews r
		JOIN bootcamps b ON b.id = r.bootcamp_id
		WHERE r.user_id = $1 AND b.user_id <> $1`

	ids, err := r.textColumn(ctx, "review.BootcampIDsByUser", query, userID)
	if err != nil {
		return nil, database.MapError(err, "list reviewed bootcamps", "user", userID)
	}
	return ids, nil
}

// AverageRating averages the ratings of a bootcamp's reviews.
func (r *ReviewRepository) AverageRating(ctx context.Context, bootcampID string) (float64, bool, error) {
	query := `SELECT AVG(rating)::float8 FROM reviews WHERE bootcamp_id = $1`

	avg, ok, err := r.average(ctx, "review.AverageRating", query, bootcampID)
	if err != nil {
		return 0, false, database.MapError(err, "average rating", "bootcamp", bootcampID)
	}
	return avg, ok, nil
}

func reviewDest(rv *domain.Review) []any {
	return []any{
		&rv.ID, &rv.BootcampID, &rv.UserID, &rv.Title, &rv.Text, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt,
		&rv.Bootcamp.Name, &rv.Bootcamp.Description,
	}
}
