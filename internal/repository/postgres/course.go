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

const courseSelect = `
	SELECT c.id, c.bootcamp_id, c.user_id, c.title, c.description, c.weeks, c.tuition,
		c.minimum_skill, c.scholarship_available, c.created_at, c.updated_at,
		b.name, b.description
	FROM courses c
	JOIN bootcamps b ON b.id = c.bootcamp_id`

var courseSorts = map[string]string{
	"title":      "c.title",
	"weeks":      "c.weeks",
	"tuition":    "c.tuition",
	"created_at": "c.created_at",
}

// CourseRepository implements repository.CourseRepository using PostgreSQL.
type CourseRepository struct {
	store
}

// NewCourseRepository creates a PostgreSQL-backed course repository.
func NewCourseRepository(db database.DBTX, timeout time.Duration) *CourseRepository {
	return &CourseRepository{store{db: db, timeout: timeout}}
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	query := `
		INSERT INTO courses (id, bootcamp_id, user_id, title, description, weeks, tuition,
			minimum_skill, scholarship_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.exec(ctx, "course.Create", query,
		c.ID,
		c.BootcampID,
		c.UserID,
		c.Title,
		c.Description,
		c.Weeks,
		c.Tuition,
		c.MinimumSkill,
		c.ScholarshipAvailable,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return database.MapError(err, "insert course", "course", c.ID)
	}
	return nil
}

// GetByID retrieves a course with its bootcamp summary.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	query := courseSelect + ` WHERE c.id = $1`

	c := domain.Course{Bootcamp: &domain.BootcampSummary{}}
	if err := r.queryRow(ctx, "course.GetByID", query, []any{id}, courseDest(&c)...); err != nil {
		return nil, database.MapError(err, "get course", "course", id)
	}
	c.Bootcamp.ID = c.BootcampID
	return &c, nil
}

// List returns courses matching filter along with the total number of matches.
func (r *CourseRepository) List(ctx context.Context, f domain.CourseFilter) ([]domain.Course, int, error) {
	var w where
	if f.BootcampID != "" {
		w.add("c.bootcamp_id = %s", f.BootcampID)
	}
	if f.MinimumSkill != "" {
		w.add("c.minimum_skill = %s", f.MinimumSkill)
	}
	if f.TuitionLTE != nil {
		w.add("c.tuition <= %s", *f.TuitionLTE)
	}

	query := fmt.Sprintf(`%s
		%s
		ORDER BY %s
		%s`,
		withTotal(courseSelect), w.String(), pagination.Sort(f.Sort, courseSorts, "c.created_at DESC"), w.page(f.Limit, f.Offset))

	courses := []domain.Course{}
	var total int
	err := r.query(ctx, "course.List", query, w.args, func(rows pgx.Rows) error {
		c := domain.Course{Bootcamp: &domain.BootcampSummary{}}
		if err := rows.Scan(append(courseDest(&c), &total)...); err != nil {
			return fmt.Errorf("scan course row: %w", err)
		}
		c.Bootcamp.ID = c.BootcampID
		courses = append(courses, c)
		return nil
	})
	if err != nil {
		return nil, 0, database.MapError(err, "list courses", "course", "")
	}
	return courses, total, nil
}

// Update writes the editable fields of a course. The owning bootcamp and creator never change.
func (r *CourseRepository) Update(ctx context.Context, c *domain.Course) error {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE courses
		SET title = $1, description = $2, weeks = $3, tuition = $4, minimum_skill = $5,
			scholarship_available = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.exec(ctx, "course.Update", query,
		c.Title,
		c.Description,
		c.Weeks,
		c.Tuition,
		c.MinimumSkill,
		c.ScholarshipAvailable,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return database.MapError(err, "update course", "course", c.ID)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("course", c.ID)
	}
	return nil
}

// Delete removes a course by its ID.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.exec(ctx, "course.Delete", `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, "delete course", "course", id)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("course", id)
	}
	return nil
}

// BootcampIDsByUser lists the bootcamps userID has added courses to,
// excluding bootcamps the user owns.
func (r *CourseRepository) BootcampIDsByUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT DISTINCT c.bootcamp_id::text
		FROM courses c
		JOIN bootcamps b ON b.id = c.bootcamp_id
		WHERE c.user_id = $1 AND b.user_id <> $1`

	ids, err := r.textColumn(ctx, "course.BootcampIDsByUser", query, userID)
	if err != nil {
		return nil, database.MapError(err, "list course bootcamps", "user", userID)
	}
	return ids, nil
}

// AverageTuition averages tuition over the courses of a bootcamp.
func (r *CourseRepository) AverageTuition(ctx context.Context, bootcampID string) (float64, bool, error) {
	query := `SELECT AVG(tuition)::float8 FROM courses WHERE bootcamp_id = $1`

	avg, ok, err := r.average(ctx, "course.AverageTuition", query, bootcampID)
	if err != nil {
		return 0, false, database.MapError(err, "average tuition", "bootcamp", bootcampID)
	}
	return avg, ok, nil
}

func courseDest(c *domain.Course) []any {
	return []any{
		&c.ID, &c.BootcampID, &c.UserID, &c.Title, &c.Description, &c.Weeks, &c.Tuition,
		&c.MinimumSkill, &c.ScholarshipAvailable, &c.CreatedAt, &c.UpdatedAt,
		&c.Bootcamp.Name, &c.Bootcamp.Description,
	}
}
