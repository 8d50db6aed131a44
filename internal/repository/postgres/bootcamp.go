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

const bootcampColumns = `b.id, b.user_id, b.name, b.slug, b.description, b.website, b.phone, b.email, b.address,
	b.latitude, b.longitude, b.formatted_address, b.street, b.city, b.state, b.zipcode, b.country,
	b.careers, b.housing, b.job_assistance, b.job_guarantee, b.accept_gi, b.photo,
	b.average_cost, b.average_rating, b.created_at, b.updated_at`

var bootcampSorts = map[string]string{
	"name":           "b.name",
	"created_at":     "b.created_at",
	"average_cost":   "b.average_cost",
	"average_rating": "b.average_rating",
}

// BootcampRepository implements repository.BootcampRepository using PostgreSQL.
type BootcampRepository struct {
	store
}

// NewBootcampRepository creates a PostgreSQL-backed bootcamp repository.
// Every statement is bounded by timeout.
func NewBootcampRepository(db database.DBTX, timeout time.Duration) *BootcampRepository {
	return &BootcampRepository{store{db: db, timeout: timeout}}
}

// Create inserts a new bootcamp.
func (r *BootcampRepository) Create(ctx context.Context, b *domain.Bootcamp) error {
	query := `
		INSERT INTO bootcamps (id, user_id, name, slug, description, website, phone, email, address,
			latitude, longitude, formatted_address, street, city, state, zipcode, country,
			careers, housing, job_assistance, job_guarantee, accept_gi, photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25)`

	args := append([]any{b.ID, b.UserID, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email, b.Address},
		locationArgs(b.Location)...)
	args = append(args, b.Careers, b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGI, b.Photo, b.CreatedAt, b.UpdatedAt)

	if _, err := r.exec(ctx, "bootcamp.Create", query, args...); err != nil {
		if database.IsUniqueViolation(err, "bootcamps_name_key") {
			return apperrors.AlreadyExists("bootcamp", "name", b.Name)
		}
		return database.MapError(err, "insert bootcamp", "bootcamp", b.ID)
	}
	return nil
}

// CreateSole inserts b unless its owner already has a bootcamp. The owner's
// user row is locked for the check and the insert, so concurrent calls for
// one owner run one after another and at most one of them inserts.
func (r *BootcampRepository) CreateSole(ctx context.Context, b *domain.Bootcamp) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, database.MapError(err, "begin bootcamp insert", "bootcamp", b.ID)
	}

	created, err := (&BootcampRepository{store{db: tx, timeout: r.timeout}}).createSole(ctx, b)
	if err != nil || !created {
		_ = tx.Rollback(ctx)
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, database.MapError(err, "commit bootcamp insert", "bootcamp", b.ID)
	}
	return true, nil
}

func (r *BootcampRepository) createSole(ctx context.Context, b *domain.Bootcamp) (bool, error) {
	var owner string
	query := `SELECT id::text FROM users WHERE id = $1 FOR UPDATE`
	if err := r.queryRow(ctx, "bootcamp.LockOwner", query, []any{b.UserID}, &owner); err != nil {
		return false, database.MapError(err, "lock bootcamp owner", "user", b.UserID)
	}

	exists, err := r.ExistsByUser(ctx, b.UserID)
	if err != nil || exists {
		return false, err
	}
	if err := r.Create(ctx, b); err != nil {
		return false, err
	}
	return true, nil
}

// GetByID retrieves a bootcamp by its ID.
func (r *BootcampRepository) GetByID(ctx context.Context, id string) (*domain.Bootcamp, error) {
	query := `SELECT ` + bootcampColumns + ` FROM bootcamps b WHERE b.id = $1`

	var b domain.Bootcamp
	sc := &bootcampScan{b: &b}
	if err := r.queryRow(ctx, "bootcamp.GetByID", query, []any{id}, sc.dest()...); err != nil {
		return nil, database.MapError(err, "get bootcamp", "bootcamp", id)
	}
	sc.finish()
	return &b, nil
}

// List returns bootcamps matching filter along with the total number of matches.
func (r *BootcampRepository) List(ctx context.Context, f domain.BootcampFilter) ([]domain.Bootcamp, int, error) {
	var w where
	if len(f.Careers) > 0 {
		w.add("b.careers && %s", f.Careers)
	}
	if f.Housing != nil {
		w.add("b.housing = %s", *f.Housing)
	}
	if f.JobAssistance != nil {
		w.add("b.job_assistance = %s", *f.JobAssistance)
	}
	if f.JobGuarantee != nil {
		w.add("b.job_guarantee = %s", *f.JobGuarantee)
	}
	if f.AcceptGI != nil {
		w.add("b.accept_gi = %s", *f.AcceptGI)
	}
	if f.AverageCostLTE != nil {
		w.add("b.average_cost <= %s", *f.AverageCostLTE)
	}
	if f.AverageRatingGTE != nil {
		w.add("b.average_rating >= %s", *f.AverageRatingGTE)
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM bootcamps b
		%s
		ORDER BY %s
		%s`,
		bootcampColumns, w.String(), pagination.Sort(f.Sort, bootcampSorts, "b.created_at DESC"), w.page(f.Limit, f.Offset))

	bootcamps := []domain.Bootcamp{}
	var total int
	err := r.query(ctx, "bootcamp.List", query, w.args, func(rows pgx.Rows) error {
		var b domain.Bootcamp
		sc := &bootcampScan{b: &b}
		if err := rows.Scan(sc.dest(&total)...); err != nil {
			return fmt.Errorf("scan bootcamp row: %w", err)
		}
		sc.finish()
		bootcamps = append(bootcamps, b)
		return nil
	})
	if err != nil {
		return nil, 0, database.MapError(err, "list bootcamps", "bootcamp", "")
	}
	return bootcamps, total, nil
}

// Update writes the editable fields of a bootcamp.
func (r *BootcampRepository) Update(ctx context.Context, b *domain.Bootcamp) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE bootcamps
		SET name = $1, slug = $2, description = $3, website = $4, phone = $5, email = $6, address = $7,
			latitude = $8, longitude = $9, formatted_address = $10, street = $11, city = $12, state = $13,
			zipcode = $14, country = $15, careers = $16, housing = $17, job_assistance = $18,
			job_guarantee = $19, accept_gi = $20, updated_at = $21
		WHERE id = $22`

	args := append([]any{b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email, b.Address},
		locationArgs(b.Location)...)
	args = append(args, b.Careers, b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGI, b.UpdatedAt, b.ID)

	ct, err := r.exec(ctx, "bootcamp.Update", query, args...)
	if err != nil {
		if database.IsUniqueViolation(err, "bootcamps_name_key") {
			return apperrors.AlreadyExists("bootcamp", "name", b.Name)
		}
		return database.MapError(err, "update bootcamp", "bootcamp", b.ID)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("bootcamp", b.ID)
	}
	return nil
}

// Delete removes a bootcamp by its ID.
func (r *BootcampRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "bootcamp.Delete", "delete bootcamp", id, `DELETE FROM bootcamps WHERE id = $1`, id)
}

// ExistsByUser reports whether userID already owns a bootcamp.
func (r *BootcampRepository) ExistsByUser(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bootcamps WHERE user_id = $1)`

	var exists bool
	if err := r.queryRow(ctx, "bootcamp.ExistsByUser", query, []any{userID}, &exists); err != nil {
		return false, database.MapError(err, "check bootcamp owner", "user", userID)
	}
	return exists, nil
}

// WithinRadius returns bootcamps whose great-circle angle to (lat, lng) is at most radians.
func (r *BootcampRepository) WithinRadius(ctx context.Context, lat, lng, radians float64) ([]domain.Bootcamp, error) {
	query := `
		SELECT ` + bootcampColumns + `
		FROM bootcamps b
		WHERE b.latitude IS NOT NULL AND b.longitude IS NOT NULL
		  AND acos(LEAST(1.0, GREATEST(-1.0,
				sin(radians($1)) * sin(radians(b.latitude)) +
				cos(radians($1)) * cos(radians(b.latitude)) * cos(radians(b.longitude) - radians($2))
			))) <= $3
		ORDER BY b.name ASC`

	bootcamps := []domain.Bootcamp{}
	err := r.query(ctx, "bootcamp.WithinRadius", query, []any{lat, lng, radians}, func(rows pgx.Rows) error {
		var b domain.Bootcamp
		sc := &bootcampScan{b: &b}
		if err := rows.Scan(sc.dest()...); err != nil {
			return fmt.Errorf("scan bootcamp row: %w", err)
		}
		sc.finish()
		bootcamps = append(bootcamps, b)
		return nil
	})
	if err != nil {
		return nil, database.MapError(err, "search bootcamps by radius", "bootcamp", "")
	}
	return bootcamps, nil
}

// SetPhoto records the stored photo name of a bootcamp.
func (r *BootcampRepository) SetPhoto(ctx context.Context, id, photo string) error {
	query := `UPDATE bootcamps SET photo = $1, updated_at = $2 WHERE id = $3`
	return r.execOne(ctx, "bootcamp.SetPhoto", "set bootcamp photo", id, query, photo, time.Now().UTC(), id)
}

// SetAverageCost writes the derived average cost. Nil stores NULL.
func (r *BootcampRepository) SetAverageCost(ctx context.Context, id string, cost *float64) error {
	query := `UPDATE bootcamps SET average_cost = $1 WHERE id = $2`
	return r.execOne(ctx, "bootcamp.SetAverageCost", "set average cost", id, query, cost, id)
}

// SetAverageRating writes the derived average rating. Nil stores NULL.
func (r *BootcampRepository) SetAverageRating(ctx context.Context, id string, rating *float64) error {
	query := `UPDATE bootcamps SET average_rating = $1 WHERE id = $2`
	return r.execOne(ctx, "bootcamp.SetAverageRating", "set average rating", id, query, rating, id)
}

// execOne runs a statement that must touch the bootcamp identified by id.
func (r *BootcampRepository) execOne(ctx context.Context, op, desc, id, query string, args ...any) error {
	ct, err := r.exec(ctx, op, query, args...)
	if err != nil {
		return database.MapError(err, desc, "bootcamp", id)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("bootcamp", id)
	}
	return nil
}

// bootcampScan collects a bootcamp row, holding the nullable geo columns
// until they can be folded into a Location.
type bootcampScan struct {
	b        *domain.Bootcamp
	lat, lng *float64
	loc      domain.Location
}

func (s *bootcampScan) dest(extra ...any) []any {
	b := s.b
	return append([]any{
		&b.ID, &b.UserID, &b.Name, &b.Slug, &b.Description, &b.Website, &b.Phone, &b.Email, &b.Address,
		&s.lat, &s.lng, &s.loc.FormattedAddress, &s.loc.Street, &s.loc.City, &s.loc.State, &s.loc.Zipcode, &s.loc.Country,
		&b.Careers, &b.Housing, &b.JobAssistance, &b.JobGuarantee, &b.AcceptGI, &b.Photo,
		&b.AverageCost, &b.AverageRating, &b.CreatedAt, &b.UpdatedAt,
	}, extra...)
}

// finish sets Location only for geocoded rows.
func (s *bootcampScan) finish() {
	if s.lat == nil || s.lng == nil {
		s.b.Location = nil
		return
	}
	loc := s.loc
	loc.Latitude, loc.Longitude = *s.lat, *s.lng
	s.b.Location = &loc
}

// locationArgs expands a Location into the eight geo column values. A nil
// location stores NULL coordinates and empty address parts.
func locationArgs(l *domain.Location) []any {
	if l == nil {
		return []any{nil, nil, "", "", "", "", "", ""}
	}
	return []any{l.Latitude, l.Longitude, l.FormattedAddress, l.Street, l.City, l.State, l.Zipcode, l.Country}
}
