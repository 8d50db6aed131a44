// Package seed loads fixture users, bootcamps, courses and reviews into the
// database, and wipes them again.
//
// A data directory holds up to four files: users.json, bootcamps.json,
// courses.json and reviews.json. Missing files are skipped. User records carry
// a plaintext password that is hashed on import. Bootcamps without a location
// are geocoded from their address.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/devcamper/internal/aggregate"
	"github.com/utafrali/devcamper/internal/auth"
	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/geocoder"
	"github.com/utafrali/devcamper/internal/repository/postgres"
	"github.com/utafrali/devcamper/pkg/database"
	"github.com/utafrali/devcamper/pkg/slug"
	"github.com/utafrali/devcamper/pkg/validator"
)

// data holds the bundled fixture set used when no directory is given.
//
//go:embed data/*.json
var data embed.FS

// DefaultData returns the bundled fixtures rooted at their directory.
func DefaultData() fs.FS {
	sub, err := fs.Sub(data, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Fixture file names.
const (
	UsersFile     = "users.json"
	BootcampsFile = "bootcamps.json"
	CoursesFile   = "courses.json"
	ReviewsFile   = "reviews.json"
)

// UserRecord is one entry of users.json.
type UserRecord struct {
	ID       string `json:"id" validate:"required,uuid"`
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"omitempty,role"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// BootcampRecord is one entry of bootcamps.json.
type BootcampRecord struct {
	ID            string           `json:"id" validate:"required,uuid"`
	UserID        string           `json:"user_id" validate:"required,uuid"`
	Name          string           `json:"name" validate:"required,max=50"`
	Description   string           `json:"description" validate:"required,max=500"`
	Website       string           `json:"website" validate:"omitempty,http_url"`
	Phone         string           `json:"phone" validate:"omitempty,max=20"`
	Email         string           `json:"email" validate:"omitempty,email"`
	Address       string           `json:"address" validate:"required"`
	Location      *domain.Location `json:"location"`
	Careers       []string         `json:"careers" validate:"required,min=1,dive,career"`
	Housing       bool             `json:"housing"`
	JobAssistance bool             `json:"job_assistance"`
	JobGuarantee  bool             `json:"job_guarantee"`
	AcceptGI      bool             `json:"accept_gi"`
	Photo         string           `json:"photo"`
}

// CourseRecord is one entry of courses.json.
type CourseRecord struct {
	ID                   string   `json:"id" validate:"required,uuid"`
	BootcampID           string   `json:"bootcamp_id" validate:"required,uuid"`
	UserID               string   `json:"user_id" validate:"required,uuid"`
	Title                string   `json:"title" validate:"required,max=100"`
	Description          string   `json:"description" validate:"required"`
	Weeks                int      `json:"weeks" validate:"required,gt=0"`
	Tuition              *float64 `json:"tuition" validate:"required,gte=0"`
	MinimumSkill         string   `json:"minimum_skill" validate:"required,skill"`
	ScholarshipAvailable bool     `json:"scholarship_available"`
}

// ReviewRecord is one entry of reviews.json.
type ReviewRecord struct {
	ID         string `json:"id" validate:"required,uuid"`
	BootcampID string `json:"bootcamp_id" validate:"required,uuid"`
	UserID     string `json:"user_id" validate:"required,uuid"`
	Title      string `json:"title" validate:"required,max=100"`
	Text       string `json:"text" validate:"required"`
	Rating     int    `json:"rating" validate:"required,gte=1,lte=10"`
}

// Summary counts the rows written by Import or removed by Destroy.
type Summary struct {
	Users     int
	Bootcamps int
	Courses   int
	Reviews   int
}

// Seeder imports and destroys fixture data.
type Seeder struct {
	db       database.DBTX
	geocoder geocoder.Geocoder
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Seeder. geo may be nil when every bootcamp record carries a
// location. timeout bounds each statement.
func New(db database.DBTX, geo geocoder.Geocoder, timeout time.Duration, logger *slog.Logger) *Seeder {
	return &Seeder{
		db:       db,
		geocoder: geo,
		timeout:  timeout,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type fixtures struct {
	users     []domain.User
	bootcamps []domain.Bootcamp
	courses   []domain.Course
	reviews   []domain.Review
}

// Import writes every record from fsys in one transaction, then recomputes the
// average cost and rating of each imported bootcamp.
func (s *Seeder) Import(ctx context.Context, fsys fs.FS) (Summary, error) {
	fx, err := s.load(ctx, fsys)
	if err != nil {
		return Summary{}, err
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		users := postgres.NewUserRepository(tx, s.timeout)
		bootcamps := postgres.NewBootcampRepository(tx, s.timeout)
		courses := postgres.NewCourseRepository(tx, s.timeout)
		reviews := postgres.NewReviewRepository(tx, s.timeout)

		for i := range fx.users {
			if err := users.Create(ctx, &fx.users[i]); err != nil {
				return fmt.Errorf("import user %s: %w", fx.users[i].Email, err)
			}
		}
		for i := range fx.bootcamps {
			if err := bootcamps.Create(ctx, &fx.bootcamps[i]); err != nil {
				return fmt.Errorf("import bootcamp %q: %w", fx.bootcamps[i].Name, err)
			}
		}
		for i := range fx.courses {
			if err := courses.Create(ctx, &fx.courses[i]); err != nil {
				return fmt.Errorf("import course %q: %w", fx.courses[i].Title, err)
			}
		}
		for i := range fx.reviews {
			if err := reviews.Create(ctx, &fx.reviews[i]); err != nil {
				return fmt.Errorf("import review %q: %w", fx.reviews[i].Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	maintainer := aggregate.NewMaintainer(
		postgres.NewCourseRepository(s.db, s.timeout),
		postgres.NewReviewRepository(s.db, s.timeout),
		postgres.NewBootcampRepository(s.db, s.timeout),
	)
	for _, b := range fx.bootcamps {
		maintainer.RecomputeAverageCost(ctx, b.ID)
		maintainer.RecomputeAverageRating(ctx, b.ID)
	}

	sum := Summary{
		Users:     len(fx.users),
		Bootcamps: len(fx.bootcamps),
		Courses:   len(fx.courses),
		Reviews:   len(fx.reviews),
	}
	s.logger.InfoContext(ctx, "data imported",
		slog.Int("users", sum.Users),
		slog.Int("bootcamps", sum.Bootcamps),
		slog.Int("courses", sum.Courses),
		slog.Int("reviews", sum.Reviews),
	)
	return sum, nil
}

// Destroy removes all reviews, courses, bootcamps and users.
func (s *Seeder) Destroy(ctx context.Context) (Summary, error) {
	var sum Summary
	tables := []struct {
		name string
		n    *int
	}{
		{"reviews", &sum.Reviews},
		{"courses", &sum.Courses},
		{"bootcamps", &sum.Bootcamps},
		{"users", &sum.Users},
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		for _, t := range tables {
			ctx, cancel := database.WithTimeout(ctx, s.timeout)
			tag, err := tx.Exec(ctx, "DELETE FROM "+t.name)
			cancel()
			if err != nil {
				return fmt.Errorf("delete %s: %w", t.name, err)
			}
			*t.n = int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	s.logger.InfoContext(ctx, "data destroyed",
		slog.Int("users", sum.Users),
		slog.Int("bootcamps", sum.Bootcamps),
		slog.Int("courses", sum.Courses),
		slog.Int("reviews", sum.Reviews),
	)
	return sum, nil
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *Seeder) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	return nil
}

// load reads, validates and converts every fixture file before anything is written.
func (s *Seeder) load(ctx context.Context, fsys fs.FS) (*fixtures, error) {
	var (
		userRecs     []UserRecord
		bootcampRecs []BootcampRecord
		courseRecs   []CourseRecord
		reviewRecs   []ReviewRecord
	)
	if err := readFile(fsys, UsersFile, &userRecs); err != nil {
		return nil, err
	}
	if err := readFile(fsys, BootcampsFile, &bootcampRecs); err != nil {
		return nil, err
	}
	if err := readFile(fsys, CoursesFile, &courseRecs); err != nil {
		return nil, err
	}
	if err := readFile(fsys, ReviewsFile, &reviewRecs); err != nil {
		return nil, err
	}

	now := s.now()
	fx := &fixtures{}

	for i, rec := range userRecs {
		if err := validator.Validate(&rec); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", UsersFile, i, err)
		}
		hash, err := auth.HashPassword(rec.Password)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", UsersFile, i, err)
		}
		role := domain.Role(rec.Role)
		if role == "" {
			role = domain.RoleUser
		}
		fx.users = append(fx.users, domain.User{
			ID:           rec.ID,
			Name:         rec.Name,
			Email:        rec.Email,
			Role:         role,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	for i, rec := range bootcampRecs {
		if err := validator.Validate(&rec); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", BootcampsFile, i, err)
		}
		loc := rec.Location
		if loc == nil {
			if s.geocoder == nil {
				return nil, fmt.Errorf("%s[%d]: bootcamp %q has no location and no geocoder is configured", BootcampsFile, i, rec.Name)
			}
			var err error
			if loc, err = s.geocoder.Geocode(ctx, rec.Address); err != nil {
				return nil, fmt.Errorf("%s[%d]: geocode %q: %w", BootcampsFile, i, rec.Address, err)
			}
		}
		photo := rec.Photo
		if photo == "" {
			photo = domain.DefaultPhoto
		}
		fx.bootcamps = append(fx.bootcamps, domain.Bootcamp{
			ID:            rec.ID,
			UserID:        rec.UserID,
			Name:          rec.Name,
			Slug:          slug.Generate(rec.Name),
			Description:   rec.Description,
			Website:       rec.Website,
			Phone:         rec.Phone,
			Email:         rec.Email,
			Address:       rec.Address,
			Location:      loc,
			Careers:       rec.Careers,
			Housing:       rec.Housing,
			JobAssistance: rec.JobAssistance,
			JobGuarantee:  rec.JobGuarantee,
			AcceptGI:      rec.AcceptGI,
			Photo:         photo,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	for i, rec := range courseRecs {
		if err := validator.Validate(&rec); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", CoursesFile, i, err)
		}
		fx.courses = append(fx.courses, domain.Course{
			ID:                   rec.ID,
			BootcampID:           rec.BootcampID,
			UserID:               rec.UserID,
			Title:                rec.Title,
			Description:          rec.Description,
			Weeks:                rec.Weeks,
			Tuition:              *rec.Tuition,
			MinimumSkill:         rec.MinimumSkill,
			ScholarshipAvailable: rec.ScholarshipAvailable,
			CreatedAt:            now,
			UpdatedAt:            now,
		})
	}

	for i, rec := range reviewRecs {
		if err := validator.Validate(&rec); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", ReviewsFile, i, err)
		}
		fx.reviews = append(fx.reviews, domain.Review{
			ID:         rec.ID,
			BootcampID: rec.BootcampID,
			UserID:     rec.UserID,
			Title:      rec.Title,
			Text:       rec.Text,
			Rating:     rec.Rating,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	return fx, nil
}

// readFile decodes a JSON array from name. A missing file leaves dst empty.
func readFile(fsys fs.FS, name string, dst any) error {
	raw, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
