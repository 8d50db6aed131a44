package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/pkg/database"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
)

const userColumns = `id, name, email, role, password_hash, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	store
}

// NewUserRepository creates a PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX, timeout time.Duration) *UserRepository {
	return &UserRepository{store{db: db, timeout: timeout}}
}

// Create inserts a new user. Emails are stored lower-cased.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(u.Email)

	query := `
		INSERT INTO users (id, name, email, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, "user.Create", query,
		u.ID, u.Name, u.Email, string(u.Role), u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return database.MapError(err, "insert user", "user", u.ID)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u domain.User
	if err := r.queryRow(ctx, "user.GetByID", query, []any{id}, userDest(&u)...); err != nil {
		return nil, database.MapError(err, "get user", "user", id)
	}
	return &u, nil
}

// GetByEmail retrieves a user by email address, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(email)
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u domain.User
	if err := r.queryRow(ctx, "user.GetByEmail", query, []any{email}, userDest(&u)...); err != nil {
		return nil, database.MapError(err, "get user by email", "user", email)
	}
	return &u, nil
}

// List returns users, optionally narrowed to one role, with the total count.
func (r *UserRepository) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int, error) {
	var w where
	if f.Role != "" {
		w.add("role = %s", f.Role)
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM users
		%s
		ORDER BY created_at DESC
		%s`, userColumns, w.String(), w.page(f.Limit, f.Offset))

	users := []domain.User{}
	var total int
	err := r.query(ctx, "user.List", query, w.args, func(rows pgx.Rows) error {
		var u domain.User
		if err := rows.Scan(append(userDest(&u), &total)...); err != nil {
			return fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, 0, database.MapError(err, "list users", "user", "")
	}
	return users, total, nil
}

// Update writes the name, email and role of a user.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(u.Email)
	u.UpdatedAt = time.Now().UTC()

	query := `UPDATE users SET name = $1, email = $2, role = $3, updated_at = $4 WHERE id = $5`

	ct, err := r.exec(ctx, "user.Update", query, u.Name, u.Email, string(u.Role), u.UpdatedAt, u.ID)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return database.MapError(err, "update user", "user", u.ID)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID)
	}
	return nil
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.exec(ctx, "user.UpdatePassword", query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return database.MapError(err, "update password", "user", id)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

// Delete removes a user by ID.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.exec(ctx, "user.Delete", `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, "delete user", "user", id)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

func userDest(u *domain.User) []any {
	return []any{&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt}
}
