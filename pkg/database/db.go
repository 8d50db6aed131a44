package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/utafrali/devcamper/pkg/errors"
)

// DBTX is the query surface shared by *pgxpool.Pool, pgx.Tx and pgxmock pools.
// Repositories depend on it instead of a concrete pool. Begin on a pgx.Tx
// opens a savepoint.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SQLSTATE codes the repositories react to.
const (
	uniqueViolation   = "23505"
	invalidTextFormat = "22P02" // e.g. a malformed UUID literal
)

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
// constraint narrows the match when non-empty.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// WithTimeout bounds a single store call. A zero duration leaves ctx untouched.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// MapError translates driver errors into the application taxonomy: no rows or
// an id that is not a valid key becomes NotFound for resource/id and an
// expired deadline becomes Timeout. Anything else is returned wrapped with op.
func MapError(err error, op, resource, id string) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NotFound(resource, id)
	case errors.As(err, &pgErr) && pgErr.Code == invalidTextFormat && id != "":
		return apperrors.NotFound(resource, id)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(op)
	default:
		return apperrors.Wrap(err, op)
	}
}
