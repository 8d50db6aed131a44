// Package postgres implements the repository interfaces on PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/utafrali/devcamper/pkg/database"
)

// store carries the connection and per-statement timeout shared by every repository.
type store struct {
	db      database.DBTX
	timeout time.Duration
}

func (s store) exec(ctx context.Context, op, query string, args ...any) (pgconn.CommandTag, error) {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, end := database.TraceQuery(ctx, op, query)
	tag, err := s.db.Exec(ctx, query, args...)
	end(err)
	return tag, err
}

func (s store) queryRow(ctx context.Context, op, query string, args []any, dest ...any) error {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, end := database.TraceQuery(ctx, op, query)
	err := s.db.QueryRow(ctx, query, args...).Scan(dest...)
	end(err)
	return err
}

// query runs a statement and hands every row to each. Rows are closed before it returns.
func (s store) query(ctx context.Context, op, query string, args []any, each func(pgx.Rows) error) (err error) {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// average runs a single AVG() query. ok is false when the aggregate is NULL.
func (s store) average(ctx context.Context, op, query string, args ...any) (float64, bool, error) {
	var avg *float64
	if err := s.queryRow(ctx, op, query, args, &avg); err != nil {
		return 0, false, err
	}
	if avg == nil {
		return 0, false, nil
	}
	return *avg, true, nil
}

// textColumn collects the single text column of every row.
func (s store) textColumn(ctx context.Context, op, query string, args ...any) ([]string, error) {
	out := []string{}
	err := s.query(ctx, op, query, args, func(rows pgx.Rows) error {
		var v string
		if err := rows.Scan(&v); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

// where accumulates SQL predicates and their positional arguments.
type where struct {
	clauses []string
	args    []any
}

// add appends a predicate. Each %s in clause is replaced by the next placeholder.
func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT and OFFSET placeholders. A non-positive limit means no limit.
func (w *where) page(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	w.args = append(w.args, limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

// withTotal adds a window count column to a "SELECT ... FROM" statement.
func withTotal(selectFrom string) string {
	return strings.Replace(selectFrom, "\n\tFROM ", ",\n\t\tcount(*) OVER() AS total_count\n\tFROM ", 1)
}
