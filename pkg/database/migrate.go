package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// connErrorHints are substrings of transient network failures.
var connErrorHints = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"i/o timeout",
	"dial tcp",
	"server closed the connection unexpectedly",
}

func isConnectionError(err error) bool {
	msg := err.Error()
	for _, h := range connErrorHints {
		if strings.Contains(msg, h) {
			return true
		}
	}
	return false
}

// Migrate applies every *.up.sql file at the root of migrations in lexical
// order. Applied versions are tracked in schema_migrations, and each file runs
// in its own transaction. Only connection failures are retried.
func Migrate(ctx context.Context, db DBTX, migrations fs.FS, log *slog.Logger) error {
	return retry(ctx, "run migrations", log, isConnectionError, func() error {
		return migrateOnce(ctx, db, migrations, log)
	})
}

func migrateOnce(ctx context.Context, db DBTX, migrations fs.FS, log *slog.Logger) error {
	if _, err := db.Exec(ctx, migrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := fs.Glob(migrations, "*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		var applied bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, name,
		).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			continue
		}

		body, err := fs.ReadFile(migrations, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, string(body)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}

		if log != nil {
			log.InfoContext(ctx, "migration applied", slog.String("version", name))
		}
	}
	return nil
}
