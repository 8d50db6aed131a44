// Package migrations embeds the Postgres schema applied at startup.
package migrations

import "embed"

// FS holds the *.up.sql files applied by database.Migrate.
//
//go:embed *.sql
var FS embed.FS
