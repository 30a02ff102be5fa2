// Package migrations embeds the SQL schema applied at startup.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS

// Initial is the name of the schema migration.
const Initial = "001_initial_schema.up.sql"
