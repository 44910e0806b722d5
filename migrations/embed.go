// Package migrations embeds the SQL schema files applied by database.Migrate.
package migrations

import "embed"

// FS holds every *.sql file in this directory at its root.
//
//go:embed *.sql
var FS embed.FS
