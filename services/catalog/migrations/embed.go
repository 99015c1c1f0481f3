// Package migrations holds the catalog schema.
package migrations

import "embed"

// FS contains the *.up.sql and *.down.sql files applied by
// database.RunMigrations.
//
//go:embed *.sql
var FS embed.FS
