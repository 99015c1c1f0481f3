// Package migrations holds the products API schema.
package migrations

import "embed"

// FS contains the migrations applied by database.RunMigrations.
//
//go:embed *.sql
var FS embed.FS
