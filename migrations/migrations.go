// Package migrations embeds the SQL migrations applied at startup.
package migrations

import "embed"

// FS holds the up and down migrations in golang-migrate naming.
//
//go:embed *.sql
var FS embed.FS
