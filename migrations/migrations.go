// Package migrations embeds the SQL schema migrations for the review service.
package migrations

import "embed"

// FS holds all .up.sql migration files, applied in sorted filename order.
//
//go:embed *.sql
var FS embed.FS
