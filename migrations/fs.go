// Package migrations embeds the SQL migration files for the admin backend.
package migrations

import "embed"

// FS contains all migration files, applied in lexicographic order.
//
//go:embed *.sql
var FS embed.FS
