// Package migrations embeds the per-driver schema migration files so the
// migrate command works from any working directory.
package migrations

import "embed"

// FS holds the sqlite and postgresql migration files.
//
//go:embed sqlite/*.sql postgresql/*.sql
var FS embed.FS
