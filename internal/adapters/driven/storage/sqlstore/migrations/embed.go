// Package migrations embeds SQL migration files for the SQL store.
// Each dialect has its own subdirectory. {{prefix}} in a file is replaced
// with the WordPress table prefix before execution.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed mysql/*.sql sqlite/*.sql postgres/*.sql
var FS embed.FS
