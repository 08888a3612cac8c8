// Package migrations embeds the schema of the SQL key-value backends.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
