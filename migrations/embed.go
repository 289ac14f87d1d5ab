// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

// FS holds every *.sql migration in golang-migrate naming (NNNNNN_name.up.sql / .down.sql).
//
//go:embed *.sql
var FS embed.FS
