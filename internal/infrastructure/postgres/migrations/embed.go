// Package migrations embeds the SQL schema migrations goose applies at
// startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
