// Package migrations embeds the goose SQL migrations for the server, the
// migrate CLI and integration tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
