// Package migrations embeds the SQL schema migrations so the binary can
// bootstrap its own store.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
