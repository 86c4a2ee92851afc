// Package migrations holds the embedded SQL schema for goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
