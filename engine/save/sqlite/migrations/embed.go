package migrations

import "embed"

// FS contains the embedded save-slot schema.
//
//go:embed *.sql
var FS embed.FS
