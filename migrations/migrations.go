// Package migrations embeds the SQL schema of the ledger.
package migrations

import "embed"

// FS holds every *.sql migration file.
//
//go:embed *.sql
var FS embed.FS
