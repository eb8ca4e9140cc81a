// Package migrations embeds the SQL schema migrations so binaries can run
// them without a checkout.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql files
//
//go:embed *.sql
var FS embed.FS
