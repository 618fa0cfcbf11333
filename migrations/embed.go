// Package migrations carries the SQL schema files so the binary can migrate
// without the source tree next to it.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
