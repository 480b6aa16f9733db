// AngelaMos | 2026
// migrations.go

package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
