// Package migrations holds the catalog schema applied by cmd/migrate.
package migrations

import "embed"

// FS contains the *.up.sql and *.down.sql schema files.
//
//go:embed *.sql
var FS embed.FS

// Schema file names in application order.
const (
	CreateSchemaUp   = "001_create_schema.up.sql"
	CreateSchemaDown = "001_create_schema.down.sql"
)
