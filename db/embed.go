// Package db provides the embedded catalogue schema.
package db

import _ "embed"

// Schema contains the DDL statements for all tables.
//
//go:embed migrations/001_schema.sql
var Schema string
