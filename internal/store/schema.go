package store

import _ "embed"

// Schema is the Postgres DDL applied by cmd/migrate. It is idempotent.
//
//go:embed schema.sql
var Schema string
