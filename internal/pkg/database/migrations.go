package database

import _ "embed"

//go:embed migrations/postgres.sql
var postgresSchema string

//go:embed migrations/sqlite.sql
var sqliteSchema string
