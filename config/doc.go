// Package config loads project configuration from a YAML file and provides
// factory functions for the database handles a command ledger can be built
// from (pgx.Pool, sql.DB, sqlx.DB for PostgreSQL, sql.DB for SQLite).
package config
