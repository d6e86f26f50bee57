// Package postgresengine provides a PostgreSQL-backed command ledger.
//
// The ledger can be driven by a pgx pool, a database/sql handle, or a
// sqlx handle; all three are wrapped behind a small adapter interface so
// the query and append paths are shared. SQL statements are built with
// goqu and payloads are stored as jsonb.
package postgresengine
