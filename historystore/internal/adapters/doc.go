// Package adapters provides database adapter implementations for the
// command ledger engines.
//
// The adapter pattern supports multiple database libraries: pgx.Pool,
// sql.DB, and sqlx.DB. All adapters expose equivalent functionality
// through a common DBAdapter interface, so a ledger engine works with any
// supported connection type.
package adapters
