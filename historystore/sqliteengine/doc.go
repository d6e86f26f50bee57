// Package sqliteengine provides a SQLite-backed command ledger for
// desktop-local projects. It drives a database/sql handle through the
// pure-Go modernc.org/sqlite driver and builds its statements with goqu.
package sqliteengine
