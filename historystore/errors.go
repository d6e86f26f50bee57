package historystore

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a ledger engine is built
	// from a nil database handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyLedgerTableName is returned when an empty table name is
	// supplied through an option.
	ErrEmptyLedgerTableName = errors.New("ledger table name must not be empty")

	// ErrBuildingQueryFailed is returned when a SQL statement cannot be built.
	ErrBuildingQueryFailed = errors.New("building sql query failed")

	// ErrQueryingLedgerFailed is returned when reading the ledger fails.
	ErrQueryingLedgerFailed = errors.New("querying the command ledger failed")

	// ErrScanningDBRowFailed is returned when a ledger row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning database row failed")

	// ErrBuildingStorableCommandFailed is returned when a ledger row does not
	// form a valid storable command.
	ErrBuildingStorableCommandFailed = errors.New("building storable command from database row failed")

	// ErrAppendingCommandsFailed is returned when writing to the ledger fails.
	ErrAppendingCommandsFailed = errors.New("appending commands to the ledger failed")

	// ErrGettingRowsAffectedFailed is returned when the driver cannot report
	// how many rows an append wrote.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected count failed")

	// ErrIncompleteAppend is returned when an append writes fewer rows than
	// commands supplied.
	ErrIncompleteAppend = errors.New("append wrote fewer rows than commands supplied")

	// ErrPurgingLedgerFailed is returned when clearing the ledger fails.
	ErrPurgingLedgerFailed = errors.New("purging the command ledger failed")
)
