package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/signalbench/statecore-go/historystore"
	"github.com/signalbench/statecore-go/historystore/internal/adapters"
	"github.com/signalbench/statecore-go/statecore"
)

const (
	defaultLedgerTableName          = "command_ledger"
	logMsgBuildSelectQueryFailed    = "failed to build select query"
	logMsgBuildInsertQueryFailed    = "failed to build insert query"
	logMsgBuildDeleteQueryFailed    = "failed to build delete query"
	logMsgDBQueryFailed             = "database query execution failed"
	logMsgDBExecFailed              = "database execution failed during command append"
	logMsgDBPurgeFailed             = "database execution failed during ledger purge"
	logMsgCloseRowsFailed           = "failed to close database rows"
	logMsgScanRowFailed             = "failed to scan database row"
	logMsgBuildStorableCmdFailed    = "failed to build storable command from database row"
	logMsgRowsAffectedFailed        = "failed to get rows affected count"
	logMsgIncompleteAppendDetected  = "append wrote fewer rows than expected"
	logMsgLedgerLoaded              = "ledger loaded"
	logMsgCommandsAppended          = "commands appended"
	logMsgLedgerPurged              = "ledger purged"
	logMsgSQLExecuted               = "executed sql for: "
	logMsgOperation                 = "ledger operation: "
	logAttrError                    = "error"
	logAttrQuery                    = "query"
	logAttrCommandType              = "command_type"
	logAttrCommandCount             = "command_count"
	logAttrDurationMS               = "duration_ms"
	logAttrExpectedCommands         = "expected_commands"
	logAttrRowsAffected             = "rows_affected"
	logActionLoad                   = "load"
	logActionAppend                 = "append"
	logActionPurge                  = "purge"
	colPosition                     = "position"
	colCommandID                    = "command_id"
	colCommandType                  = "command_type"
	colTriggerID                    = "trigger_id"
	colCapturedAt                   = "captured_at"
	colPayload                      = "payload"
	dialectPostgres                 = "postgres"
	castJsonb                       = "?::jsonb"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// Logger interface for SQL query logging, operational metrics, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Ledger is a PostgreSQL-backed command ledger. It appends storable
// commands in execution order and loads them back oldest first, using a
// database adapter with customizable logging and table configuration.
type Ledger struct {
	db        adapters.DBAdapter
	tableName string
	logger    Logger
}

// Option defines a functional option for configuring a Ledger.
type Option func(*Ledger) error

// WithTableName sets the ledger table name.
func WithTableName(tableName string) Option {
	return func(l *Ledger) error {
		if tableName == "" {
			return historystore.ErrEmptyLedgerTableName
		}

		l.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Ledger.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Command counts and durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(l *Ledger) error {
		l.logger = logger
		return nil
	}
}

type ledgerRow struct {
	commandID   string
	commandType string
	triggerID   string
	capturedAt  time.Time
	payload     []byte
}

// NewLedgerFromPGXPool creates a new Ledger using a pgx Pool with optional configuration.
func NewLedgerFromPGXPool(db *pgxpool.Pool, options ...Option) (Ledger, error) {
	if db == nil {
		return Ledger{}, historystore.ErrNilDatabaseConnection
	}

	return newLedger(adapters.NewPGXAdapter(db), options...)
}

// NewLedgerFromSQLDB creates a new Ledger using a sql.DB with optional configuration.
func NewLedgerFromSQLDB(db *sql.DB, options ...Option) (Ledger, error) {
	if db == nil {
		return Ledger{}, historystore.ErrNilDatabaseConnection
	}

	return newLedger(adapters.NewSQLAdapter(db), options...)
}

// NewLedgerFromSQLX creates a new Ledger using a sqlx.DB with optional configuration.
func NewLedgerFromSQLX(db *sqlx.DB, options ...Option) (Ledger, error) {
	if db == nil {
		return Ledger{}, historystore.ErrNilDatabaseConnection
	}

	return newLedger(adapters.NewSQLXAdapter(db), options...)
}

func newLedger(db adapters.DBAdapter, options ...Option) (Ledger, error) {
	l := Ledger{
		db:        db,
		tableName: defaultLedgerTableName,
	}

	for _, option := range options {
		if err := option(&l); err != nil {
			return Ledger{}, err
		}
	}

	return l, nil
}

// Load retrieves the full command ledger ordered by append position.
func (l Ledger) Load(ctx context.Context) (statecore.StorableCommands, error) {
	var empty statecore.StorableCommands

	sqlQuery, buildQueryErr := l.buildSelectQuery()
	if buildQueryErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgBuildSelectQueryFailed, logAttrError, buildQueryErr.Error())
		}
		return empty, buildQueryErr
	}

	rows, duration, queryErr := l.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		return empty, queryErr
	}
	defer l.closeRows(rows)

	commands, scanErr := l.processQueryResults(rows)
	if scanErr != nil {
		return empty, scanErr
	}

	l.logOperation(
		logMsgLedgerLoaded,
		logAttrCommandCount, len(commands),
		logAttrDurationMS, l.durationToMilliseconds(duration))

	return commands, nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (l Ledger) executeQuery(ctx context.Context, sqlQuery string) (
	adapters.DBRows,
	time.Duration,
	error,
) {

	start := time.Now()
	rows, queryErr := l.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	l.logQueryWithDuration(sqlQuery, logActionLoad, duration)

	if queryErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return nil, duration, errors.Join(historystore.ErrQueryingLedgerFailed, queryErr)
	}

	return rows, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (l Ledger) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if l.logger != nil {
			l.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// processQueryResults converts ledger rows into storable commands.
func (l Ledger) processQueryResults(rows adapters.DBRows) (statecore.StorableCommands, error) {
	var empty statecore.StorableCommands
	result := ledgerRow{}
	commands := make(statecore.StorableCommands, 0)

	for rows.Next() {
		rowScanErr := rows.Scan(&result.commandID, &result.commandType, &result.triggerID, &result.capturedAt, &result.payload)
		if rowScanErr != nil {
			if l.logger != nil {
				l.logger.Error(logMsgScanRowFailed, logAttrError, rowScanErr.Error())
			}

			return empty, errors.Join(historystore.ErrScanningDBRowFailed, rowScanErr)
		}

		command, buildErr := statecore.BuildStorableCommand(result.commandType, result.triggerID, result.capturedAt, result.payload)
		if buildErr != nil {
			if l.logger != nil {
				l.logger.Error(logMsgBuildStorableCmdFailed, logAttrError, buildErr.Error(), logAttrCommandType, result.commandType)
			}

			return empty, errors.Join(historystore.ErrBuildingStorableCommandFailed, buildErr)
		}

		// keep the id the command was originally appended with
		command.CommandID = result.commandID

		commands = append(commands, command)
	}

	return commands, nil
}

// Append writes one or multiple statecore.StorableCommand(s) onto the ledger
// in the given order. The append is a single statement; if fewer rows are
// written than commands supplied, ErrIncompleteAppend is returned.
func (l Ledger) Append(ctx context.Context, commands ...statecore.StorableCommand) error {
	if len(commands) == 0 {
		return nil
	}

	sqlQuery, buildQueryErr := l.buildInsertQuery(commands)
	if buildQueryErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgBuildInsertQueryFailed, logAttrError, buildQueryErr.Error(), logAttrCommandCount, len(commands))
		}

		return buildQueryErr
	}

	rowsAffected, duration, execErr := l.executeAppendQuery(ctx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if err := l.validateAppendResult(rowsAffected, len(commands)); err != nil {
		return err
	}

	l.logOperation(
		logMsgCommandsAppended,
		logAttrCommandCount, len(commands),
		logAttrDurationMS, l.durationToMilliseconds(duration),
	)

	return nil
}

// executeAppendQuery executes the SQL append query and returns rows affected and duration.
func (l Ledger) executeAppendQuery(ctx context.Context, sqlQuery string) (
	rowsAffectedInt64,
	queryDuration,
	error,
) {

	start := time.Now()
	tag, execErr := l.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	l.logQueryWithDuration(sqlQuery, logActionAppend, duration)

	if execErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		return 0, duration, errors.Join(historystore.ErrAppendingCommandsFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		}

		return 0, duration, errors.Join(historystore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// validateAppendResult checks that the append wrote one row per command.
func (l Ledger) validateAppendResult(rowsAffected int64, expectedCommandCount int) error {
	if rowsAffected < int64(expectedCommandCount) {
		l.logOperation(
			logMsgIncompleteAppendDetected,
			logAttrExpectedCommands, expectedCommandCount,
			logAttrRowsAffected, rowsAffected,
		)

		return historystore.ErrIncompleteAppend
	}

	return nil
}

// Purge deletes every row from the ledger table.
func (l Ledger) Purge(ctx context.Context) error {
	sqlQuery, buildQueryErr := l.buildDeleteQuery()
	if buildQueryErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgBuildDeleteQueryFailed, logAttrError, buildQueryErr.Error())
		}

		return buildQueryErr
	}

	start := time.Now()
	_, execErr := l.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	l.logQueryWithDuration(sqlQuery, logActionPurge, duration)

	if execErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgDBPurgeFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		return errors.Join(historystore.ErrPurgingLedgerFailed, execErr)
	}

	l.logOperation(logMsgLedgerPurged, logAttrDurationMS, l.durationToMilliseconds(duration))

	return nil
}

func (l Ledger) buildSelectQuery() (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(l.tableName).
		Select(colCommandID, colCommandType, colTriggerID, colCapturedAt, colPayload).
		Order(goqu.I(colPosition).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(historystore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l Ledger) buildInsertQuery(commands statecore.StorableCommands) (sqlQueryString, error) {
	records := make([]any, 0, len(commands))
	for _, command := range commands {
		records = append(records, goqu.Record{
			colCommandID:   command.CommandID,
			colCommandType: command.CommandType,
			colTriggerID:   command.TriggerID,
			colCapturedAt:  command.CapturedAt,
			colPayload:     goqu.L(castJsonb, string(command.PayloadJSON)),
		})
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(l.tableName).
		Rows(records...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(historystore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l Ledger) buildDeleteQuery() (sqlQueryString, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(l.tableName)

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(historystore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (l Ledger) logQueryWithDuration(
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if l.logger != nil {
		l.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, l.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (l Ledger) logOperation(action string, args ...any) {
	if l.logger != nil {
		l.logger.Info(logMsgOperation+action, args...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (l Ledger) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
