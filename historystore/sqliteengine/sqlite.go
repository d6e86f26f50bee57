package sqliteengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect import

	"github.com/signalbench/statecore-go/historystore"
	"github.com/signalbench/statecore-go/historystore/internal/adapters"
	"github.com/signalbench/statecore-go/statecore"
)

const (
	defaultLedgerTableName       = "command_ledger"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed during command append"
	logMsgDBPurgeFailed          = "database execution failed during ledger purge"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgParseCapturedAtFailed  = "failed to parse captured_at timestamp"
	logMsgBuildStorableCmdFailed = "failed to build storable command from database row"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgLedgerLoaded           = "ledger loaded"
	logMsgCommandsAppended       = "commands appended"
	logMsgLedgerPurged           = "ledger purged"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "ledger operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrCommandType           = "command_type"
	logAttrCommandCount          = "command_count"
	logAttrDurationMS            = "duration_ms"
	logAttrExpectedCommands      = "expected_commands"
	logAttrRowsAffected          = "rows_affected"
	logActionLoad                = "load"
	logActionAppend              = "append"
	logActionPurge               = "purge"
	colPosition                  = "position"
	colCommandID                 = "command_id"
	colCommandType               = "command_type"
	colTriggerID                 = "trigger_id"
	colCapturedAt                = "captured_at"
	colPayload                   = "payload"
	dialectSQLite                = "sqlite3"
)

// Logger interface for SQL query logging, operational metrics, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Ledger is a SQLite-backed command ledger. Timestamps are stored as
// RFC3339Nano text because SQLite has no native timestamp type.
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
func WithLogger(logger Logger) Option {
	return func(l *Ledger) error {
		l.logger = logger
		return nil
	}
}

// NewLedgerFromSQLDB creates a new Ledger using a sql.DB with optional configuration.
func NewLedgerFromSQLDB(db *sql.DB, options ...Option) (Ledger, error) {
	if db == nil {
		return Ledger{}, historystore.ErrNilDatabaseConnection
	}

	l := Ledger{
		db:        adapters.NewSQLAdapter(db),
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
		return empty, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := l.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	l.logQueryWithDuration(sqlQuery, logActionLoad, duration)

	if queryErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return empty, errors.Join(historystore.ErrQueryingLedgerFailed, queryErr)
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

func (l Ledger) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if l.logger != nil {
			l.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

func (l Ledger) processQueryResults(rows adapters.DBRows) (statecore.StorableCommands, error) {
	var empty statecore.StorableCommands
	var commandID, commandType, triggerID, capturedAt string
	var payload []byte
	commands := make(statecore.StorableCommands, 0)

	for rows.Next() {
		rowScanErr := rows.Scan(&commandID, &commandType, &triggerID, &capturedAt, &payload)
		if rowScanErr != nil {
			if l.logger != nil {
				l.logger.Error(logMsgScanRowFailed, logAttrError, rowScanErr.Error())
			}

			return empty, errors.Join(historystore.ErrScanningDBRowFailed, rowScanErr)
		}

		capturedAtTime, parseErr := time.Parse(time.RFC3339Nano, capturedAt)
		if parseErr != nil {
			if l.logger != nil {
				l.logger.Error(logMsgParseCapturedAtFailed, logAttrError, parseErr.Error())
			}

			return empty, errors.Join(historystore.ErrScanningDBRowFailed, parseErr)
		}

		command, buildErr := statecore.BuildStorableCommand(commandType, triggerID, capturedAtTime, payload)
		if buildErr != nil {
			if l.logger != nil {
				l.logger.Error(logMsgBuildStorableCmdFailed, logAttrError, buildErr.Error(), logAttrCommandType, commandType)
			}

			return empty, errors.Join(historystore.ErrBuildingStorableCommandFailed, buildErr)
		}

		// keep the id the command was originally appended with
		command.CommandID = commandID

		commands = append(commands, command)
	}

	return commands, nil
}

// Append writes one or multiple statecore.StorableCommand(s) onto the ledger
// in the given order.
func (l Ledger) Append(ctx context.Context, commands ...statecore.StorableCommand) error {
	if len(commands) == 0 {
		return nil
	}

	sqlQuery, buildQueryErr := l.buildInsertQuery(commands)
	if buildQueryErr != nil {
		return buildQueryErr
	}

	start := time.Now()
	tag, execErr := l.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	l.logQueryWithDuration(sqlQuery, logActionAppend, duration)

	if execErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		return errors.Join(historystore.ErrAppendingCommandsFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		}

		return errors.Join(historystore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected < int64(len(commands)) {
		l.logOperation(
			logMsgCommandsAppended,
			logAttrExpectedCommands, len(commands),
			logAttrRowsAffected, rowsAffected,
		)

		return historystore.ErrIncompleteAppend
	}

	l.logOperation(
		logMsgCommandsAppended,
		logAttrCommandCount, len(commands),
		logAttrDurationMS, l.durationToMilliseconds(duration),
	)

	return nil
}

// Purge deletes every row from the ledger table.
func (l Ledger) Purge(ctx context.Context) error {
	deleteStmt := goqu.Dialect(dialectSQLite).Delete(l.tableName)

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(historystore.ErrBuildingQueryFailed, toSQLErr)
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

func (l Ledger) buildSelectQuery() (string, error) {
	selectStmt := goqu.Dialect(dialectSQLite).
		From(l.tableName).
		Select(colCommandID, colCommandType, colTriggerID, colCapturedAt, colPayload).
		Order(goqu.I(colPosition).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(historystore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l Ledger) buildInsertQuery(commands statecore.StorableCommands) (string, error) {
	records := make([]any, 0, len(commands))
	for _, command := range commands {
		records = append(records, goqu.Record{
			colCommandID:   command.CommandID,
			colCommandType: command.CommandType,
			colTriggerID:   command.TriggerID,
			colCapturedAt:  command.CapturedAt.UTC().Format(time.RFC3339Nano),
			colPayload:     string(command.PayloadJSON),
		})
	}

	insertStmt := goqu.Dialect(dialectSQLite).
		Insert(l.tableName).
		Rows(records...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(historystore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l Ledger) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if l.logger != nil {
		l.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, l.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

func (l Ledger) logOperation(action string, args ...any) {
	if l.logger != nil {
		l.logger.Info(logMsgOperation+action, args...)
	}
}

func (l Ledger) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
