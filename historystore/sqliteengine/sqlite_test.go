package sqliteengine_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/signalbench/statecore-go/historystore"
	"github.com/signalbench/statecore-go/historystore/sqliteengine"
	"github.com/signalbench/statecore-go/statecore"
)

const createLedgerTable = `
CREATE TABLE command_ledger (
	position     INTEGER PRIMARY KEY AUTOINCREMENT,
	command_id   TEXT NOT NULL,
	command_type TEXT NOT NULL,
	trigger_id   TEXT NOT NULL,
	captured_at  TEXT NOT NULL,
	payload      TEXT NOT NULL
)`

func openLedgerDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	assert.NoError(t, err, "error opening in-memory sqlite in test setup")

	// a second connection would see a different in-memory database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(createLedgerTable)
	assert.NoError(t, err, "error creating ledger table in test setup")

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func givenStorableCommand(t *testing.T, commandType string, triggerID string, payloadJSON string) statecore.StorableCommand {
	t.Helper()

	storable, err := statecore.BuildStorableCommand(commandType, triggerID, time.Now().UTC(), []byte(payloadJSON))
	assert.NoError(t, err)

	return storable
}

func Test_SQLiteLedger_NewLedgerFromSQLDB_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	// act
	_, err := sqliteengine.NewLedgerFromSQLDB(nil)

	// assert
	assert.ErrorContains(t, err, historystore.ErrNilDatabaseConnection.Error())
}

func Test_SQLiteLedger_NewLedgerFromSQLDB_ShouldFail_WithEmptyTableName(t *testing.T) {
	// arrange
	db := openLedgerDB(t)

	// act
	_, err := sqliteengine.NewLedgerFromSQLDB(db, sqliteengine.WithTableName(""))

	// assert
	assert.ErrorContains(t, err, historystore.ErrEmptyLedgerTableName.Error())
}

func Test_SQLiteLedger_AppendAndLoad_ShouldRoundTripCommands(t *testing.T) {
	// setup
	ctx := context.Background()
	db := openLedgerDB(t)
	ledger, err := sqliteengine.NewLedgerFromSQLDB(db)
	assert.NoError(t, err)

	// arrange
	first := givenStorableCommand(t, "PropertyCommand", "trace:main:0:center", `{"property":"gain","new":2}`)
	second := givenStorableCommand(t, "SelectCommand", "tabs:views:0:east", `{"index":1}`)

	// act
	appendErr := ledger.Append(ctx, first, second)
	loaded, loadErr := ledger.Load(ctx)

	// assert
	assert.NoError(t, appendErr)
	assert.NoError(t, loadErr)
	assert.Len(t, loaded, 2)
	assert.Equal(t, first.CommandID, loaded[0].CommandID)
	assert.Equal(t, first.CommandType, loaded[0].CommandType)
	assert.Equal(t, first.TriggerID, loaded[0].TriggerID)
	assert.True(t, first.CapturedAt.Equal(loaded[0].CapturedAt))
	assert.JSONEq(t, string(first.PayloadJSON), string(loaded[0].PayloadJSON))
	assert.Equal(t, second.CommandID, loaded[1].CommandID)
	assert.Equal(t, second.CommandType, loaded[1].CommandType)
}

func Test_SQLiteLedger_Load_ShouldPreserveAppendOrder(t *testing.T) {
	// setup
	ctx := context.Background()
	db := openLedgerDB(t)
	ledger, err := sqliteengine.NewLedgerFromSQLDB(db)
	assert.NoError(t, err)

	// arrange
	commands := make(statecore.StorableCommands, 0, 5)
	for n := 0; n < 5; n++ {
		commands = append(commands, givenStorableCommand(t, "PropertyCommand", "trace:main:0:center", `{"property":"offset"}`))
	}

	for _, command := range commands {
		assert.NoError(t, ledger.Append(ctx, command))
	}

	// act
	loaded, loadErr := ledger.Load(ctx)

	// assert
	assert.NoError(t, loadErr)
	assert.Len(t, loaded, len(commands))
	for i, command := range commands {
		assert.Equal(t, command.CommandID, loaded[i].CommandID)
	}
}

func Test_SQLiteLedger_Append_ShouldBeNoOp_WithoutCommands(t *testing.T) {
	// setup
	ctx := context.Background()
	db := openLedgerDB(t)
	ledger, err := sqliteengine.NewLedgerFromSQLDB(db)
	assert.NoError(t, err)

	// act
	appendErr := ledger.Append(ctx)
	loaded, loadErr := ledger.Load(ctx)

	// assert
	assert.NoError(t, appendErr)
	assert.NoError(t, loadErr)
	assert.Empty(t, loaded)
}

func Test_SQLiteLedger_Purge_ShouldEmptyTheLedger(t *testing.T) {
	// setup
	ctx := context.Background()
	db := openLedgerDB(t)
	ledger, err := sqliteengine.NewLedgerFromSQLDB(db)
	assert.NoError(t, err)

	assert.NoError(t, ledger.Append(ctx, givenStorableCommand(t, "MoveInstanceCommand", "tabs:views:0:east", `{"from":0,"to":1}`)))

	// act
	purgeErr := ledger.Purge(ctx)
	loaded, loadErr := ledger.Load(ctx)

	// assert
	assert.NoError(t, purgeErr)
	assert.NoError(t, loadErr)
	assert.Empty(t, loaded)
}

func Test_SQLiteLedger_Load_ShouldFail_WithMissingTable(t *testing.T) {
	// setup
	ctx := context.Background()
	db := openLedgerDB(t)
	ledger, err := sqliteengine.NewLedgerFromSQLDB(db, sqliteengine.WithTableName("missing_ledger"))
	assert.NoError(t, err)

	// act
	_, loadErr := ledger.Load(ctx)

	// assert
	assert.ErrorIs(t, loadErr, historystore.ErrQueryingLedgerFailed)
}
