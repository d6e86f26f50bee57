// Package historystore persists the command history ledger so an
// application can reconstruct its undo history on project load.
//
// The Store interface is storage-agnostic; two engines are provided:
// postgresengine for a shared project database and sqliteengine for
// desktop-local project files. Save and Restore move the CommandManager's
// executed ledger in and out of a Store through a CommandTypeRegistry.
//
// Restored commands are not re-executed: the loaded project state is
// assumed to already reflect them. Rebuilding the UI itself happens in the
// manager's initialization mode, which executes without recording.
package historystore
