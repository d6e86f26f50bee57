// Package statecore provides the command-based undo/redo engine at the
// heart of the application: reversible commands, the executed/undone
// history ledger, and the CommandManager that orchestrates execution,
// lifecycle hooks, and focus navigation back to the UI context a command
// originated from.
//
// The engine is single-threaded and cooperative. The CommandManager's
// operation state is the sole concurrency primitive; it exists to convert
// logical re-entrancy (an observer reacting to a command's side effects by
// issuing another command) into silent no-ops rather than nested history
// entries.
//
// Common usage pattern:
//
//	registry := identity.NewRegistry()
//	manager, err := statecore.NewCommandManager(registry,
//		statecore.WithMaxDepth(200),
//		statecore.WithLogger(slog.Default()),
//	)
//
//	cmd := statecore.NewPropertyCommand(doc, "sample_rate", 96000)
//	manager.Execute(cmd, triggerID)
//
//	manager.Undo()
//	manager.Redo()
package statecore
