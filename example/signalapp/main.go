// A small signal-analysis workspace driven entirely by commands: an
// observable acquisition document, a tabbed view container, undo/redo,
// and a SQLite-backed command ledger the session is saved to.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/signalbench/statecore-go/config"
	"github.com/signalbench/statecore-go/container"
	"github.com/signalbench/statecore-go/historystore"
	"github.com/signalbench/statecore-go/historystore/sqliteengine"
	"github.com/signalbench/statecore-go/identity"
	"github.com/signalbench/statecore-go/observable"
	"github.com/signalbench/statecore-go/statecore"
)

const (
	traceViewType    = "trace"
	spectrumViewType = "spectrum"

	createLedgerTable = `
CREATE TABLE IF NOT EXISTS command_ledger (
	position     INTEGER PRIMARY KEY AUTOINCREMENT,
	command_id   TEXT NOT NULL,
	command_type TEXT NOT NULL,
	trigger_id   TEXT NOT NULL,
	captured_at  TEXT NOT NULL,
	payload      TEXT NOT NULL
)`
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(context.Background(), logger); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg := config.Default()
	cfg.Storage.DSN = ":memory:"

	registry := identity.NewRegistry()

	manager, err := statecore.NewCommandManager(registry,
		statecore.WithLogger(logger),
		statecore.WithMaxDepth(cfg.History.MaxDepth),
	)
	if err != nil {
		return err
	}

	// The acquisition document: one observable holding the capture settings.
	document := observable.New()
	documentID, err := registry.RegisterObservable(document, "project", "model")
	if err != nil {
		return err
	}
	document.SetID(documentID)

	document.Observe("gain", func(change observable.Change) {
		logger.Info("gain changed", "old", change.Old, "new", change.New)
	})

	// The tabbed view area. Each tab's content is itself an observable, so
	// closed tabs can be restored from their serialized state.
	views, err := container.New(registry, "tabs", container.WithLogger(logger))
	if err != nil {
		return err
	}

	viewFactory := func(params map[string]any) (container.Content, error) {
		view := observable.New()
		for key, value := range params {
			view.Set(key, value)
		}
		return view, nil
	}

	if err = views.RegisterType(traceViewType, viewFactory, container.WithDisplayName("Trace")); err != nil {
		return err
	}
	if err = views.RegisterType(spectrumViewType, viewFactory, container.WithDisplayName("Spectrum")); err != nil {
		return err
	}

	// Everything below goes through the command manager, so every step of
	// the session can be undone, redone, and persisted.
	manager.Execute(statecore.NewPropertyCommand(document, "gain", 2.5), views.ID())
	manager.Execute(statecore.NewPropertyCommand(document, "sample_rate", 48000), views.ID())

	addTrace := container.NewAddInstanceCommand(views, traceViewType, map[string]any{"channel": "A"})
	manager.Execute(addTrace, views.ID())

	addSpectrum := container.NewAddInstanceCommand(views, spectrumViewType, map[string]any{"window": "hann"})
	manager.Execute(addSpectrum, views.ID())

	manager.Execute(container.NewSelectCommand(views, 1), views.ID())

	fmt.Printf("views open: %d, selected: %d\n", views.Len(), views.Selected())

	// Take back the selection and the spectrum tab, then bring them back.
	manager.Undo()
	manager.Undo()
	fmt.Printf("after undo: views open: %d, selected: %d\n", views.Len(), views.Selected())

	manager.Redo()
	manager.Redo()
	fmt.Printf("after redo: views open: %d, selected: %d\n", views.Len(), views.Selected())

	// Persist the session's command history to the ledger.
	db, err := config.SQLiteDB(ctx, cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err = db.ExecContext(ctx, createLedgerTable); err != nil {
		return err
	}

	ledger, err := sqliteengine.NewLedgerFromSQLDB(db,
		sqliteengine.WithTableName(cfg.Storage.Table),
		sqliteengine.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if err = historystore.Save(ctx, ledger, manager); err != nil {
		return err
	}

	// Read it back the way a fresh session would.
	types := statecore.NewCommandTypeRegistry()
	if err = types.Register(statecore.PropertyCommandType, statecore.NewPropertyCommandFactory(
		func(id string) *observable.Observable {
			if resolved, ok := registry.Resolve(id).(*observable.Observable); ok {
				return resolved
			}
			return nil
		},
	)); err != nil {
		return err
	}

	if err = container.RegisterCommandTypes(types, func(id string) *container.Container {
		if resolved, ok := registry.Resolve(id).(*container.Container); ok {
			return resolved
		}
		return nil
	}); err != nil {
		return err
	}

	restored, err := statecore.NewCommandManager(registry, statecore.WithLogger(logger))
	if err != nil {
		return err
	}

	if err = historystore.Restore(ctx, ledger, types, restored); err != nil {
		return err
	}

	fmt.Printf("restored history: %d commands, undoable: %v\n",
		restored.History().ExecutedLen(), restored.CanUndo())

	return nil
}
