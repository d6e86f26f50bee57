package historystore

import (
	"context"
	"errors"

	"github.com/signalbench/statecore-go/statecore"
)

var (
	// ErrSavingHistoryFailed is returned when the ledger cannot be written.
	ErrSavingHistoryFailed = errors.New("saving command history failed")

	// ErrRestoringHistoryFailed is returned when the ledger cannot be read
	// back into commands.
	ErrRestoringHistoryFailed = errors.New("restoring command history failed")
)

// Store is the persistence contract for the command ledger. Commands are
// appended in execution order and loaded back oldest first.
type Store interface {
	Append(ctx context.Context, commands ...statecore.StorableCommand) error
	Load(ctx context.Context) (statecore.StorableCommands, error)
	Purge(ctx context.Context) error
}

// Save replaces the store's ledger with the manager's executed history.
// Every command on the executed stack must implement the serialization
// contract; a non-serializable command fails the save before anything is
// written.
func Save(ctx context.Context, store Store, manager *statecore.CommandManager) error {
	executed := manager.History().Executed()
	storables := make(statecore.StorableCommands, 0, len(executed))

	for _, command := range executed {
		serializable, ok := command.(statecore.SerializableCommand)
		if !ok {
			return errors.Join(ErrSavingHistoryFailed, statecore.ErrNotSerializable)
		}

		storable, err := statecore.StorableCommandFrom(serializable)
		if err != nil {
			return errors.Join(ErrSavingHistoryFailed, err)
		}

		storables = append(storables, storable)
	}

	if err := store.Purge(ctx); err != nil {
		return errors.Join(ErrSavingHistoryFailed, err)
	}

	if len(storables) == 0 {
		return nil
	}

	if err := store.Append(ctx, storables...); err != nil {
		return errors.Join(ErrSavingHistoryFailed, err)
	}

	return nil
}

// Restore rebuilds the manager's executed history from the store's ledger,
// dispatching each entry through the command-type registry. The commands
// are not executed; the loaded project state already reflects them.
func Restore(ctx context.Context, store Store, types *statecore.CommandTypeRegistry, manager *statecore.CommandManager) error {
	storables, err := store.Load(ctx)
	if err != nil {
		return errors.Join(ErrRestoringHistoryFailed, err)
	}

	commands := make([]statecore.Command, 0, len(storables))
	for _, storable := range storables {
		command, buildErr := types.CommandFrom(storable)
		if buildErr != nil {
			return errors.Join(ErrRestoringHistoryFailed, buildErr)
		}

		commands = append(commands, command)
	}

	manager.History().Restore(commands)

	return nil
}
