package statecore

import (
	"errors"
)

var (
	// ErrInvalidPayloadJSON is returned when a command payload is not valid JSON.
	ErrInvalidPayloadJSON = errors.New("command payload json is not valid")

	// ErrEmptyCommandType is returned when an empty command type is supplied.
	ErrEmptyCommandType = errors.New("command type must not be empty")

	// ErrUnknownCommandType is returned when no factory is registered for a
	// command type.
	ErrUnknownCommandType = errors.New("unknown command type")

	// ErrCommandTypeAlreadyRegistered is returned when a command type is
	// registered twice.
	ErrCommandTypeAlreadyRegistered = errors.New("command type is already registered")

	// ErrNotSerializable is returned when a command in the ledger does not
	// implement the serialization contract.
	ErrNotSerializable = errors.New("command does not implement the serialization contract")

	// ErrNilRegistry is returned when a CommandManager is constructed
	// without an identifier registry.
	ErrNilRegistry = errors.New("identifier registry must not be nil")
)

// Logger interface for operation logging, warnings, and error reporting.
// Satisfied directly by *slog.Logger; a nil logger disables logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
