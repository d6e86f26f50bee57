package statecore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"
)

// StorableCommands is an alias type for a slice of StorableCommand.
type StorableCommands = []StorableCommand

// StorableCommand is a DTO used to persist executed commands to a history
// ledger and to reconstruct them on project load.
//
// It is built on scalars to be completely agnostic of the concrete command
// implementations in application code. While its fields are exported, it
// should only be constructed with BuildStorableCommand or
// StorableCommandFrom.
type StorableCommand struct {
	CommandID   string
	CommandType string
	TriggerID   string
	CapturedAt  time.Time
	PayloadJSON []byte
}

// BuildStorableCommand is a factory method for StorableCommand.
//
// The command id is minted as a ULID so ledger entries sort by capture
// order even outside their storage position. Returns an error if the
// payload is not valid JSON or the command type is empty.
func BuildStorableCommand(commandType string, triggerID string, capturedAt time.Time, payloadJSON []byte) (StorableCommand, error) {
	if commandType == "" {
		return StorableCommand{}, ErrEmptyCommandType
	}

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return StorableCommand{}, ErrInvalidPayloadJSON
	}

	return StorableCommand{
		CommandID:   ulid.Make().String(),
		CommandType: commandType,
		TriggerID:   triggerID,
		CapturedAt:  capturedAt,
		PayloadJSON: payloadJSON,
	}, nil
}

// SerializableCommand is the contract a Command implements to participate
// in history persistence. The matching factory reconstructing a command
// from its payload is registered per type in a CommandTypeRegistry by
// application start-up code.
type SerializableCommand interface {
	Command
	CommandType() string
	PayloadToJSON() ([]byte, error)
}

// StorableCommandFrom converts a SerializableCommand into its storable DTO.
func StorableCommandFrom(command SerializableCommand) (StorableCommand, error) {
	payload, err := command.PayloadToJSON()
	if err != nil {
		return StorableCommand{}, err
	}

	return BuildStorableCommand(command.CommandType(), command.TriggerID(), time.Now(), payload)
}

// CommandFactory reconstructs a Command from its serialized payload.
type CommandFactory func(payloadJSON []byte) (Command, error)

// CommandTypeRegistry is the dispatch table from command type names to
// factories. It is owned and populated by application start-up code.
type CommandTypeRegistry struct {
	factories map[string]CommandFactory
}

// NewCommandTypeRegistry creates an empty CommandTypeRegistry.
func NewCommandTypeRegistry() *CommandTypeRegistry {
	return &CommandTypeRegistry{factories: make(map[string]CommandFactory)}
}

// Register binds a command type name to its factory.
func (r *CommandTypeRegistry) Register(commandType string, factory CommandFactory) error {
	if commandType == "" {
		return ErrEmptyCommandType
	}

	if _, exists := r.factories[commandType]; exists {
		return ErrCommandTypeAlreadyRegistered
	}

	r.factories[commandType] = factory

	return nil
}

// CommandFrom reconstructs a Command from its storable DTO, restoring the
// trigger identifier it was captured with.
func (r *CommandTypeRegistry) CommandFrom(storable StorableCommand) (Command, error) {
	factory, ok := r.factories[storable.CommandType]
	if !ok {
		return nil, errors.Join(ErrUnknownCommandType, errors.New(storable.CommandType))
	}

	command, err := factory(storable.PayloadJSON)
	if err != nil {
		return nil, err
	}

	command.SetTriggerID(storable.TriggerID)

	return command, nil
}
