package container

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/signalbench/statecore-go/statecore"
)

// Serialization type tags for the structural commands.
const (
	AddInstanceCommandType   = "AddInstanceCommand"
	CloseInstanceCommandType = "CloseInstanceCommand"
	MoveInstanceCommandType  = "MoveInstanceCommand"
	SelectCommandType        = "SelectCommand"
)

// ErrUnknownContainer is returned by command factories when the container
// named in a payload cannot be resolved.
var ErrUnknownContainer = errors.New("container not found")

// ContainerResolver looks up a live Container by its widget identifier,
// returning nil when the id is stale.
type ContainerResolver func(id string) *Container

/***** AddInstanceCommand *****/

// AddInstanceCommand adds a content instance to a container. Its redo is
// snapshot-first: undoing the add captures the instance's state immediately
// before removal, and redo reconstructs from that snapshot rather than
// re-running the factory, so edits made before the undo are not lost.
type AddInstanceCommand struct {
	statecore.CommandBase
	container  *Container
	typeID     string
	params     map[string]any
	instanceID string
	position   int
	snapshot   *InstanceSnapshot
}

type addInstancePayload struct {
	ContainerID string            `json:"container_id"`
	TypeID      string            `json:"type_id"`
	InstanceID  string            `json:"instance_id"`
	Position    int               `json:"position"`
	Snapshot    *InstanceSnapshot `json:"snapshot,omitempty"`
}

// NewAddInstanceCommand creates a command that adds a fresh instance of
// typeID to the container.
func NewAddInstanceCommand(container *Container, typeID string, params map[string]any) *AddInstanceCommand {
	return &AddInstanceCommand{
		container: container,
		typeID:    typeID,
		params:    params,
	}
}

// Execute instantiates via the type's factory.
func (c *AddInstanceCommand) Execute() error {
	instanceID, err := c.container.Add(c.typeID, c.params)
	if err != nil {
		return err
	}

	c.instanceID = instanceID
	c.position, _ = c.container.PositionOf(instanceID)

	return nil
}

// Undo snapshots the instance's current state, then removes it.
func (c *AddInstanceCommand) Undo() error {
	snapshot, err := c.container.SerializeInstance(c.instanceID)
	if err != nil {
		return err
	}

	c.snapshot = &snapshot
	c.position = snapshot.Position
	c.container.detach(c.instanceID)

	return nil
}

// Redo reconstructs from the captured snapshot when one exists, falling
// back to the factory only on the first execution.
func (c *AddInstanceCommand) Redo() error {
	if c.snapshot == nil {
		return c.Execute()
	}

	instanceID, err := c.container.DeserializeInstance(c.typeID, c.position, *c.snapshot)
	if err != nil {
		return err
	}

	c.instanceID = instanceID

	return nil
}

// InstanceID returns the id of the added instance after Execute.
func (c *AddInstanceCommand) InstanceID() string {
	return c.instanceID
}

// CommandType returns the serialization type tag.
func (c *AddInstanceCommand) CommandType() string {
	return AddInstanceCommandType
}

// PayloadToJSON serializes the command for the history ledger.
func (c *AddInstanceCommand) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(addInstancePayload{
		ContainerID: c.container.ID(),
		TypeID:      c.typeID,
		InstanceID:  c.instanceID,
		Position:    c.position,
		Snapshot:    c.snapshot,
	})
}

/***** CloseInstanceCommand *****/

// CloseInstanceCommand closes a content instance, capturing a snapshot at
// the moment of removal so undo can reconstruct it with all content edits
// intact.
type CloseInstanceCommand struct {
	statecore.CommandBase
	container  *Container
	instanceID string
	typeID     string
	position   int
	snapshot   *InstanceSnapshot
}

type closeInstancePayload struct {
	ContainerID string            `json:"container_id"`
	TypeID      string            `json:"type_id"`
	InstanceID  string            `json:"instance_id"`
	Position    int               `json:"position"`
	Snapshot    *InstanceSnapshot `json:"snapshot,omitempty"`
}

// NewCloseInstanceCommand creates a command that closes the given
// instance.
func NewCloseInstanceCommand(container *Container, instanceID string) *CloseInstanceCommand {
	return &CloseInstanceCommand{
		container:  container,
		instanceID: instanceID,
	}
}

// Execute snapshots the instance immediately before destroying it.
// Refused closes (absent instance, non-closable type) fail the command.
func (c *CloseInstanceCommand) Execute() error {
	instance, ok := c.container.Instance(c.instanceID)
	if !ok {
		return ErrUnknownInstanceID
	}

	snapshot, err := c.container.SerializeInstance(c.instanceID)
	if err != nil {
		return err
	}

	if !c.container.Close(c.instanceID) {
		return ErrCloseRefused
	}

	c.typeID = instance.TypeID()
	c.position = snapshot.Position
	c.snapshot = &snapshot

	return nil
}

// Undo reconstructs the closed instance from the snapshot at its original
// position, under its original id.
func (c *CloseInstanceCommand) Undo() error {
	if c.snapshot == nil {
		return ErrUnknownInstanceID
	}

	instanceID, err := c.container.DeserializeInstance(c.typeID, c.position, *c.snapshot)
	if err != nil {
		return err
	}

	c.instanceID = instanceID

	return nil
}

// Redo closes again, re-capturing the snapshot at the moment of removal.
func (c *CloseInstanceCommand) Redo() error {
	return c.Execute()
}

// Snapshot returns the state captured at the most recent close, or nil.
func (c *CloseInstanceCommand) Snapshot() *InstanceSnapshot {
	return c.snapshot
}

// CommandType returns the serialization type tag.
func (c *CloseInstanceCommand) CommandType() string {
	return CloseInstanceCommandType
}

// PayloadToJSON serializes the command for the history ledger.
func (c *CloseInstanceCommand) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(closeInstancePayload{
		ContainerID: c.container.ID(),
		TypeID:      c.typeID,
		InstanceID:  c.instanceID,
		Position:    c.position,
		Snapshot:    c.snapshot,
	})
}

/***** MoveInstanceCommand *****/

// MoveInstanceCommand shifts an instance to a new position, capturing the
// old position at construction.
type MoveInstanceCommand struct {
	statecore.CommandBase
	container   *Container
	instanceID  string
	oldPosition int
	newPosition int
}

type moveInstancePayload struct {
	ContainerID string `json:"container_id"`
	InstanceID  string `json:"instance_id"`
	OldPosition int    `json:"old_position"`
	NewPosition int    `json:"new_position"`
}

// NewMoveInstanceCommand creates a command that moves the instance to
// newPosition.
func NewMoveInstanceCommand(container *Container, instanceID string, newPosition int) *MoveInstanceCommand {
	oldPosition, _ := container.PositionOf(instanceID)

	return &MoveInstanceCommand{
		container:   container,
		instanceID:  instanceID,
		oldPosition: oldPosition,
		newPosition: newPosition,
	}
}

// Execute moves the instance to the new position.
func (c *MoveInstanceCommand) Execute() error {
	return c.container.Move(c.instanceID, c.newPosition)
}

// Undo moves the instance back to its old position.
func (c *MoveInstanceCommand) Undo() error {
	return c.container.Move(c.instanceID, c.oldPosition)
}

// Redo re-applies the move.
func (c *MoveInstanceCommand) Redo() error {
	return c.Execute()
}

// CommandType returns the serialization type tag.
func (c *MoveInstanceCommand) CommandType() string {
	return MoveInstanceCommandType
}

// PayloadToJSON serializes the command for the history ledger.
func (c *MoveInstanceCommand) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(moveInstancePayload{
		ContainerID: c.container.ID(),
		InstanceID:  c.instanceID,
		OldPosition: c.oldPosition,
		NewPosition: c.newPosition,
	})
}

/***** SelectCommand *****/

// SelectCommand changes which position is active (e.g. the visible tab).
// It is an ordinary command and contributes to history like a content edit.
type SelectCommand struct {
	statecore.CommandBase
	container   *Container
	oldPosition int
	newPosition int
}

type selectPayload struct {
	ContainerID string `json:"container_id"`
	OldPosition int    `json:"old_position"`
	NewPosition int    `json:"new_position"`
}

// NewSelectCommand creates a command that selects newPosition, capturing
// the current selection at construction.
func NewSelectCommand(container *Container, newPosition int) *SelectCommand {
	return &SelectCommand{
		container:   container,
		oldPosition: container.Selected(),
		newPosition: newPosition,
	}
}

// Execute applies the new selection.
func (c *SelectCommand) Execute() error {
	c.container.Select(c.newPosition)
	return nil
}

// Undo restores the previous selection.
func (c *SelectCommand) Undo() error {
	c.container.Select(c.oldPosition)
	return nil
}

// Redo re-applies the new selection.
func (c *SelectCommand) Redo() error {
	return c.Execute()
}

// CommandType returns the serialization type tag.
func (c *SelectCommand) CommandType() string {
	return SelectCommandType
}

// PayloadToJSON serializes the command for the history ledger.
func (c *SelectCommand) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(selectPayload{
		ContainerID: c.container.ID(),
		OldPosition: c.oldPosition,
		NewPosition: c.newPosition,
	})
}

/***** factories *****/

// RegisterCommandTypes binds factories for all structural command types to
// a command-type registry, resolving containers through the supplied
// resolver. Application start-up code calls this once per project context.
func RegisterCommandTypes(registry *statecore.CommandTypeRegistry, resolve ContainerResolver) error {
	if err := registry.Register(AddInstanceCommandType, addInstanceFactory(resolve)); err != nil {
		return err
	}

	if err := registry.Register(CloseInstanceCommandType, closeInstanceFactory(resolve)); err != nil {
		return err
	}

	if err := registry.Register(MoveInstanceCommandType, moveInstanceFactory(resolve)); err != nil {
		return err
	}

	return registry.Register(SelectCommandType, selectFactory(resolve))
}

func addInstanceFactory(resolve ContainerResolver) statecore.CommandFactory {
	return func(payloadJSON []byte) (statecore.Command, error) {
		var payload addInstancePayload
		if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, errors.Join(statecore.ErrInvalidPayloadJSON, err)
		}

		target := resolve(payload.ContainerID)
		if target == nil {
			return nil, errors.Join(ErrUnknownContainer, errors.New(payload.ContainerID))
		}

		return &AddInstanceCommand{
			container:  target,
			typeID:     payload.TypeID,
			instanceID: payload.InstanceID,
			position:   payload.Position,
			snapshot:   payload.Snapshot,
		}, nil
	}
}

func closeInstanceFactory(resolve ContainerResolver) statecore.CommandFactory {
	return func(payloadJSON []byte) (statecore.Command, error) {
		var payload closeInstancePayload
		if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, errors.Join(statecore.ErrInvalidPayloadJSON, err)
		}

		target := resolve(payload.ContainerID)
		if target == nil {
			return nil, errors.Join(ErrUnknownContainer, errors.New(payload.ContainerID))
		}

		return &CloseInstanceCommand{
			container:  target,
			instanceID: payload.InstanceID,
			typeID:     payload.TypeID,
			position:   payload.Position,
			snapshot:   payload.Snapshot,
		}, nil
	}
}

func moveInstanceFactory(resolve ContainerResolver) statecore.CommandFactory {
	return func(payloadJSON []byte) (statecore.Command, error) {
		var payload moveInstancePayload
		if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, errors.Join(statecore.ErrInvalidPayloadJSON, err)
		}

		target := resolve(payload.ContainerID)
		if target == nil {
			return nil, errors.Join(ErrUnknownContainer, errors.New(payload.ContainerID))
		}

		return &MoveInstanceCommand{
			container:   target,
			instanceID:  payload.InstanceID,
			oldPosition: payload.OldPosition,
			newPosition: payload.NewPosition,
		}, nil
	}
}

func selectFactory(resolve ContainerResolver) statecore.CommandFactory {
	return func(payloadJSON []byte) (statecore.Command, error) {
		var payload selectPayload
		if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, errors.Join(statecore.ErrInvalidPayloadJSON, err)
		}

		target := resolve(payload.ContainerID)
		if target == nil {
			return nil, errors.Join(ErrUnknownContainer, errors.New(payload.ContainerID))
		}

		return &SelectCommand{
			container:   target,
			oldPosition: payload.OldPosition,
			newPosition: payload.NewPosition,
		}, nil
	}
}
