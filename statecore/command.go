package statecore

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/signalbench/statecore-go/observable"
)

// Command is a reversible unit of mutation.
//
// Undo must restore state equivalent to before Execute. Redo defaults to
// re-invoking the forward mutation; commands that must restore from a
// captured snapshot instead (structural edits) override it.
type Command interface {
	Execute() error
	Undo() error
	Redo() error

	// TriggerID names the UI element that originated the command, or "".
	// It is used to restore editor focus when the command is undone/redone.
	TriggerID() string
	SetTriggerID(id string)
}

// CommandBase carries the trigger identifier for concrete commands to embed.
type CommandBase struct {
	triggerID string
}

// TriggerID returns the originating UI element's identifier, or "".
func (b *CommandBase) TriggerID() string {
	return b.triggerID
}

// SetTriggerID records the originating UI element's identifier.
func (b *CommandBase) SetTriggerID(id string) {
	b.triggerID = id
}

/***** CompoundCommand *****/

// CompoundCommand executes an ordered list of sub-commands as a unit and
// undoes them in reverse order. An empty compound command is legal and
// inert.
type CompoundCommand struct {
	CommandBase
	children []Command
}

// NewCompoundCommand creates a CompoundCommand from the given sub-commands.
func NewCompoundCommand(children ...Command) *CompoundCommand {
	return &CompoundCommand{children: children}
}

// Append adds a sub-command to the end of the list.
func (c *CompoundCommand) Append(child Command) {
	c.children = append(c.children, child)
}

// Len returns the number of sub-commands.
func (c *CompoundCommand) Len() int {
	return len(c.children)
}

// Execute runs the sub-commands in list order, stopping at the first error.
func (c *CompoundCommand) Execute() error {
	for _, child := range c.children {
		if err := child.Execute(); err != nil {
			return err
		}
	}

	return nil
}

// Undo reverses the sub-commands in reverse list order, stopping at the
// first error.
func (c *CompoundCommand) Undo() error {
	for i := len(c.children) - 1; i >= 0; i-- {
		if err := c.children[i].Undo(); err != nil {
			return err
		}
	}

	return nil
}

// Redo re-applies the sub-commands in list order via their own Redo.
func (c *CompoundCommand) Redo() error {
	for _, child := range c.children {
		if err := child.Redo(); err != nil {
			return err
		}
	}

	return nil
}

/***** PropertyCommand *****/

// PropertyCommandType is the serialization type tag for PropertyCommand.
const PropertyCommandType = "PropertyCommand"

// ErrPropertyCommandNilTarget is returned when a PropertyCommand is built
// without a target observable.
var ErrPropertyCommandNilTarget = errors.New("property command target must not be nil")

// PropertyCommand sets a single property on an Observable, capturing the
// old value at construction so the mutation can be reversed exactly.
type PropertyCommand struct {
	CommandBase
	target   *observable.Observable
	property string
	oldValue any
	hadOld   bool
	newValue any
}

// propertyCommandPayload is the wire form of a PropertyCommand.
type propertyCommandPayload struct {
	ObservableID string `json:"observable_id"`
	Property     string `json:"property"`
	Old          any    `json:"old"`
	HadOld       bool   `json:"had_old"`
	New          any    `json:"new"`
}

// NewPropertyCommand creates a PropertyCommand, capturing the target's
// current value of the property as the undo state.
func NewPropertyCommand(target *observable.Observable, property string, newValue any) *PropertyCommand {
	oldValue, hadOld := target.Get(property)

	return &PropertyCommand{
		target:   target,
		property: property,
		oldValue: oldValue,
		hadOld:   hadOld,
		newValue: newValue,
	}
}

// Execute applies the new value.
func (c *PropertyCommand) Execute() error {
	if c.target == nil {
		return ErrPropertyCommandNilTarget
	}

	c.target.Set(c.property, c.newValue)

	return nil
}

// Undo restores the captured old value, or removes the property if it did
// not exist before Execute.
func (c *PropertyCommand) Undo() error {
	if c.target == nil {
		return ErrPropertyCommandNilTarget
	}

	if !c.hadOld {
		c.target.Delete(c.property)
		return nil
	}

	c.target.Set(c.property, c.oldValue)

	return nil
}

// Redo re-applies the new value.
func (c *PropertyCommand) Redo() error {
	return c.Execute()
}

// Property returns the property name the command mutates.
func (c *PropertyCommand) Property() string {
	return c.property
}

// CommandType returns the serialization type tag.
func (c *PropertyCommand) CommandType() string {
	return PropertyCommandType
}

// PayloadToJSON serializes the command for the history ledger.
func (c *PropertyCommand) PayloadToJSON() ([]byte, error) {
	if c.target == nil {
		return nil, ErrPropertyCommandNilTarget
	}

	return jsoniter.ConfigFastest.Marshal(propertyCommandPayload{
		ObservableID: c.target.ID(),
		Property:     c.property,
		Old:          c.oldValue,
		HadOld:       c.hadOld,
		New:          c.newValue,
	})
}

// ObservableResolver looks up a live Observable by its identity, returning
// nil when the id is stale.
type ObservableResolver func(id string) *observable.Observable

// NewPropertyCommandFactory builds a CommandFactory that reconstructs
// PropertyCommands from their serialized payload, resolving the target
// observable through the supplied resolver.
func NewPropertyCommandFactory(resolve ObservableResolver) CommandFactory {
	return func(payloadJSON []byte) (Command, error) {
		var payload propertyCommandPayload
		if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, errors.Join(ErrInvalidPayloadJSON, err)
		}

		target := resolve(payload.ObservableID)
		if target == nil {
			return nil, errors.New("observable not found: " + payload.ObservableID)
		}

		return &PropertyCommand{
			target:   target,
			property: payload.Property,
			oldValue: payload.Old,
			hadOld:   payload.HadOld,
			newValue: payload.New,
		}, nil
	}
}
