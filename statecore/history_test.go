package statecore_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalbench/statecore-go/statecore"
)

// countingCommand is a minimal Command for ledger tests.
type countingCommand struct {
	statecore.CommandBase
	name       string
	executed   int
	undone     int
	redone     int
	executeErr error
	undoErr    error
	redoErr    error
}

func (c *countingCommand) Execute() error {
	if c.executeErr != nil {
		return c.executeErr
	}
	c.executed++

	return nil
}

func (c *countingCommand) Undo() error {
	if c.undoErr != nil {
		return c.undoErr
	}
	c.undone++

	return nil
}

func (c *countingCommand) Redo() error {
	if c.redoErr != nil {
		return c.redoErr
	}
	c.redone++

	return nil
}

func Test_History_RecordClearsUndoneStack(t *testing.T) {
	history := statecore.NewHistory(10)

	a := &countingCommand{name: "a"}
	b := &countingCommand{name: "b"}

	history.Record(a)
	history.Record(b)

	popped, ok := history.PopExecuted()
	require.True(t, ok)
	history.PushUndone(popped)
	require.True(t, history.CanRedo())

	history.Record(&countingCommand{name: "c"})

	assert.False(t, history.CanRedo(), "a fresh execution discards the redo branch")
	assert.Equal(t, 2, history.ExecutedLen())
}

func Test_History_TrimsOldestBeyondMaxDepth(t *testing.T) {
	const maxDepth = 3
	history := statecore.NewHistory(maxDepth)

	first := &countingCommand{name: "first"}
	history.Record(first)
	for i := 0; i < maxDepth; i++ {
		history.Record(&countingCommand{})
	}

	assert.Equal(t, maxDepth, history.ExecutedLen())

	// The oldest entry must be gone: draining the stack never yields it.
	for history.CanUndo() {
		popped, ok := history.PopExecuted()
		require.True(t, ok)
		assert.NotSame(t, first, popped)
	}
}

func Test_History_PopFromEmptyStacks(t *testing.T) {
	history := statecore.NewHistory(0)

	assert.Equal(t, statecore.DefaultMaxDepth, history.MaxDepth())

	_, ok := history.PopExecuted()
	assert.False(t, ok)

	_, ok = history.PopUndone()
	assert.False(t, ok)
}

func Test_History_RestoreReplacesLedger(t *testing.T) {
	history := statecore.NewHistory(2)
	history.Record(&countingCommand{name: "stale"})

	a := &countingCommand{name: "a"}
	b := &countingCommand{name: "b"}
	c := &countingCommand{name: "c"}

	history.Restore([]statecore.Command{a, b, c})

	assert.Equal(t, 2, history.ExecutedLen(), "restore respects the depth cap")
	assert.False(t, history.CanRedo())

	popped, ok := history.PopExecuted()
	require.True(t, ok)
	assert.Same(t, c, popped)
}

func Test_History_ClearDropsBothStacks(t *testing.T) {
	history := statecore.NewHistory(10)
	history.Record(&countingCommand{})
	popped, _ := history.PopExecuted()
	history.PushUndone(popped)
	history.Record(&countingCommand{})

	history.Clear()

	assert.False(t, history.CanUndo())
	assert.False(t, history.CanRedo())
}

func Test_History_ExecutedReturnsACopy(t *testing.T) {
	history := statecore.NewHistory(10)
	a := &countingCommand{name: "a"}
	history.Record(a)

	commands := history.Executed()
	require.Len(t, commands, 1)
	assert.Same(t, a, commands[0])

	commands[0] = &countingCommand{name: "b"}
	again := history.Executed()
	assert.Same(t, a, again[0])
}

var errBoom = errors.New("boom")
