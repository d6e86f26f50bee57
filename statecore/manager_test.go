package statecore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalbench/statecore-go/identity"
	"github.com/signalbench/statecore-go/observable"
	"github.com/signalbench/statecore-go/statecore"
)

func newManager(t *testing.T, options ...statecore.ManagerOption) *statecore.CommandManager {
	t.Helper()

	manager, err := statecore.NewCommandManager(identity.NewRegistry(), options...)
	require.NoError(t, err)

	return manager
}

func Test_NewCommandManager_RequiresRegistry(t *testing.T) {
	_, err := statecore.NewCommandManager(nil)

	assert.ErrorIs(t, err, statecore.ErrNilRegistry)
}

func Test_Execute_RecordsToHistory(t *testing.T) {
	manager := newManager(t)
	command := &countingCommand{}

	ok := manager.Execute(command, "panel:abc:0:main")

	require.True(t, ok)
	assert.Equal(t, 1, command.executed)
	assert.Equal(t, "panel:abc:0:main", command.TriggerID())
	assert.True(t, manager.CanUndo())
	assert.False(t, manager.CanRedo())
	assert.Equal(t, statecore.StateIdle, manager.State())
}

func Test_Execute_FailedCommandIsNotRecorded(t *testing.T) {
	manager := newManager(t)
	command := &countingCommand{executeErr: errBoom}

	var succeeded []bool
	manager.AddAfterExecuteHook("ui", func(_ statecore.Command, ok bool) {
		succeeded = append(succeeded, ok)
	})

	ok := manager.Execute(command, "")

	assert.False(t, ok)
	assert.False(t, manager.CanUndo())
	assert.Equal(t, []bool{false}, succeeded)
}

func Test_Execute_ReentrantCallIsASuccessfulNoOp(t *testing.T) {
	registry := identity.NewRegistry()
	manager, err := statecore.NewCommandManager(registry)
	require.NoError(t, err)

	doc := observable.New()
	doc.Set("gain", 1.0)

	// An observer that reacts to the command's side effect by issuing a
	// new command, the way widget-binding code does.
	nested := &countingCommand{}
	doc.Observe("gain", func(observable.Change) {
		assert.True(t, manager.Execute(nested, ""))
	})

	ok := manager.Execute(statecore.NewPropertyCommand(doc, "gain", 2.0), "")

	require.True(t, ok)
	assert.Equal(t, 0, nested.executed, "the nested command must not run")
	assert.Equal(t, 1, manager.History().ExecutedLen())
}

func Test_UndoRedo_RoundTrip(t *testing.T) {
	manager := newManager(t)
	command := &countingCommand{}

	require.True(t, manager.Execute(command, ""))
	require.True(t, manager.Undo())

	assert.Equal(t, 1, command.undone)
	assert.True(t, manager.CanRedo())
	assert.False(t, manager.CanUndo())

	require.True(t, manager.Redo())

	assert.Equal(t, 1, command.redone)
	assert.True(t, manager.CanUndo())
	assert.False(t, manager.CanRedo())
}

func Test_Undo_NothingToUndoReturnsFalse(t *testing.T) {
	manager := newManager(t)

	assert.False(t, manager.Undo())
	assert.False(t, manager.Redo())
}

func Test_Undo_FailureRequeuesCommand(t *testing.T) {
	manager := newManager(t)
	command := &countingCommand{undoErr: errBoom}

	var succeeded []bool
	manager.AddAfterUndoHook("ui", func(_ statecore.Command, ok bool) {
		succeeded = append(succeeded, ok)
	})

	require.True(t, manager.Execute(command, ""))

	assert.False(t, manager.Undo())
	assert.True(t, manager.CanUndo(), "the command goes back onto the executed stack")
	assert.False(t, manager.CanRedo())
	assert.Equal(t, []bool{false}, succeeded)
}

func Test_Redo_FailureReturnsCommandToUndoneStack(t *testing.T) {
	manager := newManager(t)
	command := &countingCommand{redoErr: errBoom}

	require.True(t, manager.Execute(command, ""))
	require.True(t, manager.Undo())

	assert.False(t, manager.Redo())
	assert.True(t, manager.CanRedo())
	assert.False(t, manager.CanUndo())
}

func Test_Execute_AfterUndoDiscardsRedoBranch(t *testing.T) {
	manager := newManager(t)

	require.True(t, manager.Execute(&countingCommand{name: "a"}, ""))
	require.True(t, manager.Execute(&countingCommand{name: "b"}, ""))
	require.True(t, manager.Undo())
	require.True(t, manager.Execute(&countingCommand{name: "c"}, ""))

	assert.False(t, manager.Redo(), "nothing to redo after a fresh branch")
}

func Test_Execute_HistoryTrimming(t *testing.T) {
	const maxDepth = 5
	const extra = 3

	manager := newManager(t, statecore.WithMaxDepth(maxDepth))

	for i := 0; i < maxDepth+extra; i++ {
		require.True(t, manager.Execute(&countingCommand{}, ""))
	}

	assert.Equal(t, maxDepth, manager.History().ExecutedLen())

	undos := 0
	for manager.CanUndo() {
		require.True(t, manager.Undo())
		undos++
	}
	assert.Equal(t, maxDepth, undos)
}

func Test_InitMode_ExecutesWithoutRecording(t *testing.T) {
	manager := newManager(t)
	command := &countingCommand{}

	manager.BeginInit()
	require.True(t, manager.IsInitializing())

	ok := manager.Execute(command, "")

	require.True(t, ok)
	assert.Equal(t, 1, command.executed, "the forward mutation still runs")
	assert.False(t, manager.CanUndo(), "init-time mutations are not undoable")

	manager.EndInit()
	assert.False(t, manager.IsInitializing())

	manager.EndInit() // unbalanced, ignored
	assert.False(t, manager.IsInitializing())
}

func Test_Hooks_RunInRegistrationOrder(t *testing.T) {
	manager := newManager(t)

	var order []string
	manager.AddBeforeExecuteHook("first", func(statecore.Command) {
		order = append(order, "first")
	})
	manager.AddBeforeExecuteHook("second", func(statecore.Command) {
		order = append(order, "second")
	})

	require.True(t, manager.Execute(&countingCommand{}, ""))

	assert.Equal(t, []string{"first", "second"}, order)
}

func Test_Hooks_ReplaceKeepsPosition(t *testing.T) {
	manager := newManager(t)

	var order []string
	manager.AddBeforeExecuteHook("first", func(statecore.Command) {
		order = append(order, "first")
	})
	manager.AddBeforeExecuteHook("second", func(statecore.Command) {
		order = append(order, "second")
	})
	manager.AddBeforeExecuteHook("first", func(statecore.Command) {
		order = append(order, "first-replaced")
	})

	require.True(t, manager.Execute(&countingCommand{}, ""))

	assert.Equal(t, []string{"first-replaced", "second"}, order)
}

func Test_RemoveHooks_RemovesAllFourSlots(t *testing.T) {
	manager := newManager(t)

	calls := 0
	count := func(statecore.Command) { calls++ }
	countAfter := func(statecore.Command, bool) { calls++ }

	manager.AddBeforeExecuteHook("ui", count)
	manager.AddAfterExecuteHook("ui", countAfter)
	manager.AddBeforeUndoHook("ui", count)
	manager.AddAfterUndoHook("ui", countAfter)

	manager.RemoveHooks("ui")

	require.True(t, manager.Execute(&countingCommand{}, ""))
	require.True(t, manager.Undo())

	assert.Equal(t, 0, calls)
}

func Test_RedoUsesExecuteHooks(t *testing.T) {
	manager := newManager(t)

	executeHooks := 0
	undoHooks := 0
	manager.AddAfterExecuteHook("ui", func(statecore.Command, bool) { executeHooks++ })
	manager.AddAfterUndoHook("ui", func(statecore.Command, bool) { undoHooks++ })

	require.True(t, manager.Execute(&countingCommand{}, ""))
	require.True(t, manager.Undo())
	require.True(t, manager.Redo())

	assert.Equal(t, 2, executeHooks, "execute and redo share the execute hooks")
	assert.Equal(t, 1, undoHooks)
}

func Test_Scenario_NameAndCountRoundTrip(t *testing.T) {
	manager := newManager(t)

	doc := observable.New()
	doc.Set("name", "A")
	doc.Set("count", 1)

	require.True(t, manager.Execute(statecore.NewPropertyCommand(doc, "name", "B"), ""))
	require.True(t, manager.Execute(statecore.NewPropertyCommand(doc, "count", 2), ""))

	assert.True(t, manager.CanUndo())
	assert.False(t, manager.CanRedo())

	require.True(t, manager.Undo())
	count, _ := doc.Get("count")
	assert.Equal(t, 1, count)
	assert.True(t, manager.CanRedo())

	require.True(t, manager.Undo())
	name, _ := doc.Get("name")
	assert.Equal(t, "A", name)

	assert.False(t, manager.Undo(), "nothing left to undo")

	require.True(t, manager.Redo())
	require.True(t, manager.Redo())

	name, _ = doc.Get("name")
	count, _ = doc.Get("count")
	assert.Equal(t, "B", name)
	assert.Equal(t, 2, count)
}

/***** navigation *****/

type focusableWidget struct {
	focused int
}

func (w *focusableWidget) TakeFocus() {
	w.focused++
}

type navigableDock struct {
	navigatedTo []string
}

func (d *navigableDock) NavigateToChild(id string) bool {
	d.navigatedTo = append(d.navigatedTo, id)
	return true
}

type plainContainer struct{}

func Test_Undo_NavigatesToRootTrigger(t *testing.T) {
	registry := identity.NewRegistry()
	manager, err := statecore.NewCommandManager(registry)
	require.NoError(t, err)

	widget := &focusableWidget{}
	triggerID, err := registry.RegisterWidget(widget, "panel", identity.RootContainerID, "main")
	require.NoError(t, err)

	require.True(t, manager.Execute(&countingCommand{}, triggerID))
	require.True(t, manager.Undo())

	assert.Equal(t, 1, widget.focused)
}

func Test_Undo_DelegatesNavigationToContainer(t *testing.T) {
	registry := identity.NewRegistry()
	manager, err := statecore.NewCommandManager(registry)
	require.NoError(t, err)

	dock := &navigableDock{}
	dockID, err := registry.RegisterWidget(dock, "dock", identity.RootContainerID, "left")
	require.NoError(t, err)
	parsedDockID, _ := identity.ParseWidgetID(dockID)

	widget := &focusableWidget{}
	triggerID, err := registry.RegisterWidget(widget, "view", parsedDockID.UniqueID, "2")
	require.NoError(t, err)

	require.True(t, manager.Execute(&countingCommand{}, triggerID))
	require.True(t, manager.Undo())

	assert.Equal(t, []string{triggerID}, dock.navigatedTo)
}

func Test_Undo_WalksUpWhenContainerCannotNavigate(t *testing.T) {
	registry := identity.NewRegistry()
	manager, err := statecore.NewCommandManager(registry)
	require.NoError(t, err)

	grandparent := &navigableDock{}
	grandparentID, err := registry.RegisterWidget(grandparent, "dock", identity.RootContainerID, "right")
	require.NoError(t, err)
	parsedGrandparentID, _ := identity.ParseWidgetID(grandparentID)

	parent := &plainContainer{}
	parentID, err := registry.RegisterWidget(parent, "tabstrip", parsedGrandparentID.UniqueID, "0")
	require.NoError(t, err)
	parsedParentID, _ := identity.ParseWidgetID(parentID)

	widget := &focusableWidget{}
	triggerID, err := registry.RegisterWidget(widget, "view", parsedParentID.UniqueID, "1")
	require.NoError(t, err)

	require.True(t, manager.Execute(&countingCommand{}, triggerID))
	require.True(t, manager.Undo())

	assert.Equal(t, []string{parentID}, grandparent.navigatedTo,
		"the grandparent navigates to the unnavigable parent")
}

func Test_Undo_StaleTriggerIsIgnored(t *testing.T) {
	registry := identity.NewRegistry()
	manager, err := statecore.NewCommandManager(registry)
	require.NoError(t, err)

	require.True(t, manager.Execute(&countingCommand{}, "panel:gone:0:main"))
	assert.True(t, manager.Undo(), "navigation failure never affects undo semantics")
}
