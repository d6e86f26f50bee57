package statecore

import (
	"github.com/signalbench/statecore-go/identity"
)

const (
	logMsgExecuteRejected = "execute rejected, operation already in progress"
	logMsgUndoRejected    = "undo rejected, operation already in progress"
	logMsgRedoRejected    = "redo rejected, operation already in progress"
	logMsgCommandExecuted = "command executed"
	logMsgCommandUndone   = "command undone"
	logMsgCommandRedone   = "command redone"
	logMsgExecuteFailed   = "command execution failed"
	logMsgUndoFailed      = "command undo failed"
	logMsgRedoFailed      = "command redo failed"
	logAttrError          = "error"
	logAttrState          = "state"
	logAttrTriggerID      = "trigger_id"
	logAttrHistoryDepth   = "history_depth"
	logAttrInitializing   = "initializing"
)

// CommandManager orchestrates command execution, the undo/redo history,
// lifecycle hooks, and focus navigation back to the UI context a command
// originated from.
//
// It is the single owner of the History stacks; commands must not mutate
// them directly. One CommandManager is allocated per application context by
// the composition root and injected into whatever needs it.
type CommandManager struct {
	history      *History
	registry     *identity.Registry
	state        OperationState
	initializing int
	hooks        hookSet
	logger       Logger
	maxDepth     int
}

// ManagerOption defines a functional option for configuring a CommandManager.
type ManagerOption func(*CommandManager) error

// WithLogger sets the logger for the CommandManager.
//
// Debug level: rejected re-entrant operations (expected, frequent)
// Info level: executed/undone/redone commands with history depth
// Error level: command failures surfaced to the after-hooks.
func WithLogger(logger Logger) ManagerOption {
	return func(m *CommandManager) error {
		m.logger = logger
		return nil
	}
}

// WithMaxDepth caps the executed history stack. Oldest entries are dropped
// beyond the cap.
func WithMaxDepth(maxDepth int) ManagerOption {
	return func(m *CommandManager) error {
		m.maxDepth = maxDepth
		return nil
	}
}

// NewCommandManager creates a CommandManager bound to the given identifier
// registry with optional configuration.
func NewCommandManager(registry *identity.Registry, options ...ManagerOption) (*CommandManager, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}

	manager := &CommandManager{
		registry: registry,
		state:    StateIdle,
		maxDepth: DefaultMaxDepth,
	}

	for _, option := range options {
		if err := option(manager); err != nil {
			return nil, err
		}
	}

	manager.history = NewHistory(manager.maxDepth)

	return manager, nil
}

// State returns the current operation state.
func (m *CommandManager) State() OperationState {
	return m.state
}

// History exposes the ledger for persistence and inspection. Callers other
// than the persistence layer should treat it as read-only.
func (m *CommandManager) History() *History {
	return m.history
}

// Registry returns the identifier registry the manager navigates through.
func (m *CommandManager) Registry() *identity.Registry {
	return m.registry
}

// Execute runs a command and records it to history.
//
// Called while another operation is in progress it is a silent no-op that
// reports success: re-entrancy is an expected consequence of observer-driven
// UI code, not an error. In initialization mode the forward mutation still
// runs but nothing is recorded.
//
// A non-empty triggerID is stamped onto the command before execution. On
// failure the command is not recorded and the after-execute hooks receive
// succeeded=false.
func (m *CommandManager) Execute(command Command, triggerID string) bool {
	if m.state != StateIdle {
		m.logDebug(logMsgExecuteRejected, logAttrState, m.state.String())
		return true
	}

	m.state = StateExecuting
	defer func() { m.state = StateIdle }()

	if triggerID != "" {
		command.SetTriggerID(triggerID)
	}

	m.hooks.runBefore(m.hooks.beforeExecute, command)

	if err := command.Execute(); err != nil {
		m.logError(logMsgExecuteFailed, logAttrError, err.Error(), logAttrTriggerID, command.TriggerID())
		m.hooks.runAfter(m.hooks.afterExecute, command, false)

		return false
	}

	if m.initializing == 0 {
		m.history.Record(command)
	}

	m.logInfo(logMsgCommandExecuted,
		logAttrTriggerID, command.TriggerID(),
		logAttrHistoryDepth, m.history.ExecutedLen(),
		logAttrInitializing, m.initializing > 0)
	m.hooks.runAfter(m.hooks.afterExecute, command, true)

	return true
}

// Undo reverses the most recently executed command.
//
// Returns false when another operation is in progress, when there is
// nothing to undo, or when the command's undo failed. Before the undo runs,
// navigation moves editor focus to the command's trigger so the user sees
// the reversal where it happens. On failure the command is pushed back onto
// the executed stack (best-effort consistency).
func (m *CommandManager) Undo() bool {
	if m.state != StateIdle {
		m.logDebug(logMsgUndoRejected, logAttrState, m.state.String())
		return false
	}

	command, ok := m.history.PopExecuted()
	if !ok {
		return false
	}

	m.state = StateUndoing
	defer func() { m.state = StateIdle }()

	m.navigateToTrigger(command.TriggerID())
	m.hooks.runBefore(m.hooks.beforeUndo, command)

	if err := command.Undo(); err != nil {
		m.logError(logMsgUndoFailed, logAttrError, err.Error(), logAttrTriggerID, command.TriggerID())
		m.hooks.runAfter(m.hooks.afterUndo, command, false)
		m.history.PushExecuted(command)

		return false
	}

	m.history.PushUndone(command)
	m.logInfo(logMsgCommandUndone, logAttrTriggerID, command.TriggerID(), logAttrHistoryDepth, m.history.ExecutedLen())
	m.hooks.runAfter(m.hooks.afterUndo, command, true)

	return true
}

// Redo re-applies the most recently undone command. It is treated as a
// variant of execute for observer purposes: the execute hooks run, not the
// undo hooks. On failure the command is returned to the undone stack.
func (m *CommandManager) Redo() bool {
	if m.state != StateIdle {
		m.logDebug(logMsgRedoRejected, logAttrState, m.state.String())
		return false
	}

	command, ok := m.history.PopUndone()
	if !ok {
		return false
	}

	m.state = StateRedoing
	defer func() { m.state = StateIdle }()

	m.navigateToTrigger(command.TriggerID())
	m.hooks.runBefore(m.hooks.beforeExecute, command)

	if err := command.Redo(); err != nil {
		m.logError(logMsgRedoFailed, logAttrError, err.Error(), logAttrTriggerID, command.TriggerID())
		m.hooks.runAfter(m.hooks.afterExecute, command, false)
		m.history.PushUndone(command)

		return false
	}

	m.history.PushExecuted(command)
	m.logInfo(logMsgCommandRedone, logAttrTriggerID, command.TriggerID(), logAttrHistoryDepth, m.history.ExecutedLen())
	m.hooks.runAfter(m.hooks.afterExecute, command, true)

	return true
}

// CanUndo reports whether there is a command to undo.
func (m *CommandManager) CanUndo() bool {
	return m.history.CanUndo()
}

// CanRedo reports whether there is a command to redo.
func (m *CommandManager) CanRedo() bool {
	return m.history.CanRedo()
}

// Clear drops the entire history.
func (m *CommandManager) Clear() {
	m.history.Clear()
}

// BeginInit enters initialization mode: commands still execute (so UI can
// be built and populated from a loaded project) but are not recorded to
// history. Calls nest.
func (m *CommandManager) BeginInit() {
	m.initializing++
}

// EndInit leaves initialization mode. Unbalanced calls are ignored.
func (m *CommandManager) EndInit() {
	if m.initializing > 0 {
		m.initializing--
	}
}

// IsInitializing reports whether initialization mode is active.
func (m *CommandManager) IsInitializing() bool {
	return m.initializing > 0
}

// AddBeforeExecuteHook registers (or replaces) the before-execute hook for
// the caller id. These hooks also run before a redo.
func (m *CommandManager) AddBeforeExecuteHook(id string, fn BeforeHook) {
	m.hooks.beforeExecute = setBeforeHook(m.hooks.beforeExecute, id, fn)
}

// AddAfterExecuteHook registers (or replaces) the after-execute hook for
// the caller id. These hooks also run after a redo.
func (m *CommandManager) AddAfterExecuteHook(id string, fn AfterHook) {
	m.hooks.afterExecute = setAfterHook(m.hooks.afterExecute, id, fn)
}

// AddBeforeUndoHook registers (or replaces) the before-undo hook for the
// caller id.
func (m *CommandManager) AddBeforeUndoHook(id string, fn BeforeHook) {
	m.hooks.beforeUndo = setBeforeHook(m.hooks.beforeUndo, id, fn)
}

// AddAfterUndoHook registers (or replaces) the after-undo hook for the
// caller id.
func (m *CommandManager) AddAfterUndoHook(id string, fn AfterHook) {
	m.hooks.afterUndo = setAfterHook(m.hooks.afterUndo, id, fn)
}

// RemoveHooks removes all four hook slots registered under the caller id.
func (m *CommandManager) RemoveHooks(id string) {
	m.hooks.beforeExecute = removeBeforeHook(m.hooks.beforeExecute, id)
	m.hooks.afterExecute = removeAfterHook(m.hooks.afterExecute, id)
	m.hooks.beforeUndo = removeBeforeHook(m.hooks.beforeUndo, id)
	m.hooks.afterUndo = removeAfterHook(m.hooks.afterUndo, id)
}

// navigateToTrigger resolves a command's trigger id and moves editor focus
// to it, delegating to the container chain when the trigger is nested.
// Navigation is best-effort: stale ids, unnavigable containers, and broken
// chains all give up silently and never affect undo/redo semantics.
func (m *CommandManager) navigateToTrigger(triggerID string) {
	if triggerID == "" {
		return
	}

	object := m.registry.Resolve(triggerID)
	if object == nil {
		return
	}

	widgetID, ok := identity.ParseWidgetID(triggerID)
	if !ok || widgetID.IsRoot() {
		if focusable, fok := object.(identity.Focusable); fok {
			focusable.TakeFocus()
		}

		return
	}

	childID := triggerID
	containerUnique := widgetID.ContainerID

	for containerUnique != "" && containerUnique != identity.RootContainerID {
		container := m.registry.ResolveUnique(containerUnique)
		if container == nil {
			return
		}

		if navigator, nok := container.(identity.ChildNavigator); nok {
			navigator.NavigateToChild(childID)
			return
		}

		containerOwnID, iok := m.registry.IDOf(container)
		if !iok {
			return
		}

		parsed, pok := identity.ParseWidgetID(containerOwnID)
		if !pok {
			return
		}

		childID = containerOwnID
		containerUnique = parsed.ContainerID
	}
}

func (m *CommandManager) logDebug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func (m *CommandManager) logInfo(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Info(msg, args...)
	}
}

func (m *CommandManager) logError(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Error(msg, args...)
	}
}
