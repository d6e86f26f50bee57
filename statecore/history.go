package statecore

// DefaultMaxDepth caps the executed stack when no explicit depth is
// configured.
const DefaultMaxDepth = 100

// History is the ordered two-stack ledger of executed and undone commands.
//
// Executing a fresh command discards the undone stack entirely: there is no
// redo across a new branch. The executed stack is capped; recording beyond
// the cap drops the oldest entries.
type History struct {
	executed []Command
	undone   []Command
	maxDepth int
}

// NewHistory creates a History capped at maxDepth executed commands.
// A non-positive depth falls back to DefaultMaxDepth.
func NewHistory(maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &History{maxDepth: maxDepth}
}

// Record pushes a freshly executed command and clears the undone stack.
func (h *History) Record(command Command) {
	h.executed = append(h.executed, command)
	h.undone = h.undone[:0]

	if over := len(h.executed) - h.maxDepth; over > 0 {
		h.executed = append(h.executed[:0:0], h.executed[over:]...)
	}
}

// PopExecuted removes and returns the most recently executed command.
func (h *History) PopExecuted() (Command, bool) {
	if len(h.executed) == 0 {
		return nil, false
	}

	command := h.executed[len(h.executed)-1]
	h.executed = h.executed[:len(h.executed)-1]

	return command, true
}

// PushExecuted returns a command to the executed stack without touching the
// undone stack. Used to re-queue a command whose undo failed.
func (h *History) PushExecuted(command Command) {
	h.executed = append(h.executed, command)
}

// PopUndone removes and returns the most recently undone command.
func (h *History) PopUndone() (Command, bool) {
	if len(h.undone) == 0 {
		return nil, false
	}

	command := h.undone[len(h.undone)-1]
	h.undone = h.undone[:len(h.undone)-1]

	return command, true
}

// PushUndone moves a command onto the undone (redo) stack.
func (h *History) PushUndone(command Command) {
	h.undone = append(h.undone, command)
}

// CanUndo reports whether the executed stack is non-empty.
func (h *History) CanUndo() bool {
	return len(h.executed) > 0
}

// CanRedo reports whether the undone stack is non-empty.
func (h *History) CanRedo() bool {
	return len(h.undone) > 0
}

// ExecutedLen returns the number of commands on the executed stack.
func (h *History) ExecutedLen() int {
	return len(h.executed)
}

// UndoneLen returns the number of commands on the undone stack.
func (h *History) UndoneLen() int {
	return len(h.undone)
}

// MaxDepth returns the configured executed-stack cap.
func (h *History) MaxDepth() int {
	return h.maxDepth
}

// Executed returns a copy of the executed stack, oldest first.
func (h *History) Executed() []Command {
	commands := make([]Command, len(h.executed))
	copy(commands, h.executed)

	return commands
}

// Restore replaces the executed stack with the given commands (oldest
// first) and clears the undone stack. Used when reconstructing history from
// a persisted ledger; the commands are not executed, the loaded project
// state is assumed to already reflect them.
func (h *History) Restore(commands []Command) {
	h.executed = h.executed[:0]
	h.undone = h.undone[:0]

	if over := len(commands) - h.maxDepth; over > 0 {
		commands = commands[over:]
	}

	h.executed = append(h.executed, commands...)
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.executed = h.executed[:0]
	h.undone = h.undone[:0]
}
