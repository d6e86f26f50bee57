package statecore

// OperationState is the CommandManager's mutually exclusive operation flag.
// It exists to convert logical re-entrancy from synchronous callback chains
// into no-ops; there is no parallel command execution.
type OperationState int

const (
	// StateIdle means no operation is in progress.
	StateIdle OperationState = iota

	// StateExecuting means a command's forward mutation is running.
	StateExecuting

	// StateUndoing means a command is being reversed.
	StateUndoing

	// StateRedoing means an undone command is being re-applied.
	StateRedoing
)

// String provides a representation of OperationState for logging.
func (s OperationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateUndoing:
		return "undoing"
	case StateRedoing:
		return "redoing"
	default:
		return "unknown"
	}
}
