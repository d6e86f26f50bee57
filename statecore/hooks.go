package statecore

// BeforeHook is invoked before a command's execute or undo runs.
type BeforeHook func(command Command)

// AfterHook is invoked after a command's execute or undo finished, with a
// flag reporting whether the operation succeeded.
type AfterHook func(command Command, succeeded bool)

type beforeHookEntry struct {
	id string
	fn BeforeHook
}

type afterHookEntry struct {
	id string
	fn AfterHook
}

// hookSet holds the four lifecycle hook slots, keyed by caller-chosen id.
// Hooks for a phase run in registration order; replacing a hook keeps its
// original position.
type hookSet struct {
	beforeExecute []beforeHookEntry
	afterExecute  []afterHookEntry
	beforeUndo    []beforeHookEntry
	afterUndo     []afterHookEntry
}

func setBeforeHook(entries []beforeHookEntry, id string, fn BeforeHook) []beforeHookEntry {
	for i := range entries {
		if entries[i].id == id {
			entries[i].fn = fn
			return entries
		}
	}

	return append(entries, beforeHookEntry{id: id, fn: fn})
}

func setAfterHook(entries []afterHookEntry, id string, fn AfterHook) []afterHookEntry {
	for i := range entries {
		if entries[i].id == id {
			entries[i].fn = fn
			return entries
		}
	}

	return append(entries, afterHookEntry{id: id, fn: fn})
}

func removeBeforeHook(entries []beforeHookEntry, id string) []beforeHookEntry {
	for i := range entries {
		if entries[i].id == id {
			return append(entries[:i], entries[i+1:]...)
		}
	}

	return entries
}

func removeAfterHook(entries []afterHookEntry, id string) []afterHookEntry {
	for i := range entries {
		if entries[i].id == id {
			return append(entries[:i], entries[i+1:]...)
		}
	}

	return entries
}

func (h *hookSet) runBefore(entries []beforeHookEntry, command Command) {
	for _, entry := range entries {
		entry.fn(command)
	}
}

func (h *hookSet) runAfter(entries []afterHookEntry, command Command, succeeded bool) {
	for _, entry := range entries {
		entry.fn(command, succeeded)
	}
}
