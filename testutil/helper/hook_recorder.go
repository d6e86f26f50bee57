package helper

import (
	"sync"

	"github.com/signalbench/statecore-go/statecore"
)

// HookCall records a single hook invocation.
type HookCall struct {
	Slot      string
	Command   statecore.Command
	Succeeded bool
}

// HookRecorder captures command lifecycle hook invocations for testing.
// It registers one hook per slot under a single id so a test can verify
// ordering across execute and undo phases.
type HookRecorder struct {
	calls []HookCall
	mu    sync.Mutex
}

// NewHookRecorder creates a new HookRecorder.
func NewHookRecorder() *HookRecorder {
	return &HookRecorder{calls: make([]HookCall, 0)}
}

// RegisterAll registers the recorder's hooks on all four slots of the manager.
func (r *HookRecorder) RegisterAll(id string, manager *statecore.CommandManager) {
	manager.AddBeforeExecuteHook(id, r.Before("before-execute"))
	manager.AddAfterExecuteHook(id, r.After("after-execute"))
	manager.AddBeforeUndoHook(id, r.Before("before-undo"))
	manager.AddAfterUndoHook(id, r.After("after-undo"))
}

// Before returns a BeforeHook that records under the given slot name.
func (r *HookRecorder) Before(slot string) statecore.BeforeHook {
	return func(command statecore.Command) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, HookCall{Slot: slot, Command: command})
	}
}

// After returns an AfterHook that records under the given slot name.
func (r *HookRecorder) After(slot string) statecore.AfterHook {
	return func(command statecore.Command, succeeded bool) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, HookCall{Slot: slot, Command: command, Succeeded: succeeded})
	}
}

// Calls returns a copy of all recorded hook invocations.
func (r *HookRecorder) Calls() []HookCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]HookCall, len(r.calls))
	copy(calls, r.calls)

	return calls
}

// Slots returns just the slot names of all recorded invocations, in order.
func (r *HookRecorder) Slots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	slots := make([]string, 0, len(r.calls))
	for _, call := range r.calls {
		slots = append(slots, call.Slot)
	}

	return slots
}

// Reset clears all recorded invocations.
func (r *HookRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = r.calls[:0]
}
