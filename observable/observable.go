package observable

import (
	"encoding/json"
	"errors"
	"reflect"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrInvalidStateJSON is returned when a state payload is not valid JSON.
	ErrInvalidStateJSON = errors.New("observable state json is not valid")

	// ErrRestoringStateFailed is returned when a state payload cannot be unmarshalled.
	ErrRestoringStateFailed = errors.New("restoring observable state failed")
)

// Change describes a single property mutation delivered to observers.
type Change struct {
	Property string
	Old      any
	New      any
}

// ObserverFunc is the callback signature for property observers.
// Observers are invoked synchronously on the mutating goroutine.
type ObserverFunc func(change Change)

// Observable is a mutable entity exposing named properties with synchronous
// change notification and per-property re-entrancy suppression.
//
// It is not safe for concurrent use; the command core is single-threaded by
// contract.
type Observable struct {
	id         string
	parentID   string
	generation int
	props      map[string]any
	observers  map[string]map[string]ObserverFunc
	notifying  map[string]bool
}

// New creates an Observable with a fresh process-unique identity.
func New() *Observable {
	return &Observable{
		id:        uuid.NewString(),
		props:     make(map[string]any),
		observers: make(map[string]map[string]ObserverFunc),
		notifying: make(map[string]bool),
	}
}

// ID returns the identity assigned at construction or via SetID.
func (o *Observable) ID() string {
	return o.id
}

// SetID overwrites the identity. Only meant to be used during
// deserialization to restore an id issued in a previous session.
func (o *Observable) SetID(id string) {
	o.id = id
}

// ParentID returns the id of the hierarchical owner, or "" for a root.
func (o *Observable) ParentID() string {
	return o.parentID
}

// Generation returns the depth of this Observable in its ownership tree.
// A root has generation 0.
func (o *Observable) Generation() int {
	return o.generation
}

// SetParent records the hierarchical owner and this Observable's depth
// beneath it.
func (o *Observable) SetParent(parentID string, generation int) {
	o.parentID = parentID
	o.generation = generation
}

// Get returns the current value of a property and whether it is set.
func (o *Observable) Get(property string) (any, bool) {
	value, ok := o.props[property]
	return value, ok
}

// Set updates a property and notifies its observers with the old and new
// value. Writing a value equal to the current one is a no-op. While a
// notification for the same property is in progress the write still takes
// effect but is not separately announced.
//
// Returns true if the stored value changed.
func (o *Observable) Set(property string, value any) bool {
	old, had := o.props[property]
	if had && reflect.DeepEqual(old, value) {
		return false
	}

	o.props[property] = value

	if o.notifying[property] {
		return true
	}

	o.notify(property, old, value)

	return true
}

// Delete removes a property without notification. Absent properties are
// ignored.
func (o *Observable) Delete(property string) {
	delete(o.props, property)
}

// Properties returns the names of all set properties.
func (o *Observable) Properties() []string {
	names := make([]string, 0, len(o.props))
	for name := range o.props {
		names = append(names, name)
	}

	return names
}

// Observe registers a callback for a property and returns an opaque
// observer id for later removal.
func (o *Observable) Observe(property string, fn ObserverFunc) string {
	observerID := uuid.NewString()

	if o.observers[property] == nil {
		o.observers[property] = make(map[string]ObserverFunc)
	}
	o.observers[property][observerID] = fn

	return observerID
}

// Unobserve removes a previously registered observer.
// Removing an unknown observer is not an error.
func (o *Observable) Unobserve(property string, observerID string) {
	if fns, ok := o.observers[property]; ok {
		delete(fns, observerID)
	}
}

func (o *Observable) notify(property string, old any, value any) {
	fns, ok := o.observers[property]
	if !ok || len(fns) == 0 {
		return
	}

	o.notifying[property] = true
	defer func() { o.notifying[property] = false }()

	change := Change{Property: property, Old: old, New: value}
	for _, fn := range fns {
		fn(change)
	}
}

// StateJSON serializes all properties to a JSON object keyed by property
// name. Used by containers to snapshot instance content before destruction.
func (o *Observable) StateJSON() ([]byte, error) {
	payload, err := jsoniter.ConfigFastest.Marshal(o.props)
	if err != nil {
		return nil, errors.Join(ErrInvalidStateJSON, err)
	}

	return payload, nil
}

// RestoreState replaces all properties from a JSON object previously
// produced by StateJSON. No notifications are dispatched; restoration is a
// deserialization concern, not a user edit.
func (o *Observable) RestoreState(payload []byte) error {
	if !jsoniter.ConfigFastest.Valid(payload) {
		return ErrInvalidStateJSON
	}

	props := make(map[string]any)
	if err := json.Unmarshal(payload, &props); err != nil {
		return errors.Join(ErrRestoringStateFailed, err)
	}

	o.props = props

	return nil
}
