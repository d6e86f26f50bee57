package identity

import (
	"errors"
)

var (
	// ErrNilObject is returned when registering a nil object.
	ErrNilObject = errors.New("cannot register a nil object")

	// ErrEmptyID is returned when registering with an empty identifier.
	ErrEmptyID = errors.New("cannot register an empty identifier")

	// ErrIDAlreadyRegistered is returned when an identifier is already bound
	// to a different object. Re-use after destruction requires explicit
	// unregistration first.
	ErrIDAlreadyRegistered = errors.New("identifier is already registered")
)

// Focusable is the capability a registered object may expose so that
// undo/redo navigation can hand it editor focus. Best-effort only.
type Focusable interface {
	TakeFocus()
}

// ChildNavigator is the capability a container may expose so that undo/redo
// navigation can delegate "make this child visible and selected" to it.
// The return value reports whether the container handled the request.
type ChildNavigator interface {
	NavigateToChild(id string) bool
}

// Registry is the bidirectional map between live objects and their
// structured string identifiers.
//
// Registered objects must be comparable (in practice: pointers). The
// Registry does not scan for dead objects; whoever destroys an object is
// responsible for unregistering it.
type Registry struct {
	byID     map[string]any
	byUnique map[string]any
	ids      map[any]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[string]any),
		byUnique: make(map[string]any),
		ids:      make(map[any]string),
	}
}

// Register binds an object to the supplied identifier and returns it.
// If the object is already registered under the same id the call is
// idempotent. Binding an id that belongs to a different live object fails.
func (r *Registry) Register(object any, id string) (string, error) {
	if object == nil {
		return "", ErrNilObject
	}

	if id == "" {
		return "", ErrEmptyID
	}

	if existing, ok := r.byID[id]; ok {
		if existing == object {
			return id, nil
		}

		return "", ErrIDAlreadyRegistered
	}

	r.byID[id] = object
	r.ids[object] = id

	if unique, ok := uniqueField(id); ok {
		r.byUnique[unique] = object
	}

	return id, nil
}

// RegisterWidget mints a widget identifier for the object and registers it.
func (r *Registry) RegisterWidget(object any, typeCode string, containerID string, location string) (string, error) {
	return r.Register(object, NewWidgetID(typeCode, containerID, location).String())
}

// RegisterObservable mints an observable identifier for the object and
// registers it.
func (r *Registry) RegisterObservable(object any, ownerID string, slot string) (string, error) {
	return r.Register(object, NewObservableID(ownerID, slot).String())
}

// Resolve returns the object registered under id, or nil when the id is
// stale, malformed, or was never registered.
func (r *Registry) Resolve(id string) any {
	return r.byID[id]
}

// ResolveUnique returns the object whose identifier carries the given
// unique field, or nil. Used to walk a widget's container chain, where a
// widget id names its parent only by that parent's unique field.
func (r *Registry) ResolveUnique(unique string) any {
	return r.byUnique[unique]
}

// IDOf returns the identifier an object was registered under.
func (r *Registry) IDOf(object any) (string, bool) {
	id, ok := r.ids[object]
	return id, ok
}

// Unregister removes the binding for id. Unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	object, ok := r.byID[id]
	if !ok {
		return
	}

	delete(r.byID, id)
	delete(r.ids, object)

	if unique, uok := uniqueField(id); uok {
		delete(r.byUnique, unique)
	}
}

// UnregisterObject removes the binding for an object. Unknown objects are
// ignored.
func (r *Registry) UnregisterObject(object any) {
	if id, ok := r.ids[object]; ok {
		r.Unregister(id)
	}
}

// Len returns the number of live bindings.
func (r *Registry) Len() int {
	return len(r.byID)
}

func uniqueField(id string) (string, bool) {
	if widgetID, ok := ParseWidgetID(id); ok {
		return widgetID.UniqueID, true
	}

	if observableID, ok := ParseObservableID(id); ok {
		return observableID.UniqueID, true
	}

	return "", false
}
