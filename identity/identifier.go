package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Delimiter separates the fields of a structured identifier.
const Delimiter = ":"

// RootContainerID is the sentinel container field of a widget that has no
// structural parent.
const RootContainerID = "0"

// ObservableTypeCode is the fixed first field of observable and property
// identifiers. Widget identifiers must use any other type code.
const ObservableTypeCode = "obs"

const (
	widgetIDFieldCount     = 4
	observableIDFieldCount = 4
)

// WidgetID is the parsed form of a widget identifier.
// The Location field is an opaque position token meaningful only to the
// widget's container (a tab index, a dock slot, ...).
type WidgetID struct {
	TypeCode    string
	UniqueID    string
	ContainerID string
	Location    string
}

// String formats the identifier back to its wire form.
func (w WidgetID) String() string {
	return strings.Join([]string{w.TypeCode, w.UniqueID, w.ContainerID, w.Location}, Delimiter)
}

// IsRoot reports whether the widget has no structural parent.
func (w WidgetID) IsRoot() bool {
	return w.ContainerID == RootContainerID
}

// NewWidgetID mints a widget identifier with a fresh unique field.
func NewWidgetID(typeCode string, containerID string, location string) WidgetID {
	return WidgetID{
		TypeCode:    typeCode,
		UniqueID:    uuid.NewString(),
		ContainerID: containerID,
		Location:    location,
	}
}

// ParseWidgetID parses a widget identifier.
// The boolean result is the classification: false means "not a widget id",
// covering malformed strings as well as observable/property identifiers.
func ParseWidgetID(id string) (WidgetID, bool) {
	parts := strings.Split(id, Delimiter)
	if len(parts) != widgetIDFieldCount {
		return WidgetID{}, false
	}

	if parts[0] == ObservableTypeCode || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return WidgetID{}, false
	}

	return WidgetID{
		TypeCode:    parts[0],
		UniqueID:    parts[1],
		ContainerID: parts[2],
		Location:    parts[3],
	}, true
}

// ObservableID is the parsed form of an observable identifier.
// OwnerID names the widget the observable is bound to, or RootContainerID
// when unbound. Slot is an opaque token, commonly the bound property name.
type ObservableID struct {
	UniqueID string
	OwnerID  string
	Slot     string
}

// String formats the identifier back to its wire form.
func (o ObservableID) String() string {
	return strings.Join([]string{ObservableTypeCode, o.UniqueID, o.OwnerID, o.Slot}, Delimiter)
}

// NewObservableID mints an observable identifier with a fresh unique field.
func NewObservableID(ownerID string, slot string) ObservableID {
	return ObservableID{
		UniqueID: uuid.NewString(),
		OwnerID:  ownerID,
		Slot:     slot,
	}
}

// ParseObservableID parses an observable identifier.
// The boolean result is the classification; property identifiers do not
// classify as observable identifiers (they carry extra fields).
func ParseObservableID(id string) (ObservableID, bool) {
	parts := strings.Split(id, Delimiter)
	if len(parts) != observableIDFieldCount {
		return ObservableID{}, false
	}

	if parts[0] != ObservableTypeCode || parts[1] == "" || parts[2] == "" {
		return ObservableID{}, false
	}

	return ObservableID{
		UniqueID: parts[1],
		OwnerID:  parts[2],
		Slot:     parts[3],
	}, true
}

// PropertyID is the parsed form of a property identifier: an observable
// identifier with a trailing property name appended.
type PropertyID struct {
	Observable ObservableID
	Property   string
}

// String formats the identifier back to its wire form.
func (p PropertyID) String() string {
	return p.Observable.String() + Delimiter + p.Property
}

// ParsePropertyID parses a property identifier. Any identifier of five or
// more fields whose first four parse as an observable identifier classifies
// as a property identifier; the property name is the joined remainder.
func ParsePropertyID(id string) (PropertyID, bool) {
	parts := strings.Split(id, Delimiter)
	if len(parts) < observableIDFieldCount+1 {
		return PropertyID{}, false
	}

	prefix := strings.Join(parts[:observableIDFieldCount], Delimiter)
	observableID, ok := ParseObservableID(prefix)
	if !ok {
		return PropertyID{}, false
	}

	return PropertyID{
		Observable: observableID,
		Property:   strings.Join(parts[observableIDFieldCount:], Delimiter),
	}, true
}

// IsWidgetID reports whether the string classifies as a widget identifier.
func IsWidgetID(id string) bool {
	_, ok := ParseWidgetID(id)
	return ok
}

// IsObservableID reports whether the string classifies as an observable
// identifier.
func IsObservableID(id string) bool {
	_, ok := ParseObservableID(id)
	return ok
}

// IsPropertyID reports whether the string classifies as a property
// identifier.
func IsPropertyID(id string) bool {
	_, ok := ParsePropertyID(id)
	return ok
}

// ContainerIDFromWidgetID extracts the structural-parent field of a widget
// identifier without requiring the parent to be registered anywhere.
func ContainerIDFromWidgetID(id string) (string, bool) {
	widgetID, ok := ParseWidgetID(id)
	if !ok {
		return "", false
	}

	return widgetID.ContainerID, true
}
