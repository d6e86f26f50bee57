package container

import (
	"errors"
	"strconv"

	"github.com/signalbench/statecore-go/identity"
	"github.com/signalbench/statecore-go/statecore"
)

var (
	// ErrUnknownTypeID is returned when no content type is registered under
	// the given id.
	ErrUnknownTypeID = errors.New("unknown content type id")

	// ErrTypeAlreadyRegistered is returned when a content type id is
	// registered twice.
	ErrTypeAlreadyRegistered = errors.New("content type is already registered")

	// ErrEmptyTypeID is returned when an empty content type id is supplied.
	ErrEmptyTypeID = errors.New("content type id must not be empty")

	// ErrUnknownInstanceID is returned when no live instance exists under
	// the given id.
	ErrUnknownInstanceID = errors.New("unknown instance id")

	// ErrInvalidPosition is returned when a position is out of range.
	ErrInvalidPosition = errors.New("position out of range")

	// ErrSingletonTypeInstantiated is returned when a second instance of a
	// type without dynamic multiplicity is added.
	ErrSingletonTypeInstantiated = errors.New("content type does not allow multiple instances")

	// ErrCloseRefused is returned by CloseInstanceCommand when the instance
	// cannot be closed.
	ErrCloseRefused = errors.New("instance refused to close")
)

// Content is the object backing a container instance. It must be able to
// serialize its observable-backed state so structural edits are reversible.
type Content interface {
	StateJSON() ([]byte, error)
	RestoreState(payload []byte) error
}

// Factory creates fresh content for a registered type. Per-instance
// parameters are optional and type-specific.
type Factory func(params map[string]any) (Content, error)

// ContentType describes a creatable kind of container content.
type ContentType struct {
	id          string
	factory     Factory
	displayName string
	closable    bool
	dynamic     bool
	options     map[string]any
}

// DisplayName returns the human-readable name for UI chrome.
func (t ContentType) DisplayName() string {
	return t.displayName
}

// Closable reports whether instances of this type may be closed by the
// user.
func (t ContentType) Closable() bool {
	return t.closable
}

// Dynamic reports whether more than one instance of this type may live in
// the container at once.
func (t ContentType) Dynamic() bool {
	return t.dynamic
}

// Option returns an arbitrary display option by key.
func (t ContentType) Option(key string) (any, bool) {
	value, ok := t.options[key]
	return value, ok
}

// TypeOption configures a ContentType at registration.
type TypeOption func(*ContentType)

// WithDisplayName sets the human-readable name shown in UI chrome.
func WithDisplayName(name string) TypeOption {
	return func(t *ContentType) {
		t.displayName = name
	}
}

// WithClosable controls whether instances may be closed. Types are
// closable by default.
func WithClosable(closable bool) TypeOption {
	return func(t *ContentType) {
		t.closable = closable
	}
}

// WithDynamicMultiplicity controls whether multiple live instances of the
// type are allowed. Types allow it by default.
func WithDynamicMultiplicity(dynamic bool) TypeOption {
	return func(t *ContentType) {
		t.dynamic = dynamic
	}
}

// WithTypeOption attaches an arbitrary display option.
func WithTypeOption(key string, value any) TypeOption {
	return func(t *ContentType) {
		if t.options == nil {
			t.options = make(map[string]any)
		}
		t.options[key] = value
	}
}

// Instance is a live piece of content tracked by a Container.
type Instance struct {
	id      string
	typeID  string
	content Content
}

// ID returns the instance's widget identifier.
func (i *Instance) ID() string {
	return i.id
}

// TypeID returns the content type the instance was created from.
func (i *Instance) TypeID() string {
	return i.typeID
}

// Content returns the backing content object.
func (i *Instance) Content() Content {
	return i.content
}

// Container is a navigable UI surface that creates, closes, moves, and
// serializes content instances by position. It registers itself and every
// instance in the identifier registry so structural commands can be
// navigated back to.
type Container struct {
	id        string
	uniqueID  string
	registry  *identity.Registry
	types     map[string]ContentType
	instances map[string]*Instance
	order     []string
	selected  int
	logger    statecore.Logger
}

// Option defines a functional option for configuring a Container.
type Option func(*containerConfig)

type containerConfig struct {
	parentUnique string
	location     string
	logger       statecore.Logger
}

// WithParent nests the container beneath another container, identified by
// its unique field, at the given location token.
func WithParent(parentUnique string, location string) Option {
	return func(c *containerConfig) {
		c.parentUnique = parentUnique
		c.location = location
	}
}

// WithLogger sets the logger for the Container.
func WithLogger(logger statecore.Logger) Option {
	return func(c *containerConfig) {
		c.logger = logger
	}
}

// New creates a Container, registering it in the identifier registry under
// a freshly minted widget id with the given type code. Without WithParent
// the container is a root (container field "0").
func New(registry *identity.Registry, typeCode string, options ...Option) (*Container, error) {
	cfg := containerConfig{
		parentUnique: identity.RootContainerID,
		location:     "0",
	}

	for _, option := range options {
		option(&cfg)
	}

	container := &Container{
		registry:  registry,
		types:     make(map[string]ContentType),
		instances: make(map[string]*Instance),
		selected:  -1,
		logger:    cfg.logger,
	}

	id, err := registry.RegisterWidget(container, typeCode, cfg.parentUnique, cfg.location)
	if err != nil {
		return nil, err
	}

	container.id = id
	widgetID, _ := identity.ParseWidgetID(id)
	container.uniqueID = widgetID.UniqueID

	return container, nil
}

// ID returns the container's own widget identifier.
func (c *Container) ID() string {
	return c.id
}

// UniqueID returns the unique field of the container's identifier, the
// value child widget ids carry in their container field.
func (c *Container) UniqueID() string {
	return c.uniqueID
}

// RegisterType declares a creatable kind of content.
func (c *Container) RegisterType(typeID string, factory Factory, options ...TypeOption) error {
	if typeID == "" {
		return ErrEmptyTypeID
	}

	if _, exists := c.types[typeID]; exists {
		return ErrTypeAlreadyRegistered
	}

	contentType := ContentType{
		id:          typeID,
		factory:     factory,
		displayName: typeID,
		closable:    true,
		dynamic:     true,
	}

	for _, option := range options {
		option(&contentType)
	}

	c.types[typeID] = contentType

	return nil
}

// Type returns a registered content type.
func (c *Container) Type(typeID string) (ContentType, bool) {
	contentType, ok := c.types[typeID]
	return contentType, ok
}

// Add instantiates a registered type via its factory, appends it at the
// end, records it in the instance table, and returns the minted instance
// id.
func (c *Container) Add(typeID string, params map[string]any) (string, error) {
	contentType, ok := c.types[typeID]
	if !ok {
		return "", ErrUnknownTypeID
	}

	if !contentType.dynamic && c.countOfType(typeID) > 0 {
		return "", ErrSingletonTypeInstantiated
	}

	content, err := contentType.factory(params)
	if err != nil {
		return "", err
	}

	return c.attach(typeID, content, len(c.order), "")
}

// Close removes an instance and releases its content.
// Returns false if the instance is absent or its type is marked
// non-closable.
func (c *Container) Close(instanceID string) bool {
	instance, ok := c.instances[instanceID]
	if !ok {
		return false
	}

	if contentType, tok := c.types[instance.typeID]; tok && !contentType.closable {
		c.logDebug("close refused, content type is not closable", "instance_id", instanceID)
		return false
	}

	c.detach(instanceID)

	return true
}

// SerializeInstance produces a type-tagged snapshot of an instance's
// content state, sufficient to reconstruct an equivalent instance.
func (c *Container) SerializeInstance(instanceID string) (InstanceSnapshot, error) {
	instance, ok := c.instances[instanceID]
	if !ok {
		return InstanceSnapshot{}, ErrUnknownInstanceID
	}

	dataJSON, err := instance.content.StateJSON()
	if err != nil {
		return InstanceSnapshot{}, err
	}

	position, _ := c.PositionOf(instanceID)

	return BuildInstanceSnapshot(instance.typeID, instanceID, position, dataJSON)
}

// DeserializeInstance reconstructs an instance from a snapshot at the
// given position. The snapshot's instance id is explicitly reassigned to
// the new content so identifiers stay stable across destroy/recreate.
func (c *Container) DeserializeInstance(typeID string, position int, snapshot InstanceSnapshot) (string, error) {
	contentType, ok := c.types[typeID]
	if !ok {
		return "", ErrUnknownTypeID
	}

	if err := snapshot.Validate(); err != nil {
		return "", err
	}

	content, err := contentType.factory(nil)
	if err != nil {
		return "", err
	}

	if err = content.RestoreState(snapshot.DataJSON); err != nil {
		return "", err
	}

	if position < 0 || position > len(c.order) {
		position = len(c.order)
	}

	return c.attach(typeID, content, position, snapshot.InstanceID)
}

// Move shifts an instance to a new position.
func (c *Container) Move(instanceID string, position int) error {
	current, ok := c.PositionOf(instanceID)
	if !ok {
		return ErrUnknownInstanceID
	}

	if position < 0 || position >= len(c.order) {
		return ErrInvalidPosition
	}

	c.order = append(c.order[:current], c.order[current+1:]...)
	c.order = append(c.order[:position], append([]string{instanceID}, c.order[position:]...)...)

	return nil
}

// Instance returns a live instance by id.
func (c *Container) Instance(instanceID string) (*Instance, bool) {
	instance, ok := c.instances[instanceID]
	return instance, ok
}

// InstanceAt returns the instance id at a position.
func (c *Container) InstanceAt(position int) (string, bool) {
	if position < 0 || position >= len(c.order) {
		return "", false
	}

	return c.order[position], true
}

// PositionOf returns the current position of an instance.
func (c *Container) PositionOf(instanceID string) (int, bool) {
	for position, id := range c.order {
		if id == instanceID {
			return position, true
		}
	}

	return 0, false
}

// Len returns the number of live instances.
func (c *Container) Len() int {
	return len(c.order)
}

// Selected returns the selected position, or -1 when nothing is selected.
func (c *Container) Selected() int {
	return c.selected
}

// Select changes the selected position. Out-of-range positions clear the
// selection.
func (c *Container) Select(position int) {
	if position < 0 || position >= len(c.order) {
		c.selected = -1
		return
	}

	c.selected = position
}

// NavigateToChild selects the instance carrying the given id and hands it
// focus when its content supports that. Implements identity.ChildNavigator.
func (c *Container) NavigateToChild(id string) bool {
	position, ok := c.PositionOf(id)
	if !ok {
		return false
	}

	c.Select(position)

	if focusable, fok := c.instances[id].content.(identity.Focusable); fok {
		focusable.TakeFocus()
	}

	return true
}

// attach registers content and inserts it into the position order.
// A non-empty instanceID reassigns a previously issued identifier
// (deserialization); otherwise a fresh widget id is minted.
func (c *Container) attach(typeID string, content Content, position int, instanceID string) (string, error) {
	var err error

	if instanceID == "" {
		instanceID, err = c.registry.RegisterWidget(content, typeID, c.uniqueID, strconv.Itoa(position))
	} else {
		_, err = c.registry.Register(content, instanceID)
	}
	if err != nil {
		return "", err
	}

	c.instances[instanceID] = &Instance{id: instanceID, typeID: typeID, content: content}
	c.order = append(c.order[:position], append([]string{instanceID}, c.order[position:]...)...)

	if c.selected < 0 {
		c.selected = position
	}

	c.logDebug("instance attached", "instance_id", instanceID, "type_id", typeID, "position", position)

	return instanceID, nil
}

// detach removes an instance from the table, the order, and the registry.
func (c *Container) detach(instanceID string) {
	position, ok := c.PositionOf(instanceID)
	if !ok {
		return
	}

	c.order = append(c.order[:position], c.order[position+1:]...)
	delete(c.instances, instanceID)
	c.registry.Unregister(instanceID)

	if c.selected >= len(c.order) {
		c.selected = len(c.order) - 1
	}

	c.logDebug("instance detached", "instance_id", instanceID, "position", position)
}

func (c *Container) countOfType(typeID string) int {
	count := 0
	for _, instance := range c.instances {
		if instance.typeID == typeID {
			count++
		}
	}

	return count
}

func (c *Container) logDebug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
