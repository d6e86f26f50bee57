package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalbench/statecore-go/container"
	"github.com/signalbench/statecore-go/identity"
	"github.com/signalbench/statecore-go/observable"
)

func noteFactory(params map[string]any) (container.Content, error) {
	note := observable.New()
	note.Set("text", "")

	if params != nil {
		if text, ok := params["text"]; ok {
			note.Set("text", text)
		}
	}

	return note, nil
}

func newNoteContainer(t *testing.T, options ...container.Option) *container.Container {
	t.Helper()

	registry := identity.NewRegistry()
	tabs, err := container.New(registry, "tabstrip", options...)
	require.NoError(t, err)

	require.NoError(t, tabs.RegisterType("note", noteFactory,
		container.WithDisplayName("Note"),
	))

	return tabs
}

func Test_New_RegistersContainerAsRootWidget(t *testing.T) {
	registry := identity.NewRegistry()

	tabs, err := container.New(registry, "tabstrip")
	require.NoError(t, err)

	widgetID, ok := identity.ParseWidgetID(tabs.ID())
	require.True(t, ok)
	assert.Equal(t, "tabstrip", widgetID.TypeCode)
	assert.True(t, widgetID.IsRoot())
	assert.Equal(t, widgetID.UniqueID, tabs.UniqueID())
	assert.Same(t, tabs, registry.Resolve(tabs.ID()))
}

func Test_New_WithParentNestsTheContainer(t *testing.T) {
	registry := identity.NewRegistry()

	dock, err := container.New(registry, "dock")
	require.NoError(t, err)

	tabs, err := container.New(registry, "tabstrip",
		container.WithParent(dock.UniqueID(), "1"))
	require.NoError(t, err)

	containerUnique, ok := identity.ContainerIDFromWidgetID(tabs.ID())
	require.True(t, ok)
	assert.Equal(t, dock.UniqueID(), containerUnique)
}

func Test_RegisterType_ErrorCases(t *testing.T) {
	tabs := newNoteContainer(t)

	err := tabs.RegisterType("note", noteFactory)
	assert.ErrorIs(t, err, container.ErrTypeAlreadyRegistered)

	err = tabs.RegisterType("", noteFactory)
	assert.ErrorIs(t, err, container.ErrEmptyTypeID)
}

func Test_RegisterType_Options(t *testing.T) {
	tabs := newNoteContainer(t)

	require.NoError(t, tabs.RegisterType("scope", noteFactory,
		container.WithDisplayName("Scope View"),
		container.WithClosable(false),
		container.WithDynamicMultiplicity(false),
		container.WithTypeOption("icon", "scope.svg"),
	))

	contentType, ok := tabs.Type("scope")
	require.True(t, ok)
	assert.Equal(t, "Scope View", contentType.DisplayName())
	assert.False(t, contentType.Closable())
	assert.False(t, contentType.Dynamic())

	icon, ok := contentType.Option("icon")
	require.True(t, ok)
	assert.Equal(t, "scope.svg", icon)
}

func Test_Add_AppendsAndSelectsFirstInstance(t *testing.T) {
	tabs := newNoteContainer(t)

	first, err := tabs.Add("note", nil)
	require.NoError(t, err)

	second, err := tabs.Add("note", map[string]any{"text": "hello"})
	require.NoError(t, err)

	assert.Equal(t, 2, tabs.Len())
	assert.Equal(t, 0, tabs.Selected(), "first instance becomes selected")

	atZero, _ := tabs.InstanceAt(0)
	atOne, _ := tabs.InstanceAt(1)
	assert.Equal(t, first, atZero)
	assert.Equal(t, second, atOne)

	instance, ok := tabs.Instance(second)
	require.True(t, ok)
	assert.Equal(t, "note", instance.TypeID())

	text, _ := instance.Content().(*observable.Observable).Get("text")
	assert.Equal(t, "hello", text)
}

func Test_Add_ErrorCases(t *testing.T) {
	tabs := newNoteContainer(t)

	_, err := tabs.Add("unknown", nil)
	assert.ErrorIs(t, err, container.ErrUnknownTypeID)

	require.NoError(t, tabs.RegisterType("status", noteFactory,
		container.WithDynamicMultiplicity(false)))

	_, err = tabs.Add("status", nil)
	require.NoError(t, err)

	_, err = tabs.Add("status", nil)
	assert.ErrorIs(t, err, container.ErrSingletonTypeInstantiated)
}

func Test_Close_RemovesInstanceAndUnregistersIt(t *testing.T) {
	registry := identity.NewRegistry()
	tabs, err := container.New(registry, "tabstrip")
	require.NoError(t, err)
	require.NoError(t, tabs.RegisterType("note", noteFactory))

	instanceID, err := tabs.Add("note", nil)
	require.NoError(t, err)
	require.NotNil(t, registry.Resolve(instanceID))

	assert.True(t, tabs.Close(instanceID))
	assert.Zero(t, tabs.Len())
	assert.Nil(t, registry.Resolve(instanceID))
	assert.Equal(t, -1, tabs.Selected())

	assert.False(t, tabs.Close(instanceID), "closing an absent instance")
}

func Test_Close_RefusesNonClosableType(t *testing.T) {
	tabs := newNoteContainer(t)
	require.NoError(t, tabs.RegisterType("pinned", noteFactory,
		container.WithClosable(false)))

	instanceID, err := tabs.Add("pinned", nil)
	require.NoError(t, err)

	assert.False(t, tabs.Close(instanceID))
	assert.Equal(t, 1, tabs.Len())
}

func Test_SerializeInstance_DeserializeInstance_RoundTrip(t *testing.T) {
	tabs := newNoteContainer(t)

	instanceID, err := tabs.Add("note", map[string]any{"text": "draft"})
	require.NoError(t, err)

	snapshot, err := tabs.SerializeInstance(instanceID)
	require.NoError(t, err)
	assert.Equal(t, "note", snapshot.TypeID)
	assert.Equal(t, instanceID, snapshot.InstanceID)
	assert.Equal(t, 0, snapshot.Position)

	require.True(t, tabs.Close(instanceID))

	restoredID, err := tabs.DeserializeInstance("note", snapshot.Position, snapshot)
	require.NoError(t, err)
	assert.Equal(t, instanceID, restoredID, "deserialization reassigns the original id")

	restored, err := tabs.SerializeInstance(restoredID)
	require.NoError(t, err)
	assert.JSONEq(t, string(snapshot.DataJSON), string(restored.DataJSON))
}

func Test_SerializeInstance_UnknownInstance(t *testing.T) {
	tabs := newNoteContainer(t)

	_, err := tabs.SerializeInstance("tab:gone:0:0")
	assert.ErrorIs(t, err, container.ErrUnknownInstanceID)
}

func Test_Move_ReordersInstances(t *testing.T) {
	tabs := newNoteContainer(t)

	a, _ := tabs.Add("note", nil)
	b, _ := tabs.Add("note", nil)
	c, _ := tabs.Add("note", nil)

	require.NoError(t, tabs.Move(a, 2))

	atZero, _ := tabs.InstanceAt(0)
	atOne, _ := tabs.InstanceAt(1)
	atTwo, _ := tabs.InstanceAt(2)
	assert.Equal(t, []string{b, c, a}, []string{atZero, atOne, atTwo})

	assert.ErrorIs(t, tabs.Move(a, 5), container.ErrInvalidPosition)
	assert.ErrorIs(t, tabs.Move("tab:gone:0:0", 0), container.ErrUnknownInstanceID)
}

func Test_Select_OutOfRangeClearsSelection(t *testing.T) {
	tabs := newNoteContainer(t)
	_, err := tabs.Add("note", nil)
	require.NoError(t, err)

	tabs.Select(0)
	assert.Equal(t, 0, tabs.Selected())

	tabs.Select(9)
	assert.Equal(t, -1, tabs.Selected())
}

func Test_NavigateToChild_SelectsAndFocuses(t *testing.T) {
	tabs := newNoteContainer(t)

	_, err := tabs.Add("note", nil)
	require.NoError(t, err)
	second, err := tabs.Add("note", nil)
	require.NoError(t, err)

	require.True(t, tabs.NavigateToChild(second))
	assert.Equal(t, 1, tabs.Selected())

	assert.False(t, tabs.NavigateToChild("tab:gone:0:0"))
}

func Test_BuildInstanceSnapshot_ErrorCases(t *testing.T) {
	_, err := container.BuildInstanceSnapshot("", "id", 0, []byte(`{}`))
	assert.ErrorIs(t, err, container.ErrEmptySnapshotTypeID)

	_, err = container.BuildInstanceSnapshot("note", "id", 0, []byte(`{"broken": json}`))
	assert.ErrorIs(t, err, container.ErrInvalidSnapshotJSON)
}
