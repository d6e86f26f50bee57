// Package container implements the contract that dynamic, navigable UI
// surfaces (tab strips, dockable panels) follow so that structural edits
// (adding, closing, and moving content) can be undone and redone.
//
// A Container tracks registered content types (type id -> factory plus
// display options), live instances by position, and the current selection.
// Closing an instance is reversible: the container snapshots the instance's
// observable-backed state immediately before destruction and can
// reconstruct an equivalent instance from the snapshot, its type id, and
// its position.
//
// The structural commands in this package (AddInstanceCommand,
// CloseInstanceCommand, MoveInstanceCommand, SelectCommand) are ordinary
// statecore.Commands and go through the CommandManager like any property
// change.
package container
