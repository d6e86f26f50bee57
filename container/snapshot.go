package container

import (
	"encoding/json"
	"errors"

	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrInvalidSnapshotJSON is returned when snapshot data is not valid JSON.
	ErrInvalidSnapshotJSON = errors.New("instance snapshot json is not valid")

	// ErrEmptySnapshotTypeID is returned when a snapshot carries no type id.
	ErrEmptySnapshotTypeID = errors.New("instance snapshot type id must not be empty")
)

// InstanceSnapshot is the type-tagged, serialized state of a container
// instance, captured immediately before the instance is destroyed so the
// destruction can be reversed. The data covers the instance's
// observable-backed content, not pixel-level layout.
type InstanceSnapshot struct {
	TypeID     string          `json:"type_id"`     // Content type the instance was created from
	InstanceID string          `json:"instance_id"` // Identity to restore on reconstruction
	Position   int             `json:"position"`    // Position the instance occupied
	DataJSON   json.RawMessage `json:"data"`        // Serialized content state
}

// Validate ensures the snapshot can be used for reconstruction.
func (s InstanceSnapshot) Validate() error {
	if s.TypeID == "" {
		return ErrEmptySnapshotTypeID
	}

	if !jsoniter.ConfigFastest.Valid(s.DataJSON) {
		return ErrInvalidSnapshotJSON
	}

	return nil
}

// BuildInstanceSnapshot creates an InstanceSnapshot with validation.
func BuildInstanceSnapshot(typeID string, instanceID string, position int, dataJSON json.RawMessage) (InstanceSnapshot, error) {
	snapshot := InstanceSnapshot{
		TypeID:     typeID,
		InstanceID: instanceID,
		Position:   position,
		DataJSON:   dataJSON,
	}

	if err := snapshot.Validate(); err != nil {
		return InstanceSnapshot{}, err
	}

	return snapshot, nil
}
