package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SchemaVersion is the version written into every new blob.
const SchemaVersion = 1

// Envelope wraps a serialized state with its schema version.
type Envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// Encode marshals state into a versioned envelope.
func Encode(state any) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return json.Marshal(Envelope{Version: SchemaVersion, State: raw})
}

// Decode unmarshals an envelope into state.
//
// Version 0 covers blobs written before versioning: either an envelope with
// version 0 or a bare state document with no envelope at all.
func Decode(data []byte, state any) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}

	if env.Version > SchemaVersion {
		return fmt.Errorf("%w: %d (max %d)", ErrUnsupportedVersion, env.Version, SchemaVersion)
	}

	payload := []byte(env.State)
	if len(bytes.TrimSpace(payload)) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		payload = data
	}

	if err := json.Unmarshal(payload, state); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}
	return nil
}
