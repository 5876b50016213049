package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrUnrecognizedSchema means no known shape matches the blob and the state has to
// be reinitialized.
var ErrUnrecognizedSchema = errors.New("persisted state matches no known schema version")

// shapes is ordered newest first; Decode stops at the first shape that parses.
var shapes = []func() Snapshot{
	func() Snapshot { return &State{} },
	func() Snapshot { return &StateV5{} },
	func() Snapshot { return &StateV4{} },
	func() Snapshot { return &StateV3{} },
	func() Snapshot { return &StateV2{} },
	func() Snapshot { return &StateV1{} },
}

// Encode serializes the state with the current schema.
func Encode(s *State) ([]byte, error) {
	bz, err := json.Marshal(s.Clone().normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return bz, nil
}

// Decode restores a blob written by any schema version and migrates it to the
// current State. A shape matches only when the blob has exactly its keys.
func Decode(blob []byte) (*State, SchemaVersion, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnrecognizedSchema, err)
	}

	for _, newShape := range shapes {
		snapshot := newShape()
		if !sameKeys(raw, jsonKeys(snapshot)) {
			continue
		}
		decoder := json.NewDecoder(bytes.NewReader(blob))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(snapshot); err != nil {
			continue
		}
		return snapshot.Migrate(), snapshot.Version(), nil
	}

	return nil, 0, ErrUnrecognizedSchema
}

func jsonKeys(v any) map[string]struct{} {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	return keys
}

func sameKeys(raw map[string]json.RawMessage, keys map[string]struct{}) bool {
	if len(raw) != len(keys) {
		return false
	}
	for key := range raw {
		if _, ok := keys[key]; !ok {
			return false
		}
	}
	return true
}
