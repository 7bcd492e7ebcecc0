package entities

import (
	"fmt"
	"strings"
)

// State is the storage state of a unit of product
type State int

const (
	Ambient State = iota
	Frozen
	// Thawed is ambient storage of product that was frozen; its shelf-life clock
	// restarts on the day it thaws
	Thawed
)

// AllStates lists every state in canonical order
var AllStates = []State{Ambient, Frozen, Thawed}

// String method for State enum
func (s State) String() string {
	switch s {
	case Ambient:
		return "ambient"
	case Frozen:
		return "frozen"
	case Thawed:
		return "thawed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state by name
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState converts a state name into a State
func ParseState(value string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ambient":
		return Ambient, nil
	case "frozen":
		return Frozen, nil
	case "thawed":
		return Thawed, nil
	default:
		return Ambient, fmt.Errorf("unknown state %q", value)
	}
}

// StorageMode describes which states a node can physically hold
type StorageMode int

const (
	StorageAmbient StorageMode = iota
	StorageFrozen
	StorageBoth
)

// String method for StorageMode enum
func (m StorageMode) String() string {
	switch m {
	case StorageAmbient:
		return "ambient"
	case StorageFrozen:
		return "frozen"
	case StorageBoth:
		return "both"
	default:
		return "unknown"
	}
}

// MarshalText encodes the storage mode by name
func (m StorageMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a storage mode by name
func (m *StorageMode) UnmarshalText(text []byte) error {
	parsed, err := ParseStorageMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseStorageMode converts a storage mode name into a StorageMode
func ParseStorageMode(value string) (StorageMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ambient":
		return StorageAmbient, nil
	case "frozen":
		return StorageFrozen, nil
	case "both":
		return StorageBoth, nil
	default:
		return StorageAmbient, fmt.Errorf("unknown storage mode %q", value)
	}
}

// Holds reports whether the storage mode can hold product in the given state
func (m StorageMode) Holds(s State) bool {
	switch s {
	case Frozen:
		return m == StorageFrozen || m == StorageBoth
	case Ambient, Thawed:
		return m == StorageAmbient || m == StorageBoth
	default:
		return false
	}
}
