package values

import (
	"fmt"

	"github.com/google/uuid"
)

// GateRunID uniquely identifies one dynamic gate execution.
// Shadow roots and scratch state are namespaced by this id, which is
// what keeps concurrent gate runs independent of each other.
type GateRunID struct {
	value uuid.UUID
}

// NewGateRunID creates a new random gate run ID
func NewGateRunID() GateRunID {
	return GateRunID{value: uuid.New()}
}

// ParseGateRunID parses a string into a GateRunID
func ParseGateRunID(s string) (GateRunID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return GateRunID{}, fmt.Errorf("invalid gate run ID: %w", err)
	}
	return GateRunID{value: id}, nil
}

// String returns the string representation
func (g GateRunID) String() string {
	return g.value.String()
}

// IsZero returns true if this is the zero value
func (g GateRunID) IsZero() bool {
	return g.value == uuid.Nil
}

// MarshalJSON implements json.Marshaler
func (g GateRunID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + g.value.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (g *GateRunID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid gate run ID JSON")
	}
	id, err := ParseGateRunID(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*g = id
	return nil
}
