package values

import (
	"fmt"
	"regexp"
	"strings"
)

var capabilityIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// CapabilityID identifies a cataloged capability.
// Enforces non-empty, token-shaped identifiers.
type CapabilityID struct {
	value string
}

// NewCapabilityID creates a CapabilityID with validation
func NewCapabilityID(id string) (CapabilityID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return CapabilityID{}, fmt.Errorf("capability id cannot be empty")
	}
	if !capabilityIDPattern.MatchString(id) {
		return CapabilityID{}, fmt.Errorf("capability id %q is invalid (must match [A-Za-z0-9_.-]+)", id)
	}
	return CapabilityID{value: id}, nil
}

// MustNewCapabilityID creates a CapabilityID or panics (for tests only)
func MustNewCapabilityID(id string) CapabilityID {
	c, err := NewCapabilityID(id)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the string representation
func (c CapabilityID) String() string {
	return c.value
}

// IsEmpty returns true if this is the zero value
func (c CapabilityID) IsEmpty() bool {
	return c.value == ""
}

// Equals checks if two capability ids are equal
func (c CapabilityID) Equals(other CapabilityID) bool {
	return c.value == other.value
}

// MarshalJSON implements json.Marshaler
func (c CapabilityID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (c *CapabilityID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid capability id JSON")
	}
	id, err := NewCapabilityID(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*c = id
	return nil
}
