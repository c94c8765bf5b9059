package values

import (
	"fmt"
	"strings"
)

// ProbeName represents a validated probe identifier.
// Probe names are derived from file base names, so path separators
// and whitespace are rejected.
type ProbeName struct {
	value string
}

// NewProbeName creates a ProbeName with validation
func NewProbeName(name string) (ProbeName, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ProbeName{}, fmt.Errorf("probe name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\ \t") {
		return ProbeName{}, fmt.Errorf("probe name %q cannot contain path separators or whitespace", name)
	}
	return ProbeName{value: name}, nil
}

// MustNewProbeName creates a ProbeName or panics
func MustNewProbeName(name string) ProbeName {
	p, err := NewProbeName(name)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the string representation
func (p ProbeName) String() string {
	return p.value
}

// IsEmpty returns true if this is the zero value
func (p ProbeName) IsEmpty() bool {
	return p.value == ""
}

// Equals checks if two probe names are equal
func (p ProbeName) Equals(other ProbeName) bool {
	return p.value == other.value
}
