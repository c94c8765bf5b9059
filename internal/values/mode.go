package values

import (
	"fmt"
	"regexp"
	"strings"
)

var modePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Mode names a run-mode profile the mode-runner understands.
type Mode struct {
	value string
}

// NewMode creates a Mode with validation
func NewMode(mode string) (Mode, error) {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return Mode{}, fmt.Errorf("mode cannot be empty")
	}
	if !modePattern.MatchString(mode) {
		return Mode{}, fmt.Errorf("mode %q is invalid (must match [a-z0-9_-]+)", mode)
	}
	return Mode{value: mode}, nil
}

// MustNewMode creates a Mode or panics
func MustNewMode(mode string) Mode {
	m, err := NewMode(mode)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the string representation
func (m Mode) String() string {
	return m.value
}

// IsEmpty returns true if this is the zero value
func (m Mode) IsEmpty() bool {
	return m.value == ""
}
