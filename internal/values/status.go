package values

import "fmt"

// Status is the verdict of a contract check (static lint or dynamic gate).
type Status string

const (
	// StatusPass indicates every contract rule was satisfied
	StatusPass Status = "pass"
	// StatusFail indicates at least one contract rule was violated
	StatusFail Status = "fail"
)

// IsFailure returns true if this status represents a failed verdict
func (s Status) IsFailure() bool {
	return s == StatusFail
}

// Validate returns an error if the status value is invalid
func (s Status) Validate() error {
	switch s {
	case StatusPass, StatusFail:
		return nil
	default:
		return fmt.Errorf("invalid status: %s", s)
	}
}

// String returns the wire representation.
func (s Status) String() string {
	return string(s)
}
