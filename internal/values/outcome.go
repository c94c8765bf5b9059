// Package values contains domain value objects that encapsulate
// primitive types with validation.
package values

import "fmt"

// Outcome is the normalized sandbox observation a probe reports.
type Outcome string

const (
	// OutcomeSuccess indicates the attempted operation was permitted.
	OutcomeSuccess Outcome = "success"
	// OutcomeDenied indicates the sandbox blocked the operation.
	OutcomeDenied Outcome = "denied"
	// OutcomePartial indicates the operation partially completed.
	OutcomePartial Outcome = "partial"
	// OutcomeError indicates the operation failed for a non-sandbox reason.
	OutcomeError Outcome = "error"
)

// Validate returns an error if the outcome value is not a member of the enum.
func (o Outcome) Validate() error {
	switch o {
	case OutcomeSuccess, OutcomeDenied, OutcomePartial, OutcomeError:
		return nil
	default:
		return fmt.Errorf("invalid outcome: %q (expected success, denied, partial, or error)", string(o))
	}
}

// IsDenial returns true if the probe observed a sandbox denial.
func (o Outcome) IsDenial() bool {
	return o == OutcomeDenied
}

// String returns the wire representation.
func (o Outcome) String() string {
	return string(o)
}
