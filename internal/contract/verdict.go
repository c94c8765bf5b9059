package contract

import (
	"strings"

	"github.com/probegate-dev/probegate/internal/values"
)

// Violation is one contract rule broken by a probe. Check is a stable
// identifier for the rule; Message is the author-facing explanation.
type Violation struct {
	Check   string `json:"check" yaml:"check"`
	Message string `json:"message" yaml:"message"`
}

// Verdict is the outcome of a contract check pass. Violations keep the
// order in which the checks discovered them; the verdict is ephemeral
// and never persisted.
type Verdict struct {
	Status     values.Status `json:"status" yaml:"status"`
	Violations []Violation   `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// NewVerdict creates a passing verdict with no violations.
func NewVerdict() *Verdict {
	return &Verdict{Status: values.StatusPass}
}

// Add records a violation and flips the verdict to fail.
func (v *Verdict) Add(check, message string) {
	v.Status = values.StatusFail
	v.Violations = append(v.Violations, Violation{Check: check, Message: message})
}

// AddError records a violation from a typed error.
func (v *Verdict) AddError(check string, err error) {
	v.Add(check, err.Error())
}

// Merge appends another verdict's violations, preserving order.
func (v *Verdict) Merge(other *Verdict) {
	if other == nil {
		return
	}
	for _, viol := range other.Violations {
		v.Add(viol.Check, viol.Message)
	}
}

// Passed returns true if no violations were recorded.
func (v *Verdict) Passed() bool {
	return v.Status == values.StatusPass && len(v.Violations) == 0
}

// Summary renders the ordered violation list, one per line.
func (v *Verdict) Summary() string {
	if v.Passed() {
		return "pass"
	}
	lines := make([]string, 0, len(v.Violations))
	for _, viol := range v.Violations {
		lines = append(lines, viol.Check+": "+viol.Message)
	}
	return strings.Join(lines, "\n")
}
