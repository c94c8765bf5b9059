// Package event defines the boundary-event schema and its builder.
//
// A boundary event is the single structured record a probe emits
// describing its sandbox observation. The builder accepts the flat
// named-input set of the emitter call, validates it fail-fast, and
// produces one immutable document.
package event

import (
	"fmt"
	"strings"

	"github.com/probegate-dev/probegate/internal/contract"
)

// Inputs is the flat named-input set of one emitter call. Pointer
// fields distinguish "absent" from "supplied empty", which matters for
// payload-source exclusivity.
type Inputs struct {
	Mode                   string
	ProbeID                string
	ProbeVersion           string
	PrimaryCapabilityID    string
	SecondaryCapabilityIDs []string
	Command                string
	WorkspaceRoot          string

	OpCategory string
	OpVerb     string
	OpTarget   string
	OpArgsJSON string

	Status      string
	RawExitCode string
	Errno       string
	Message     string
	ErrorDetail string

	StdoutSnippet *string
	StderrSnippet *string
	RawJSON       *string
	PayloadJSON   *string

	StackJSON string
}

// flagSpec wires one emitter flag to its Inputs field.
type flagSpec struct {
	set        func(in *Inputs, value string)
	repeatable bool
}

var flagSpecs = map[string]flagSpec{
	"--mode":                 {set: func(in *Inputs, v string) { in.Mode = v }},
	"--probe-id":             {set: func(in *Inputs, v string) { in.ProbeID = v }},
	"--probe-version":        {set: func(in *Inputs, v string) { in.ProbeVersion = v }},
	"--capability":           {set: func(in *Inputs, v string) { in.PrimaryCapabilityID = v }},
	"--secondary-capability": {set: func(in *Inputs, v string) { in.SecondaryCapabilityIDs = append(in.SecondaryCapabilityIDs, v) }, repeatable: true},
	"--command":              {set: func(in *Inputs, v string) { in.Command = v }},
	"--workspace-root":       {set: func(in *Inputs, v string) { in.WorkspaceRoot = v }},
	"--op-category":          {set: func(in *Inputs, v string) { in.OpCategory = v }},
	"--op-verb":              {set: func(in *Inputs, v string) { in.OpVerb = v }},
	"--op-target":            {set: func(in *Inputs, v string) { in.OpTarget = v }},
	"--op-args":              {set: func(in *Inputs, v string) { in.OpArgsJSON = v }},
	"--status":               {set: func(in *Inputs, v string) { in.Status = v }},
	"--raw-exit-code":        {set: func(in *Inputs, v string) { in.RawExitCode = v }},
	"--errno":                {set: func(in *Inputs, v string) { in.Errno = v }},
	"--message":              {set: func(in *Inputs, v string) { in.Message = v }},
	"--error-detail":         {set: func(in *Inputs, v string) { in.ErrorDetail = v }},
	"--stdout-snippet":       {set: func(in *Inputs, v string) { in.StdoutSnippet = &v }},
	"--stderr-snippet":       {set: func(in *Inputs, v string) { in.StderrSnippet = &v }},
	"--raw":                  {set: func(in *Inputs, v string) { in.RawJSON = &v }},
	"--payload":              {set: func(in *Inputs, v string) { in.PayloadJSON = &v }},
	"--stack":                {set: func(in *Inputs, v string) { in.StackJSON = v }},
}

// ParseArgs parses a raw emitter argument list into Inputs.
//
// pflag-style parsers silently fold repeated flags into the last value,
// which would hide an authoring mistake the contract explicitly
// forbids, so this parser tracks every flag and reports repetition of a
// single-use input as DuplicateFlag. On error the partially parsed
// Inputs are still returned so the gate can record best-effort identity.
func ParseArgs(args []string) (Inputs, error) {
	var in Inputs
	seen := make(map[string]bool)

	for i := 0; i < len(args); i++ {
		name := args[i]
		value := ""

		if eq := strings.Index(name, "="); strings.HasPrefix(name, "--") && eq > 0 {
			value = name[eq+1:]
			name = name[:eq]
		} else {
			spec, ok := flagSpecs[name]
			if !ok {
				return in, contract.NewSchemaError(contract.InvalidValue, name, "unrecognized emitter input")
			}
			if i+1 >= len(args) {
				return in, contract.NewSchemaError(contract.InvalidValue, name, "input is missing a value")
			}
			i++
			value = args[i]
			if err := apply(&in, seen, name, spec, value); err != nil {
				return in, err
			}
			continue
		}

		spec, ok := flagSpecs[name]
		if !ok {
			return in, contract.NewSchemaError(contract.InvalidValue, name, "unrecognized emitter input")
		}
		if err := apply(&in, seen, name, spec, value); err != nil {
			return in, err
		}
	}

	return in, nil
}

func apply(in *Inputs, seen map[string]bool, name string, spec flagSpec, value string) error {
	if seen[name] && !spec.repeatable {
		return contract.NewSchemaError(contract.DuplicateFlag, name,
			fmt.Sprintf("input %s supplied more than once", name))
	}
	seen[name] = true
	spec.set(in, value)
	return nil
}
