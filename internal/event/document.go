package event

import (
	"encoding/json"

	"github.com/probegate-dev/probegate/internal/catalog"
	"github.com/probegate-dev/probegate/internal/values"
)

// DocumentSchemaVersion is the boundary-event schema revision this
// engine emits.
const DocumentSchemaVersion = "boundary_event_v1"

// MaxPayloadBytes caps the serialized payload section at 1 MiB.
const MaxPayloadBytes = 1 * 1024 * 1024

// Document is the single immutable boundary-event record for one probe
// run. Field order here is the wire order; encoding/json preserves
// struct order and sorts map keys, so serialization is deterministic.
type Document struct {
	SchemaVersion             string            `json:"schema_version"`
	SchemaKey                 string            `json:"schema_key"`
	CapabilitiesSchemaVersion string            `json:"capabilities_schema_version"`
	Stack                     map[string]any    `json:"stack"`
	Probe                     ProbeIdentity     `json:"probe"`
	Run                       RunContext        `json:"run"`
	Operation                 Operation         `json:"operation"`
	Result                    Result            `json:"result"`
	Payload                   Payload           `json:"payload"`
	CapabilityContext         CapabilityContext `json:"capability_context"`
}

// ProbeIdentity identifies the probe that emitted the event.
type ProbeIdentity struct {
	ID                     string   `json:"id"`
	Version                string   `json:"version"`
	PrimaryCapabilityID    string   `json:"primary_capability_id"`
	SecondaryCapabilityIDs []string `json:"secondary_capability_ids"`
}

// RunContext captures how the probe was launched.
type RunContext struct {
	Mode          string `json:"mode"`
	WorkspaceRoot string `json:"workspace_root"`
	Command       string `json:"command"`
}

// Operation describes the single sandbox-observable action attempted.
type Operation struct {
	Category string         `json:"category"`
	Verb     string         `json:"verb"`
	Target   string         `json:"target"`
	Args     map[string]any `json:"args"`
}

// Result is the normalized outcome of the attempt.
type Result struct {
	ObservedResult values.Outcome `json:"observed_result"`
	RawExitCode    int            `json:"raw_exit_code"`
	Errno          string         `json:"errno,omitempty"`
	Message        string         `json:"message,omitempty"`
	ErrorDetail    string         `json:"error_detail,omitempty"`
}

// Payload carries bounded output snippets plus a structured raw map.
type Payload struct {
	StdoutSnippet string         `json:"stdout_snippet"`
	StderrSnippet string         `json:"stderr_snippet"`
	Raw           map[string]any `json:"raw"`
}

// CapabilityContext embeds descriptor snapshots resolved at build time.
// Snapshots are copies, so later catalog changes cannot retroactively
// alter an already-emitted event.
type CapabilityContext struct {
	Primary   catalog.Descriptor   `json:"primary"`
	Secondary []catalog.Descriptor `json:"secondary"`
}

// MarshalCanonical serializes the document in its stable wire form.
func (d *Document) MarshalCanonical() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
