// Package contract defines the error taxonomy and verdict types shared
// by the catalog loader, the event builder, the static linter, and the
// dynamic gate.
package contract

import (
	"fmt"
	"time"
)

// SchemaErrorKind classifies a malformed or incompatible catalog or
// event shape. The kind is stable and machine-readable; Detail carries
// the human-facing explanation.
type SchemaErrorKind string

const (
	// SchemaVersionMismatch indicates a catalog or event declared a schema version
	// the engine does not understand.
	SchemaVersionMismatch SchemaErrorKind = "schema_version_mismatch"
	// MissingField indicates a required field was absent or empty.
	MissingField SchemaErrorKind = "missing_field"
	// DuplicateID indicates a catalog declared the same capability id twice.
	DuplicateID SchemaErrorKind = "duplicate_id"
	// UnknownCategory indicates a capability referenced a category outside the
	// catalog's declared enumeration.
	UnknownCategory SchemaErrorKind = "unknown_category"
	// UnknownLayer indicates a capability referenced a policy layer outside the
	// catalog's declared enumeration.
	UnknownLayer SchemaErrorKind = "unknown_layer"
	// InvalidEnum indicates a field value outside its declared enumeration.
	InvalidEnum SchemaErrorKind = "invalid_enum"
	// InvalidValue indicates a field value that fails to parse or an input
	// the emitter does not recognize.
	InvalidValue SchemaErrorKind = "invalid_value"
	// DuplicateFlag indicates a single-use emitter input was supplied twice.
	DuplicateFlag SchemaErrorKind = "duplicate_flag"
	// ConflictingPayloadSource indicates both inline payload fields and a
	// payload document were supplied.
	ConflictingPayloadSource SchemaErrorKind = "conflicting_payload_source"
	// MissingPayload indicates neither payload source was supplied.
	MissingPayload SchemaErrorKind = "missing_payload"
	// PayloadTooLarge indicates the serialized payload exceeded the size cap.
	PayloadTooLarge SchemaErrorKind = "payload_too_large"
	// MalformedDocument indicates a structured fragment failed to deserialize
	// into the expected shape.
	MalformedDocument SchemaErrorKind = "malformed_document"
)

// SchemaError indicates a malformed or incompatible catalog or event shape.
// Field names the offending input where one is identifiable.
type SchemaError struct {
	Kind   SchemaErrorKind
	Field  string
	Detail string
	Cause  error
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema error (%s): field %q: %s", e.Kind, e.Field, e.Detail)
	}
	return fmt.Sprintf("schema error (%s): %s", e.Kind, e.Detail)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// NewSchemaError creates a new schema error.
func NewSchemaError(kind SchemaErrorKind, field, detail string) *SchemaError {
	return &SchemaError{Kind: kind, Field: field, Detail: detail}
}

// UnknownCapabilityError indicates an id that does not resolve in the
// active capability index.
type UnknownCapabilityError struct {
	ID      string
	Catalog string
}

func (e *UnknownCapabilityError) Error() string {
	if e.Catalog != "" {
		return fmt.Sprintf("unknown capability %q in catalog %q", e.ID, e.Catalog)
	}
	return fmt.Sprintf("unknown capability %q", e.ID)
}

// IdentityMismatchError indicates declared and observed probe metadata disagree.
type IdentityMismatchError struct {
	Field    string
	Declared string
	Observed string
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("identity mismatch: %s declared %q but observed %q", e.Field, e.Declared, e.Observed)
}

// TimeoutError indicates the gate's wall-clock execution budget expired.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution budget of %s exceeded, probe process tree terminated", e.Budget)
}

// ResourceError indicates a shadow-root lifecycle failure or a missing helper.
type ResourceError struct {
	Resource string
	Message  string
	Cause    error
}

func (e *ResourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resource error (%s): %s: %v", e.Resource, e.Message, e.Cause)
	}
	return fmt.Sprintf("resource error (%s): %s", e.Resource, e.Message)
}

func (e *ResourceError) Unwrap() error {
	return e.Cause
}

// NewResourceError creates a new resource error.
func NewResourceError(resource, message string, cause error) *ResourceError {
	return &ResourceError{Resource: resource, Message: message, Cause: cause}
}

// MissingDefaultsManifestError indicates catalog resolution had neither an
// explicit path nor a defaults table entry to fall back on.
type MissingDefaultsManifestError struct {
	Requested string
}

func (e *MissingDefaultsManifestError) Error() string {
	if e.Requested != "" {
		return fmt.Sprintf("no catalog path for %q and no defaults manifest configured", e.Requested)
	}
	return "no catalog path given and no defaults manifest configured"
}
