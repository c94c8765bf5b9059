package event

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/probegate-dev/probegate/internal/catalog"
	"github.com/probegate-dev/probegate/internal/contract"
	"github.com/probegate-dev/probegate/internal/values"
)

// Builder turns one validated input set into one boundary-event
// document. Validation is fail-fast: the first violation is terminal
// for the call and no partial document is produced.
type Builder struct {
	index *catalog.Index
	stack map[string]any
}

// NewBuilder creates a builder resolving capabilities through idx.
func NewBuilder(idx *catalog.Index) *Builder {
	return &Builder{index: idx}
}

// WithStack sets the externally supplied host/sandbox fingerprint used
// when the call itself carries none.
func (b *Builder) WithStack(stack map[string]any) *Builder {
	b.stack = stack
	return b
}

// requiredField pairs an emitter input name with its value for the
// non-empty checks, in reporting order.
type requiredField struct {
	name  string
	value string
}

// Build validates the input set and assembles the document.
func (b *Builder) Build(in Inputs) (*Document, error) {
	required := []requiredField{
		{"--mode", in.Mode},
		{"--probe-id", in.ProbeID},
		{"--probe-version", in.ProbeVersion},
		{"--capability", in.PrimaryCapabilityID},
		{"--command", in.Command},
		{"--op-category", in.OpCategory},
		{"--op-verb", in.OpVerb},
		{"--op-target", in.OpTarget},
		{"--status", in.Status},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, contract.NewSchemaError(contract.MissingField, f.name, "required input is empty")
		}
	}

	if _, err := values.NewProbeName(in.ProbeID); err != nil {
		return nil, contract.NewSchemaError(contract.InvalidValue, "--probe-id", err.Error())
	}

	outcome := values.Outcome(in.Status)
	if err := outcome.Validate(); err != nil {
		return nil, contract.NewSchemaError(contract.InvalidEnum, "--status", err.Error())
	}

	exitCode := 0
	if in.RawExitCode != "" {
		parsed, err := strconv.Atoi(in.RawExitCode)
		if err != nil {
			return nil, contract.NewSchemaError(contract.InvalidValue, "--raw-exit-code",
				fmt.Sprintf("%q does not parse as an integer", in.RawExitCode))
		}
		exitCode = parsed
	}

	payload, err := assemblePayload(in)
	if err != nil {
		return nil, err
	}

	opArgs, err := parseObject("--op-args", in.OpArgsJSON)
	if err != nil {
		return nil, err
	}

	stack, err := b.resolveStack(in)
	if err != nil {
		return nil, err
	}

	capCtx, err := b.resolveCapabilities(in)
	if err != nil {
		return nil, err
	}

	secondaries := in.SecondaryCapabilityIDs
	if secondaries == nil {
		secondaries = []string{}
	}

	doc := &Document{
		SchemaVersion:             DocumentSchemaVersion,
		SchemaKey:                 b.index.Key(),
		CapabilitiesSchemaVersion: b.index.SchemaVersion(),
		Stack:                     stack,
		Probe: ProbeIdentity{
			ID:                     in.ProbeID,
			Version:                in.ProbeVersion,
			PrimaryCapabilityID:    in.PrimaryCapabilityID,
			SecondaryCapabilityIDs: secondaries,
		},
		Run: RunContext{
			Mode:          in.Mode,
			WorkspaceRoot: in.WorkspaceRoot,
			Command:       in.Command,
		},
		Operation: Operation{
			Category: in.OpCategory,
			Verb:     in.OpVerb,
			Target:   in.OpTarget,
			Args:     opArgs,
		},
		Result: Result{
			ObservedResult: outcome,
			RawExitCode:    exitCode,
			Errno:          in.Errno,
			Message:        in.Message,
			ErrorDetail:    in.ErrorDetail,
		},
		Payload:           *payload,
		CapabilityContext: *capCtx,
	}

	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// assemblePayload enforces the exactly-one-source rule and the size cap.
func assemblePayload(in Inputs) (*Payload, error) {
	inline := in.StdoutSnippet != nil || in.StderrSnippet != nil || in.RawJSON != nil
	document := in.PayloadJSON != nil

	switch {
	case inline && document:
		return nil, contract.NewSchemaError(contract.ConflictingPayloadSource, "--payload",
			"inline payload fields and a payload document cannot both be supplied")
	case !inline && !document:
		return nil, contract.NewSchemaError(contract.MissingPayload, "--payload",
			"either inline payload fields or a payload document is required")
	}

	var payload Payload
	if document {
		parsed, err := parsePayloadDocument(*in.PayloadJSON)
		if err != nil {
			return nil, err
		}
		payload = *parsed
	} else {
		payload.Raw = map[string]any{}
		if in.StdoutSnippet != nil {
			payload.StdoutSnippet = *in.StdoutSnippet
		}
		if in.StderrSnippet != nil {
			payload.StderrSnippet = *in.StderrSnippet
		}
		if in.RawJSON != nil {
			raw, err := parseObject("--raw", *in.RawJSON)
			if err != nil {
				return nil, err
			}
			payload.Raw = raw
		}
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return nil, contract.NewSchemaError(contract.MalformedDocument, "--payload", err.Error())
	}
	if len(serialized) > MaxPayloadBytes {
		return nil, contract.NewSchemaError(contract.PayloadTooLarge, "--payload",
			fmt.Sprintf("serialized payload is %d bytes, limit is %d", len(serialized), MaxPayloadBytes))
	}
	return &payload, nil
}

// parsePayloadDocument deserializes a payload document: an object with
// optional string stdout_snippet/stderr_snippet and a raw object.
func parsePayloadDocument(raw string) (*Payload, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, &contract.SchemaError{
			Kind: contract.MalformedDocument, Field: "--payload",
			Detail: "payload document is not a JSON object", Cause: err,
		}
	}

	var payload Payload
	for _, snippet := range []struct {
		key  string
		dest *string
	}{
		{"stdout_snippet", &payload.StdoutSnippet},
		{"stderr_snippet", &payload.StderrSnippet},
	} {
		fragment, ok := obj[snippet.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(fragment, snippet.dest); err != nil {
			return nil, contract.NewSchemaError(contract.MalformedDocument, "--payload",
				fmt.Sprintf("payload %s must be a string when present", snippet.key))
		}
	}

	rawFragment, ok := obj["raw"]
	if !ok {
		return nil, contract.NewSchemaError(contract.MalformedDocument, "--payload",
			"payload document is missing the raw object")
	}
	if err := json.Unmarshal(rawFragment, &payload.Raw); err != nil || payload.Raw == nil {
		return nil, contract.NewSchemaError(contract.MalformedDocument, "--payload",
			"payload raw must be a JSON object")
	}
	return &payload, nil
}

// parseObject parses an inline JSON fragment that must be an object.
// An absent fragment yields an empty object.
func parseObject(field, fragment string) (map[string]any, error) {
	if fragment == "" {
		return map[string]any{}, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(fragment), &obj); err != nil {
		return nil, &contract.SchemaError{
			Kind: contract.MalformedDocument, Field: field,
			Detail: "fragment is not a JSON object", Cause: err,
		}
	}
	if obj == nil {
		return nil, contract.NewSchemaError(contract.MalformedDocument, field, "fragment must be a JSON object, not null")
	}
	return obj, nil
}

func (b *Builder) resolveStack(in Inputs) (map[string]any, error) {
	if in.StackJSON != "" {
		return parseObject("--stack", in.StackJSON)
	}
	if b.stack != nil {
		return b.stack, nil
	}
	return map[string]any{}, nil
}

func (b *Builder) resolveCapabilities(in Inputs) (*CapabilityContext, error) {
	primaryID, err := values.NewCapabilityID(in.PrimaryCapabilityID)
	if err != nil {
		return nil, contract.NewSchemaError(contract.InvalidValue, "--capability", err.Error())
	}
	primary, err := b.index.Lookup(primaryID.String())
	if err != nil {
		return nil, err
	}

	secondary := make([]catalog.Descriptor, 0, len(in.SecondaryCapabilityIDs))
	for _, id := range in.SecondaryCapabilityIDs {
		secondaryID, err := values.NewCapabilityID(id)
		if err != nil {
			return nil, contract.NewSchemaError(contract.InvalidValue, "--secondary-capability", err.Error())
		}
		d, err := b.index.Lookup(secondaryID.String())
		if err != nil {
			return nil, err
		}
		secondary = append(secondary, d)
	}

	return &CapabilityContext{Primary: primary, Secondary: secondary}, nil
}
