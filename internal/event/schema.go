package event

import (
	_ "embed"
	"encoding/json"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/probegate-dev/probegate/internal/contract"
)

//go:embed boundary_event.schema.json
var schemaSource string

var documentSchema = jsonschema.MustCompileString("boundary_event_v1.json", schemaSource)

// ValidateDocument checks a document against the boundary-event JSON
// Schema. The builder runs this on every document it assembles, so an
// emitted event always re-validates against the same rule set.
func ValidateDocument(doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return &contract.SchemaError{Kind: contract.MalformedDocument, Detail: "failed to serialize document", Cause: err}
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return &contract.SchemaError{Kind: contract.MalformedDocument, Detail: "failed to reload document", Cause: err}
	}

	if err := documentSchema.Validate(instance); err != nil {
		return &contract.SchemaError{Kind: contract.MalformedDocument, Detail: "document failed schema validation", Cause: err}
	}
	return nil
}

// ValidateBytes checks an already serialized document against the
// boundary-event JSON Schema.
func ValidateBytes(data []byte) error {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return &contract.SchemaError{Kind: contract.MalformedDocument, Detail: "document is not valid JSON", Cause: err}
	}
	if err := documentSchema.Validate(instance); err != nil {
		return &contract.SchemaError{Kind: contract.MalformedDocument, Detail: "document failed schema validation", Cause: err}
	}
	return nil
}
