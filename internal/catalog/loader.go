package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/probegate-dev/probegate/internal/contract"
	"github.com/probegate-dev/probegate/internal/values"
	"github.com/probegate-dev/probegate/internal/version"
)

// Catalog key must be a token: letters, digits, underscore, dot, dash.
var catalogKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// document mirrors the on-disk catalog shape.
type document struct {
	SchemaVersion    string `yaml:"schema_version"`
	MinEngineVersion string `yaml:"min_engine_version"`
	Catalog          struct {
		Key string `yaml:"key"`
	} `yaml:"catalog"`
	Scope struct {
		Categories   []string `yaml:"categories"`
		PolicyLayers []string `yaml:"policy_layers"`
	} `yaml:"scope"`
	Capabilities []Descriptor `yaml:"capabilities"`
}

// Load reads and validates a catalog file and returns its index.
// Validation is fail-fast: the first violation is fatal and no partial
// index is produced.
func Load(path string) (*Index, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, contract.NewResourceError("catalog", "failed to open catalog directory", err)
	}
	defer root.Close()

	file, err := root.Open(base)
	if err != nil {
		return nil, contract.NewResourceError("catalog", fmt.Sprintf("failed to open catalog %s", path), err)
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader reads and validates a catalog from an io.Reader.
// This is useful for testing with in-memory YAML data.
func LoadFromReader(r io.Reader) (*Index, error) {
	var doc document

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // Strict parsing - reject unknown fields

	if err := decoder.Decode(&doc); err != nil {
		return nil, &contract.SchemaError{
			Kind:   contract.MalformedDocument,
			Detail: "failed to decode catalog YAML",
			Cause:  err,
		}
	}

	return buildIndex(&doc)
}

func buildIndex(doc *document) (*Index, error) {
	if doc.SchemaVersion != SchemaVersion {
		return nil, contract.NewSchemaError(contract.SchemaVersionMismatch, "schema_version",
			fmt.Sprintf("catalog declares %q, engine expects %q", doc.SchemaVersion, SchemaVersion))
	}

	if doc.Catalog.Key == "" {
		return nil, contract.NewSchemaError(contract.MissingField, "catalog.key", "catalog key is required")
	}
	if !catalogKeyPattern.MatchString(doc.Catalog.Key) {
		return nil, contract.NewSchemaError(contract.InvalidValue, "catalog.key",
			fmt.Sprintf("catalog key %q must match [A-Za-z0-9_.-]+", doc.Catalog.Key))
	}

	if err := version.CheckEngineConstraint(doc.MinEngineVersion); err != nil {
		return nil, contract.NewSchemaError(contract.SchemaVersionMismatch, "min_engine_version", err.Error())
	}

	categories := toSet(doc.Scope.Categories)
	layers := toSet(doc.Scope.PolicyLayers)

	descriptors := make(map[string]Descriptor, len(doc.Capabilities))
	for i, cap := range doc.Capabilities {
		where := fmt.Sprintf("capabilities[%d]", i)

		if cap.ID == "" {
			return nil, contract.NewSchemaError(contract.MissingField, where+".id", "capability id is required")
		}
		if _, err := values.NewCapabilityID(cap.ID); err != nil {
			return nil, contract.NewSchemaError(contract.InvalidValue, where+".id", err.Error())
		}
		if _, dup := descriptors[cap.ID]; dup {
			return nil, contract.NewSchemaError(contract.DuplicateID, where+".id",
				fmt.Sprintf("capability id %q declared more than once", cap.ID))
		}
		if cap.Description == "" {
			return nil, contract.NewSchemaError(contract.MissingField, where+".description",
				fmt.Sprintf("capability %q has no description", cap.ID))
		}
		if !categories[cap.Category] {
			return nil, contract.NewSchemaError(contract.UnknownCategory, where+".category",
				fmt.Sprintf("capability %q uses category %q, not in scope.categories", cap.ID, cap.Category))
		}
		if !layers[cap.Layer] {
			return nil, contract.NewSchemaError(contract.UnknownLayer, where+".layer",
				fmt.Sprintf("capability %q uses layer %q, not in scope.policy_layers", cap.ID, cap.Layer))
		}

		descriptors[cap.ID] = cap.Clone()
	}

	return &Index{
		key:           doc.Catalog.Key,
		schemaVersion: doc.SchemaVersion,
		categories:    cloneStrings(doc.Scope.Categories),
		layers:        cloneStrings(doc.Scope.PolicyLayers),
		descriptors:   descriptors,
	}, nil
}

func toSet(in []string) map[string]bool {
	set := make(map[string]bool, len(in))
	for _, s := range in {
		set[s] = true
	}
	return set
}
