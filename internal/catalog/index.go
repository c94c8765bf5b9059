package catalog

import (
	"sort"

	"github.com/probegate-dev/probegate/internal/contract"
)

// Index maps capability ids to descriptors for one loaded catalog.
// Built only by Load; read-only afterwards.
type Index struct {
	key           string
	schemaVersion string
	categories    []string
	layers        []string
	descriptors   map[string]Descriptor
}

// Key returns the catalog key (e.g. "sandbox_v1").
func (i *Index) Key() string {
	return i.key
}

// SchemaVersion returns the schema revision the catalog declared.
func (i *Index) SchemaVersion() string {
	return i.schemaVersion
}

// Categories returns the catalog's declared category enumeration.
func (i *Index) Categories() []string {
	return cloneStrings(i.categories)
}

// Layers returns the catalog's declared policy-layer enumeration.
func (i *Index) Layers() []string {
	return cloneStrings(i.layers)
}

// Len returns the number of cataloged capabilities.
func (i *Index) Len() int {
	return len(i.descriptors)
}

// IDs returns all capability ids in lexical order.
func (i *Index) IDs() []string {
	ids := make([]string, 0, len(i.descriptors))
	for id := range i.descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup resolves a capability id to a copy of its descriptor.
func (i *Index) Lookup(id string) (Descriptor, error) {
	d, ok := i.descriptors[id]
	if !ok {
		return Descriptor{}, &contract.UnknownCapabilityError{ID: id, Catalog: i.key}
	}
	return d.Clone(), nil
}
