// Package catalog loads and indexes versioned capability catalogs.
//
// A catalog is the authoritative list of sandbox-observable behaviors a
// probe may claim to exercise. Loading is fail-fast and side-effect
// free; a loaded index is immutable.
package catalog

// SchemaVersion is the catalog schema revision this engine understands.
const SchemaVersion = "sandbox_catalog_v1"

// Descriptor describes one cataloged capability. Immutable once loaded;
// consumers that embed descriptors in long-lived records must take a
// Clone so later catalog swaps cannot reach into emitted documents.
type Descriptor struct {
	ID            string   `yaml:"id" json:"id"`
	Category      string   `yaml:"category" json:"category"`
	Layer         string   `yaml:"layer" json:"layer"`
	Description   string   `yaml:"description" json:"description"`
	Status        string   `yaml:"status,omitempty" json:"status,omitempty"`
	AllowedOps    []string `yaml:"allowed_operations,omitempty" json:"allowed_operations,omitempty"`
	DeniedOps     []string `yaml:"denied_operations,omitempty" json:"denied_operations,omitempty"`
	MetaOps       []string `yaml:"meta_operations,omitempty" json:"meta_operations,omitempty"`
	AgentControls []string `yaml:"agent_controls,omitempty" json:"agent_controls,omitempty"`
	Citations     []string `yaml:"citations,omitempty" json:"citations,omitempty"`
}

// Clone returns a deep copy of the descriptor.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.AllowedOps = cloneStrings(d.AllowedOps)
	out.DeniedOps = cloneStrings(d.DeniedOps)
	out.MetaOps = cloneStrings(d.MetaOps)
	out.AgentControls = cloneStrings(d.AgentControls)
	out.Citations = cloneStrings(d.Citations)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
