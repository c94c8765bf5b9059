// Package gate re-executes probes in isolation and verifies their
// single emitted boundary call against the full schema rule set.
package gate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/probegate-dev/probegate/internal/contract"
	"github.com/probegate-dev/probegate/internal/values"
)

// Environment variables wiring the instrumented stand-in back to the
// gate run that spawned it.
const (
	// RecordDirEnv points the emitter at the gate's private state area.
	// Its presence is what switches the emitter into record mode.
	RecordDirEnv = "PROBEGATE_RECORD_DIR"
	// SelfEnv carries the path of the probegate binary for the shim.
	SelfEnv = "PROBEGATE_SELF"
	// CatalogEnv carries the catalog path so the stand-in resolves
	// capabilities against the same index as the gate.
	CatalogEnv = "PROBEGATE_CATALOG"
)

// Invocation is one recorded stand-in call. The stand-in re-applies the
// full builder rule set but records instead of emitting.
type Invocation struct {
	Sequence            int           `json:"sequence"`
	Args                []string      `json:"args"`
	Status              values.Status `json:"status"`
	FirstViolation      string        `json:"first_violation,omitempty"`
	ProbeID             string        `json:"probe_id,omitempty"`
	PrimaryCapabilityID string        `json:"primary_capability_id,omitempty"`
}

// Recorder reads and writes invocation records in a gate run's private
// state directory. Sequence numbers come from exclusive file creation,
// so even a probe that forks emitters concurrently cannot collapse two
// invocations into one record.
type Recorder struct {
	dir string
}

// NewRecorder creates a recorder over the given state directory.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir}
}

// Record persists one invocation, assigning the next free sequence.
func (r *Recorder) Record(inv Invocation) error {
	for seq := 1; ; seq++ {
		path := filepath.Join(r.dir, fmt.Sprintf("invocation-%04d.json", seq))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return contract.NewResourceError("recorder", "failed to create invocation record", err)
		}

		inv.Sequence = seq
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(inv); err != nil {
			f.Close()
			return contract.NewResourceError("recorder", "failed to write invocation record", err)
		}
		return f.Close()
	}
}

// Invocations returns all recorded invocations in sequence order.
func (r *Recorder) Invocations() ([]Invocation, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, contract.NewResourceError("recorder", "failed to read state directory", err)
	}

	var invocations []Invocation
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return nil, contract.NewResourceError("recorder", "failed to read invocation record", err)
		}
		var inv Invocation
		if err := json.Unmarshal(data, &inv); err != nil {
			return nil, contract.NewResourceError("recorder", fmt.Sprintf("corrupt invocation record %s", entry.Name()), err)
		}
		invocations = append(invocations, inv)
	}

	sort.Slice(invocations, func(i, j int) bool {
		return invocations[i].Sequence < invocations[j].Sequence
	})
	return invocations, nil
}
