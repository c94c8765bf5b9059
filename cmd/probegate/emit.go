package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/probegate-dev/probegate/internal/catalog"
	"github.com/probegate-dev/probegate/internal/event"
	"github.com/probegate-dev/probegate/internal/gate"
	"github.com/probegate-dev/probegate/internal/values"
)

// emitCmd builds a boundary event from emitter flags. It doubles as
// the recording stand-in: when the gate's shadow root exports a record
// directory, the call is journaled instead of printed, and the command
// exits 0 no matter what so the probe's own exit status stays the only
// signal the gate judges.
var emitCmd = &cobra.Command{
	Use:   "emit [emitter flags]",
	Short: "Build a boundary event from flat emitter arguments",
	Long: `Validate emitter arguments and assemble the canonical boundary event
document. Every input is checked before anything is produced: required
fields, enum membership, exactly one payload source, payload size, and
capability ids against the catalog. On success the document is printed
as stable, deterministic JSON.`,
	DisableFlagParsing: true,
	RunE: func(_ *cobra.Command, args []string) error {
		if recordDir := os.Getenv(gate.RecordDirEnv); recordDir != "" {
			return runEmitRecord(recordDir, args)
		}
		return runEmitProduction(args)
	},
}

func init() {
	rootCmd.AddCommand(emitCmd)
}

// runEmitProduction builds and prints the document, failing loudly on
// any contract problem.
func runEmitProduction(args []string) error {
	idx, err := emitterCatalog()
	if err != nil {
		return err
	}

	in, err := event.ParseArgs(args)
	if err != nil {
		return err
	}

	doc, err := event.NewBuilder(idx).Build(in)
	if err != nil {
		return err
	}

	data, err := doc.MarshalCanonical()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// runEmitRecord journals the call for the gate's post-conditions.
// Build errors become a recorded FAIL, never a non-zero exit.
func runEmitRecord(recordDir string, args []string) error {
	inv := gate.Invocation{
		Args:   args,
		Status: values.StatusPass,
	}

	in, parseErr := event.ParseArgs(args)
	inv.ProbeID = in.ProbeID
	inv.PrimaryCapabilityID = in.PrimaryCapabilityID

	buildErr := parseErr
	if buildErr == nil {
		var idx *catalog.Index
		idx, buildErr = emitterCatalog()
		if buildErr == nil {
			_, buildErr = event.NewBuilder(idx).Build(in)
		}
	}
	if buildErr != nil {
		inv.Status = values.StatusFail
		inv.FirstViolation = buildErr.Error()
	}

	if err := gate.NewRecorder(recordDir).Record(inv); err != nil {
		// Surfaces as "never emitted" at the gate; still exit 0 here.
		fmt.Fprintf(os.Stderr, "probegate: failed to record emitter call: %v\n", err)
	}
	return nil
}

// emitterCatalog loads the catalog the event is resolved against. The
// gate exports the path; outside a gate run the configured default
// applies.
func emitterCatalog() (*catalog.Index, error) {
	if path := os.Getenv(gate.CatalogEnv); path != "" {
		return catalog.Load(path)
	}

	sys, err := loadSystemConfig()
	if err != nil {
		return nil, err
	}
	idx, _, err := resolveCatalog("", sys, catalog.NewRepository())
	return idx, err
}
