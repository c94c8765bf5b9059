package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/probegate-dev/probegate/internal/catalog"
	"github.com/probegate-dev/probegate/internal/config"
	"github.com/probegate-dev/probegate/internal/gate"
	"github.com/probegate-dev/probegate/internal/lint"
	"github.com/probegate-dev/probegate/internal/output"
	"github.com/probegate-dev/probegate/internal/version"
)

var (
	gateCatalog       string
	gateHarnessDir    string
	gateModes         []string
	gateTimeout       time.Duration
	gateWorkspaceRoot string
	gateSandboxHint   string
	gateFormat        string
	gateOutFile       string
	gateFilterExpr    string
	gateMaxConcurrent int
)

// ProbeEnv exposes probe metadata for expression evaluation.
type ProbeEnv struct {
	ID         string `expr:"id"`
	Name       string `expr:"name"`
	Capability string `expr:"capability"`
	Category   string `expr:"category"`
	Mode       string `expr:"mode"`
}

// gateCmd represents the gate command.
var gateCmd = &cobra.Command{
	Use:   "gate <probe>...",
	Short: "Re-execute probes and verify the dynamic contract",
	Long: `Run each probe through the full gate: static lint, then a monitored
re-execution inside a throwaway shadow root where the emitter is replaced
by a recording stand-in. A probe passes only if it emits exactly once,
the emitted arguments build a schema-valid boundary event, the emitted
identity matches its declarations, and it exits 0.

Filtering:
  --filter "capability == 'cap_net_outbound_http'"   Gate matching probes only
  --filter "category == 'fs' && mode == 'restricted'"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGateAction(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(gateCmd)

	gateCmd.Flags().StringVar(&gateCatalog, "catalog", "", "Capability catalog: a configured name or a path")
	gateCmd.Flags().StringVar(&gateHarnessDir, "harness", "", "Harness directory with the mode-runner and emitter")
	gateCmd.Flags().StringSliceVar(&gateModes, "mode", nil, "Modes to gate under (default: restricted)")
	gateCmd.Flags().DurationVar(&gateTimeout, "timeout", 0, "Wall-clock budget per probe run (default: 30s)")
	gateCmd.Flags().StringVar(&gateWorkspaceRoot, "workspace-root", "", "Workspace root advertised to probes")
	gateCmd.Flags().StringVar(&gateSandboxHint, "sandbox", "", "Sandbox hint forwarded to probes verbatim")
	gateCmd.Flags().StringVar(&gateFormat, "format", "table", "Output format: table, json, yaml, sarif")
	gateCmd.Flags().StringVarP(&gateOutFile, "output", "o", "", "Output file path (default: stdout)")
	gateCmd.Flags().StringVar(&gateFilterExpr, "filter", "", "Filter expression over id, name, capability, category, mode")
	gateCmd.Flags().IntVar(&gateMaxConcurrent, "max-concurrent", runtime.NumCPU(), "Maximum probes gated in parallel")
}

// runGateAction implements the core logic for the gate command.
func runGateAction(ctx context.Context, args []string) error {
	sys, err := loadSystemConfig()
	if err != nil {
		slog.Debug("failed to load system config, using defaults", "error", err)
		sys = &config.SystemConfig{}
	}

	repo := catalog.NewRepository()
	idx, catalogPath, err := resolveCatalog(gateCatalog, sys, repo)
	if err != nil {
		return err
	}
	slog.Info("catalog loaded", "path", catalogPath, "capabilities", idx.Len())

	probes, err := collectProbes(args)
	if err != nil {
		return err
	}

	harnessDir := gateHarnessDir
	if harnessDir == "" {
		harnessDir = sys.Gate.HarnessDir
	}
	if harnessDir == "" {
		return fmt.Errorf("no harness directory: pass --harness or set gate.harness_dir in the config")
	}

	modes := gateModes
	if len(modes) == 0 {
		modes = sys.Gate.Modes
	}
	if len(modes) == 0 {
		modes = []string{"restricted"}
	}

	timeout := gateTimeout
	if timeout == 0 {
		timeout = sys.Gate.Timeout
	}
	workspaceRoot := gateWorkspaceRoot
	if workspaceRoot == "" {
		workspaceRoot = sys.Gate.WorkspaceRoot
	}
	sandboxHint := gateSandboxHint
	if sandboxHint == "" {
		sandboxHint = sys.Gate.SandboxHint
	}

	var filter *vm.Program
	if gateFilterExpr != "" {
		filter, err = expr.Compile(gateFilterExpr, expr.Env(ProbeEnv{}), expr.AsBool())
		if err != nil {
			return fmt.Errorf("invalid --filter expression: %w\nExample: capability == 'cap_net_outbound_http' && mode == 'restricted'", err)
		}
	}

	g, err := gate.New(gate.Config{
		HarnessDir:    harnessDir,
		CatalogPath:   catalogPath,
		Timeout:       timeout,
		WorkspaceRoot: workspaceRoot,
		SandboxHint:   sandboxHint,
	})
	if err != nil {
		return err
	}

	slog.Info("gating probes", "probes", len(probes), "modes", modes)

	report := gate.NewReport(version.Get().Version)
	group, groupCtx := errgroup.WithContext(ctx)
	if gateMaxConcurrent > 0 {
		group.SetLimit(gateMaxConcurrent)
	}

	linter := lint.New()
	for _, probe := range probes {
		for _, mode := range modes {
			if filter != nil {
				keep, ferr := matchesFilter(ctx, linter, filter, idx, probe, mode)
				if ferr != nil {
					return ferr
				}
				if !keep {
					slog.Debug("probe excluded by filter", "probe", probe, "mode", mode)
					continue
				}
			}

			group.Go(func() error {
				result, verr := g.Verify(groupCtx, probe, mode)
				if verr != nil {
					return fmt.Errorf("gating %s in mode %s: %w", probe, mode, verr)
				}
				report.Add(*result)
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return err
	}
	report.Finalize()

	writer, closeOutput, err := openOutput(gateOutFile)
	if err != nil {
		return err
	}
	defer closeOutput()
	if gateOutFile != "" {
		slog.Info("writing output", "file", gateOutFile, "format", gateFormat)
	}

	formatter, err := output.New(gateFormat, writer, output.Options{Indent: true})
	if err != nil {
		return err
	}
	if err := formatter.Format(report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if report.HasFailures() {
		return fmt.Errorf("gate failed: %d passed, %d failed",
			report.Summary.PassedRuns, report.Summary.FailedRuns)
	}
	return nil
}

// matchesFilter evaluates the --filter expression against one
// probe+mode pair. The identity comes from a lint pass over the source;
// undeclared or uncataloged fields evaluate as empty strings so the
// expression still runs.
func matchesFilter(ctx context.Context, linter *lint.Linter, filter *vm.Program, idx *catalog.Index, probe, mode string) (bool, error) {
	decl, _, err := linter.Lint(ctx, probe)
	if err != nil {
		return false, err
	}

	env := ProbeEnv{
		ID:         decl.DerivedID,
		Name:       decl.DeclaredName,
		Capability: decl.DeclaredCapability,
		Mode:       mode,
	}
	if desc, lookupErr := idx.Lookup(decl.DeclaredCapability); lookupErr == nil {
		env.Category = desc.Category
	}

	result, err := expr.Run(filter, env)
	if err != nil {
		return false, fmt.Errorf("filter expression error on %s: %w", probe, err)
	}
	return result.(bool), nil
}
