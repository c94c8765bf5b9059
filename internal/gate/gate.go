package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/probegate-dev/probegate/internal/contract"
	"github.com/probegate-dev/probegate/internal/lint"
	"github.com/probegate-dev/probegate/internal/values"
)

// Check identifiers for dynamic post-conditions.
const (
	CheckExecution       = "execution"
	CheckExitStatus      = "exit-status"
	CheckInvocationCount = "invocation-count"
	CheckEmitter         = "emitter-validation"
	CheckIdentity        = "identity"
)

// Environment variables exported to the mode-runner.
const (
	ModeEnv          = "PROBE_MODE"
	WorkspaceRootEnv = "PROBE_WORKSPACE_ROOT"
	SandboxHintEnv   = "SANDBOX_MODE"
)

// Config holds the gate's collaborator wiring.
type Config struct {
	HarnessDir    string        // directory with the mode-runner, emitter, and helpers
	CatalogPath   string        // catalog the stand-in resolves capabilities against
	ModeRunner    string        // mode-runner entrypoint name (default run_probe)
	EmitterName   string        // production emitter name (default emit_boundary_event)
	Timeout       time.Duration // wall-clock budget per probe run (default 30s)
	WorkspaceRoot string
	SandboxHint   string
	SelfPath      string // probegate binary for the shim; defaults to os.Executable()
}

func (c *Config) applyDefaults() error {
	if c.ModeRunner == "" {
		c.ModeRunner = "run_probe"
	}
	if c.EmitterName == "" {
		c.EmitterName = "emit_boundary_event"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.SelfPath == "" {
		self, err := os.Executable()
		if err != nil {
			return contract.NewResourceError("gate", "failed to locate own binary for the emitter shim", err)
		}
		c.SelfPath = self
	}
	return nil
}

// Result is one probe+mode gate verdict plus its supporting evidence.
// Ephemeral: reported, never persisted.
type Result struct {
	Probe       string            `json:"probe" yaml:"probe"`
	Mode        string            `json:"mode" yaml:"mode"`
	RunID       values.GateRunID  `json:"run_id" yaml:"run_id"`
	Status      values.Status     `json:"status" yaml:"status"`
	Violations  []contract.Violation `json:"violations,omitempty" yaml:"violations,omitempty"`
	Declaration lint.Declaration  `json:"-" yaml:"-"`
	Run         RunResult         `json:"-" yaml:"-"`
	Duration    time.Duration     `json:"-" yaml:"-"`
	DurationMS  int64             `json:"duration_ms" yaml:"duration_ms"`
}

// Gate verifies one probe at a time against the dynamic contract.
// Distinct probes may be gated concurrently; each Verify call owns its
// shadow root and shares nothing mutable with other calls.
type Gate struct {
	linter   *lint.Linter
	executor SandboxedExecutor
	cfg      Config
}

// New creates a gate. The linter precondition and executor can be
// replaced for testing.
func New(cfg Config, opts ...Option) (*Gate, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	g := &Gate{
		linter:   lint.New(),
		executor: NewExecutor(),
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Option customizes a Gate.
type Option func(*Gate)

// WithLinter replaces the static precondition linter.
func WithLinter(l *lint.Linter) Option {
	return func(g *Gate) { g.linter = l }
}

// WithExecutor replaces the sandboxed executor.
func WithExecutor(e SandboxedExecutor) Option {
	return func(g *Gate) { g.executor = e }
}

// Verify re-executes one probe in one mode and checks its contract.
// The error return is reserved for harness-level resource failures;
// probe defects land in the result's violation list.
func (g *Gate) Verify(ctx context.Context, probePath, mode string) (*Result, error) {
	runID := values.NewGateRunID()
	start := time.Now()
	result := &Result{Probe: probePath, Mode: mode, RunID: runID, Status: values.StatusPass}
	verdict := contract.NewVerdict()
	defer func() {
		result.Status = verdict.Status
		result.Violations = verdict.Violations
		result.Duration = time.Since(start)
		result.DurationMS = result.Duration.Milliseconds()
	}()

	if _, err := values.NewMode(mode); err != nil {
		return nil, contract.NewResourceError("gate", "invalid mode", err)
	}

	// Static precondition: a probe that fails the linter is never executed.
	decl, lintVerdict, err := g.linter.Lint(ctx, probePath)
	if err != nil {
		return nil, err
	}
	result.Declaration = decl
	if !lintVerdict.Passed() {
		verdict.Merge(lintVerdict)
		return result, nil
	}

	shadow, err := BuildShadowRoot(runID, g.cfg.HarnessDir, probePath, g.cfg.EmitterName)
	if err != nil {
		return nil, err
	}
	// Removal happens on every exit path: success, failure, timeout,
	// and external cancellation alike.
	defer func() {
		if cerr := shadow.Close(); cerr != nil {
			slog.Warn("shadow root cleanup failed", "run_id", runID.String(), "error", cerr)
		}
	}()

	runner, err := shadow.HelperPath(g.cfg.ModeRunner)
	if err != nil {
		return nil, err
	}

	run, runErr := g.executor.Run(ctx, RunSpec{
		Entrypoint: runner,
		Args:       []string{mode, shadow.ProbePath},
		Dir:        shadow.TreeDir(),
		Env: []string{
			ModeEnv + "=" + mode,
			WorkspaceRootEnv + "=" + g.cfg.WorkspaceRoot,
			SandboxHintEnv + "=" + g.cfg.SandboxHint,
			SelfEnv + "=" + g.cfg.SelfPath,
			RecordDirEnv + "=" + shadow.StateDir,
			CatalogEnv + "=" + g.cfg.CatalogPath,
		},
		Timeout: g.cfg.Timeout,
	})
	result.Run = run

	if runErr != nil {
		var timeout *contract.TimeoutError
		if errors.As(runErr, &timeout) {
			verdict.AddError(CheckExecution, timeout)
			return result, nil
		}
		// Cancellation and launch failures are the caller's problem,
		// not the probe's; cleanup already ran via the deferred Close.
		return nil, runErr
	}

	invocations, err := NewRecorder(shadow.StateDir).Invocations()
	if err != nil {
		return nil, err
	}

	// Post-conditions are independent: every broken one is reported.
	g.checkExitStatus(verdict, run)
	g.checkInvocations(verdict, decl, invocations)
	return result, nil
}

// checkExitStatus enforces the exit-zero convention: a denial is a
// successful observation, so any non-zero exit is a harness-level
// contract violation, never an inferred sandbox outcome.
func (g *Gate) checkExitStatus(verdict *contract.Verdict, run RunResult) {
	if run.ExitCode != 0 {
		verdict.Add(CheckExitStatus,
			fmt.Sprintf("probe exited %d; a well-behaved probe exits 0 after emitting, whatever it observed", run.ExitCode))
	}
}

func (g *Gate) checkInvocations(verdict *contract.Verdict, decl lint.Declaration, invocations []Invocation) {
	switch {
	case len(invocations) == 0:
		verdict.Add(CheckInvocationCount, "never emitted")
		return
	case len(invocations) > 1:
		verdict.Add(CheckInvocationCount, fmt.Sprintf("emitted more than once (%d calls)", len(invocations)))
	}

	first := invocations[0]
	if first.Status.IsFailure() {
		verdict.Add(CheckEmitter, first.FirstViolation)
	}

	if first.ProbeID != decl.DeclaredName {
		verdict.AddError(CheckIdentity, &contract.IdentityMismatchError{
			Field: "probe id", Declared: decl.DeclaredName, Observed: first.ProbeID,
		})
	}
	if first.PrimaryCapabilityID != decl.DeclaredCapability {
		verdict.AddError(CheckIdentity, &contract.IdentityMismatchError{
			Field: "primary capability id", Declared: decl.DeclaredCapability, Observed: first.PrimaryCapabilityID,
		})
	}
}
