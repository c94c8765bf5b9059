package gate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/probegate-dev/probegate/internal/contract"
)

// RunSpec describes one supervised probe execution.
type RunSpec struct {
	Entrypoint string
	Args       []string
	Dir        string
	Env        []string // appended to the inherited environment
	Timeout    time.Duration
}

// RunResult captures what the child process tree did.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// SandboxedExecutor runs a probe through the mode-runner under a
// wall-clock budget. Implementations must terminate the entire child
// process tree on expiry rather than hanging the caller.
type SandboxedExecutor interface {
	Run(ctx context.Context, spec RunSpec) (RunResult, error)
}

// processExecutor is the default executor: one child process group per
// run, killed whole on timeout or cancellation.
type processExecutor struct{}

// NewExecutor creates the default process executor.
func NewExecutor() SandboxedExecutor {
	return processExecutor{}
}

func (processExecutor) Run(ctx context.Context, spec RunSpec) (RunResult, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Entrypoint, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)

	// The probe may fork; a plain Process.Kill would orphan the forks
	// and leave the shadow root pinned. Run the tree as its own process
	// group and kill the group.
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killTree(cmd) }
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		return result, &contract.TimeoutError{Budget: spec.Timeout}
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, contract.NewResourceError("executor", "failed to launch mode-runner", err)
	}
	return result, nil
}
