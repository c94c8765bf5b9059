package lint

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// dryParseBudget bounds the shell parser; parsing is near-instant, the
// budget only guards against a wedged interpreter binary.
const dryParseBudget = 10 * time.Second

// SyntaxChecker verifies that probe source parses without executing it.
type SyntaxChecker interface {
	Check(ctx context.Context, path string) error
}

// ShellSyntaxChecker dry-parses a probe with the interpreter's no-exec
// flag (bash -n). The probe's commands are parsed but never run.
type ShellSyntaxChecker struct {
	Shell string
}

// NewShellSyntaxChecker creates a checker using bash.
func NewShellSyntaxChecker() *ShellSyntaxChecker {
	return &ShellSyntaxChecker{Shell: "bash"}
}

// Check runs the dry parse and maps parser diagnostics to an error.
func (c *ShellSyntaxChecker) Check(ctx context.Context, path string) error {
	parseCtx, cancel := context.WithTimeout(ctx, dryParseBudget)
	defer cancel()

	cmd := exec.CommandContext(parseCtx, c.Shell, "-n", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = err.Error()
		}
		return fmt.Errorf("source does not parse: %s", firstLine(diag))
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// NoopSyntaxChecker accepts everything. Used by tests that exercise the
// other checks without depending on a shell binary.
type NoopSyntaxChecker struct{}

// Check always succeeds.
func (NoopSyntaxChecker) Check(context.Context, string) error {
	return nil
}
