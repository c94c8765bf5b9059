package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/probegate-dev/probegate/internal/lint"
)

// lintCmd represents the lint command.
var lintCmd = &cobra.Command{
	Use:   "lint <probe>...",
	Short: "Check probes against the static contract",
	Long: `Lint probe source without executing it. Every violated rule is
reported, not just the first one found:

  shebang       first line must be ` + lint.InterpreterMarker + `
  strict-mode   errexit, nounset, and pipefail before any other statement
  syntax        source must survive a dry parse
  probe-name    PROBE_NAME declared and matching the file name
  capability    PROBE_CAPABILITY declared

Arguments may be probe files or directories to walk.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLintAction(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

// runLintAction implements the core logic for the lint command.
func runLintAction(ctx context.Context, args []string) error {
	probes, err := collectProbes(args)
	if err != nil {
		return err
	}

	linter := lint.New()
	failed := 0
	for _, probe := range probes {
		decl, verdict, err := linter.Lint(ctx, probe)
		if err != nil {
			return fmt.Errorf("failed to lint %s: %w", probe, err)
		}

		if verdict.Passed() {
			fmt.Printf("✓ %s (capability: %s)\n", probe, decl.DeclaredCapability)
			continue
		}

		failed++
		fmt.Printf("✗ %s\n", probe)
		for _, v := range verdict.Violations {
			fmt.Printf("    [%s] %s\n", v.Check, v.Message)
		}
	}

	slog.Debug("lint complete", "probes", len(probes), "failed", failed)

	if failed > 0 {
		return fmt.Errorf("lint failed: %d of %d probes violate the static contract", failed, len(probes))
	}
	return nil
}
