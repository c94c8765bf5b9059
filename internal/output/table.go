package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/probegate-dev/probegate/internal/gate"
	"github.com/probegate-dev/probegate/internal/values"
)

// TableFormatter formats gate reports as a human-readable table.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// Format writes the gate report as a table.
func (f *TableFormatter) Format(report *gate.Report) error {
	fmt.Fprintf(f.writer, "Probegate: %s\n", report.EngineVersion)
	fmt.Fprintf(f.writer, "Executed: %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	if len(report.Results) == 0 {
		fmt.Fprintln(f.writer, "No probes gated.")
		return nil
	}

	fmt.Fprintln(f.writer, "Probes:")
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))

	for _, result := range report.Results {
		f.formatResult(result)
	}

	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
	fmt.Fprintln(f.writer)

	f.formatSummary(report.Summary)
	return nil
}

// formatResult formats one probe+mode gate verdict.
func (f *TableFormatter) formatResult(result gate.Result) {
	fmt.Fprintf(f.writer, "%s %s (mode: %s)\n", f.statusSymbol(result.Status), result.Probe, result.Mode)

	if result.Declaration.DeclaredCapability != "" {
		fmt.Fprintf(f.writer, "  Capability: %s\n", result.Declaration.DeclaredCapability)
	}
	fmt.Fprintf(f.writer, "  Status: %s\n", strings.ToUpper(string(result.Status)))
	fmt.Fprintf(f.writer, "  Duration: %s\n", result.Duration.Round(time.Millisecond))

	if len(result.Violations) > 0 {
		fmt.Fprintln(f.writer, "  Violations:")
		for i, v := range result.Violations {
			fmt.Fprintf(f.writer, "    %d. [%s] %s\n", i+1, v.Check, v.Message)
		}
	}

	fmt.Fprintln(f.writer)
}

// formatSummary formats the summary statistics.
func (f *TableFormatter) formatSummary(summary gate.Summary) {
	fmt.Fprintln(f.writer, "Summary:")
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
	fmt.Fprintf(f.writer, "Runs:       %d total\n", summary.TotalRuns)
	fmt.Fprintf(f.writer, "  ✓ Passed: %d\n", summary.PassedRuns)
	fmt.Fprintf(f.writer, "  ✗ Failed: %d\n", summary.FailedRuns)
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
}

// statusSymbol returns a symbol for the given status.
func (f *TableFormatter) statusSymbol(status values.Status) string {
	switch status {
	case values.StatusPass:
		return "✓"
	case values.StatusFail:
		return "✗"
	default:
		return "?"
	}
}
