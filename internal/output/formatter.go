// Package output provides formatters for probegate reports.
package output

import (
	"fmt"
	"io"

	"github.com/probegate-dev/probegate/internal/gate"
)

// Formatter writes a finalized gate report to an output stream.
type Formatter interface {
	Format(report *gate.Report) error
}

// Options carries formatter-specific knobs.
type Options struct {
	Indent bool // pretty-print where the format supports it
}

// New returns a formatter for the given format name.
func New(format string, writer io.Writer, options Options) (Formatter, error) {
	switch format {
	case "table":
		return NewTableFormatter(writer), nil
	case "json":
		return NewJSONFormatter(writer, options.Indent), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	case "sarif":
		return NewSARIFFormatter(writer), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, SupportedFormats(),
		)
	}
}

// SupportedFormats returns the list of available format names.
func SupportedFormats() []string {
	return []string{"table", "json", "yaml", "sarif"}
}
