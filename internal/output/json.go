package output

import (
	"encoding/json"
	"io"

	"github.com/probegate-dev/probegate/internal/gate"
)

// JSONFormatter formats gate reports as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
// If indent is true, the output is pretty-printed.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

// Format writes the gate report as JSON.
func (f *JSONFormatter) Format(report *gate.Report) error {
	var data []byte
	var err error

	if f.indent {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return err
	}

	if _, err := f.writer.Write(data); err != nil {
		return err
	}

	// Trailing newline for terminal output.
	_, err = f.writer.Write([]byte("\n"))
	return err
}
