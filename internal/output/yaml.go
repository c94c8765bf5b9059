package output

import (
	"io"

	"github.com/probegate-dev/probegate/internal/gate"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats gate reports as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the gate report as YAML.
func (f *YAMLFormatter) Format(report *gate.Report) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(report); err != nil {
		return err
	}
	return encoder.Close()
}
