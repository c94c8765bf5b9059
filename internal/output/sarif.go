package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/probegate-dev/probegate/internal/gate"
	"github.com/probegate-dev/probegate/internal/values"
)

// SARIFFormatter formats gate reports as SARIF 2.1.0 JSON.
// Contract checks map to SARIF rules; violations map to results
// located at the probe file.
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a new SARIF formatter.
func NewSARIFFormatter(writer io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: writer}
}

// Format writes the gate report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(report *gate.Report) error {
	sr := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("probegate", "https://github.com/probegate-dev/probegate")
	if report.EngineVersion != "" {
		run.Tool.Driver.Version = &report.EngineVersion
	}

	mapper := newSARIFMapper(report)
	mapper.mapToRun(run)

	sr.AddRun(run)

	if err := sr.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}
	_, err := f.writer.Write([]byte("\n"))
	return err
}

type sarifMapper struct {
	report *gate.Report
	rules  map[string]bool // checks already registered as rules
}

func newSARIFMapper(report *gate.Report) *sarifMapper {
	return &sarifMapper{
		report: report,
		rules:  make(map[string]bool),
	}
}

func (m *sarifMapper) mapToRun(run *sarif.Run) {
	for _, result := range m.report.Results {
		m.mapResult(run, result)
	}
	m.addProperties(run)
}

// mapResult emits one SARIF result per violation, or a single passing
// result when the gate found none.
func (m *sarifMapper) mapResult(run *sarif.Run, result gate.Result) {
	if result.Status == values.StatusPass {
		m.addRule(run, "gate")
		res := sarif.NewRuleResult("gate")
		res.Kind = "pass"
		res.Level = "note"
		res.Message = sarif.NewTextMessage(fmt.Sprintf("probe passed gating in mode %q", result.Mode))
		res.Locations = []*sarif.Location{m.probeLocation(result.Probe)}
		m.addResultProperties(res, result)
		run.AddResult(res)
		return
	}

	for _, v := range result.Violations {
		m.addRule(run, v.Check)
		res := sarif.NewRuleResult(v.Check)
		res.Kind = "fail"
		res.Level = "error"
		res.Message = sarif.NewTextMessage(v.Message)
		res.Locations = []*sarif.Location{m.probeLocation(result.Probe)}
		m.addResultProperties(res, result)
		run.AddResult(res)
	}
}

func (m *sarifMapper) addRule(run *sarif.Run, check string) {
	if m.rules[check] {
		return
	}
	m.rules[check] = true

	desc := ruleDescription(check)
	rule := sarif.NewReportingDescriptor().WithID(check)
	rule.WithName(check)
	rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &desc})
	run.Tool.Driver.AddRule(rule)
}

func (m *sarifMapper) addResultProperties(res *sarif.Result, result gate.Result) {
	props := sarif.NewPropertyBag()
	props.Add("mode", result.Mode)
	props.Add("run_id", result.RunID.String())
	props.Add("duration_ms", result.Duration.Milliseconds())
	res.WithProperties(props)
}

func (m *sarifMapper) addProperties(run *sarif.Run) {
	props := sarif.NewPropertyBag()
	props.Add("total_runs", m.report.Summary.TotalRuns)
	props.Add("passed_runs", m.report.Summary.PassedRuns)
	props.Add("failed_runs", m.report.Summary.FailedRuns)
	run.WithProperties(props)
}

func (m *sarifMapper) probeLocation(probePath string) *sarif.Location {
	return sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().WithArtifactLocation(
			sarif.NewSimpleArtifactLocation(probePath),
		),
	)
}

func ruleDescription(check string) string {
	switch check {
	case "shebang":
		return "Probe must start with the portable bash interpreter line"
	case "strict-mode":
		return "Probe must enable errexit, nounset, and pipefail before any other statement"
	case "syntax":
		return "Probe must parse without executing"
	case "probe-name":
		return "Probe must declare PROBE_NAME matching its file name"
	case "capability":
		return "Probe must declare the capability it exercises"
	case "execution":
		return "Probe must finish within the execution budget"
	case "exit-status":
		return "Probe must exit 0 after emitting, whatever outcome it observed"
	case "invocation-count":
		return "Probe must call the boundary-event emitter exactly once"
	case "emitter-validation":
		return "Emitter arguments must produce a schema-valid boundary event"
	case "identity":
		return "Emitted identity must match the probe's static declarations"
	case "gate":
		return "Probe satisfies the full static and dynamic contract"
	default:
		return "Probe contract check"
	}
}
