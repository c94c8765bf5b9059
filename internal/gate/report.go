package gate

import (
	"sort"
	"sync"
	"time"

	"github.com/probegate-dev/probegate/internal/values"
)

// Report aggregates gate results across probes and modes.
// Thread-safe for concurrent Add during parallel gating.
type Report struct {
	StartTime     time.Time     `json:"start_time" yaml:"start_time"`
	EndTime       time.Time     `json:"end_time" yaml:"end_time"`
	Duration      time.Duration `json:"-" yaml:"-"`
	DurationMS    int64         `json:"duration_ms" yaml:"duration_ms"`
	EngineVersion string        `json:"engine_version,omitempty" yaml:"engine_version,omitempty"`
	Results       []Result      `json:"results" yaml:"results"`
	Summary       Summary       `json:"summary" yaml:"summary"`

	mu sync.Mutex
}

// Summary provides aggregate statistics about a gating run.
type Summary struct {
	TotalRuns  int `json:"total_runs" yaml:"total_runs"`
	PassedRuns int `json:"passed_runs" yaml:"passed_runs"`
	FailedRuns int `json:"failed_runs" yaml:"failed_runs"`
}

// NewReport creates a report with the clock started.
func NewReport(engineVersion string) *Report {
	return &Report{
		StartTime:     time.Now(),
		EngineVersion: engineVersion,
		Results:       make([]Result, 0),
	}
}

// Add records one result. Safe for concurrent use.
func (r *Report) Add(result Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result.DurationMS = result.Duration.Milliseconds()
	r.Results = append(r.Results, result)
}

// Finalize stops the clock, orders results for deterministic output,
// and computes the summary.
func (r *Report) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.DurationMS = r.Duration.Milliseconds()

	sort.Slice(r.Results, func(i, j int) bool {
		if r.Results[i].Probe != r.Results[j].Probe {
			return r.Results[i].Probe < r.Results[j].Probe
		}
		return r.Results[i].Mode < r.Results[j].Mode
	})

	r.Summary = Summary{TotalRuns: len(r.Results)}
	for _, res := range r.Results {
		if res.Status == values.StatusPass {
			r.Summary.PassedRuns++
		} else {
			r.Summary.FailedRuns++
		}
	}
}

// HasFailures reports whether any gated probe failed.
func (r *Report) HasFailures() bool {
	return r.Summary.FailedRuns > 0
}
