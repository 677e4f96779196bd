package validation

import "fmt"

// Level is the stage that produced a finding.
type Level string

const (
	LevelSchema   Level = "schema"
	LevelGeometry Level = "geometry"
	LevelCoverage Level = "coverage"
)

// Severity decides whether a finding rejects the input.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Result is a single finding. Path points at the offending input
// (e.g. "parameters.percent" or "wells[3].toe"); Scope names the
// contour/horizon/coefficient triple when the finding came from a design run.
type Result struct {
	Level       Level    `json:"level"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Path        string   `json:"path,omitempty"`
	Scope       string   `json:"scope,omitempty"`
	ActualValue any      `json:"actual_value,omitempty"`
	Expected    string   `json:"expected,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Report collects the findings of loading a project or running a design.
// It stays Valid until an error is added.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []Result `json:"errors"`
	Warnings []Result `json:"warnings"`
	Info     []Result `json:"info"`
	Summary  string   `json:"summary"`
}

func NewReport() *Report {
	r := &Report{Valid: true, Errors: []Result{}, Warnings: []Result{}, Info: []Result{}}
	r.summarize()
	return r
}

// AddError records a finding that rejects the input.
func (r *Report) AddError(res Result) { r.add(SeverityError, res) }

// AddWarning records a finding the run survives, such as a dropped sector.
func (r *Report) AddWarning(res Result) { r.add(SeverityWarning, res) }

func (r *Report) AddInfo(res Result) { r.add(SeverityInfo, res) }

func (r *Report) add(sev Severity, res Result) {
	res.Severity = sev
	switch sev {
	case SeverityError:
		r.Errors = append(r.Errors, res)
		r.Valid = false
	case SeverityWarning:
		r.Warnings = append(r.Warnings, res)
	default:
		r.Info = append(r.Info, res)
	}
	r.summarize()
}

// Merge appends the findings of other. A nil report is ignored.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
	r.Valid = r.Valid && other.Valid
	r.summarize()
}

// HasError reports whether an error was recorded for path.
func (r *Report) HasError(path string) bool {
	for _, e := range r.Errors {
		if e.Path == path {
			return true
		}
	}
	return false
}

func (r *Report) summarize() {
	r.Summary = fmt.Sprintf("%d errors, %d warnings, %d info", len(r.Errors), len(r.Warnings), len(r.Info))
}
