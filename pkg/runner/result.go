package runner

import (
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
)

// FileOutcome is the validation result of one discovered file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Result is nil when the file could not be read.
	Result *lint.FileResult

	// Error is set if the file could not be processed.
	Error error
}

// Diagnostics returns the diagnostics of the outcome, if any.
func (o FileOutcome) Diagnostics() []lint.Diagnostic {
	if o.Result == nil {
		return nil
	}
	return o.Result.Diagnostics
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files validated to completion.
	FilesProcessed int

	// FilesCancelled is the number of files whose validation stopped early.
	FilesCancelled int

	// FilesErrored is the number of files that could not be read.
	FilesErrored int

	// FilesWithIssues is the number of files with at least one diagnostic.
	FilesWithIssues int

	// DiagnosticsTotal is the total number of diagnostics across all files.
	DiagnosticsTotal int

	// DiagnosticsBySeverity maps severity levels to counts.
	DiagnosticsBySeverity map[config.Severity]int

	// DiagnosticsByKind maps issue kinds to counts.
	DiagnosticsByKind map[lint.IssueKind]int
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered by path.
	Files []FileOutcome

	Stats Stats
}

// Diagnostics returns every diagnostic of the run in file order.
func (r *Result) Diagnostics() []lint.Diagnostic {
	if r == nil {
		return nil
	}
	var out []lint.Diagnostic
	for _, outcome := range r.Files {
		out = append(out, outcome.Diagnostics()...)
	}
	return out
}

// HasFailures reports whether any diagnostic has error severity.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsBySeverity[config.SeverityError] > 0
}

// HasWarnings reports whether any diagnostic has warning severity.
func (r *Result) HasWarnings() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsBySeverity[config.SeverityWarning] > 0
}

// HasIssues reports whether any diagnostics were found.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsTotal > 0
}

func newStats() Stats {
	return Stats{
		DiagnosticsBySeverity: make(map[config.Severity]int),
		DiagnosticsByKind:     make(map[lint.IssueKind]int),
	}
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Result == nil {
		return
	}

	if outcome.Result.Cancelled {
		r.Stats.FilesCancelled++
	} else {
		r.Stats.FilesProcessed++
	}

	diags := outcome.Result.Diagnostics
	r.Stats.DiagnosticsTotal += len(diags)
	if len(diags) > 0 {
		r.Stats.FilesWithIssues++
	}
	for _, diag := range diags {
		severity := diag.Severity
		if severity == "" {
			severity = config.SeverityWarning
		}
		r.Stats.DiagnosticsBySeverity[severity]++
		r.Stats.DiagnosticsByKind[diag.Kind]++
	}
}
