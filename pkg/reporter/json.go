package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/runner"
)

// jsonSchemaVersion is bumped whenever the JSON document changes shape.
const jsonSchemaVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path        string           `json:"path"`
	Kind        string           `json:"kind,omitempty"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
	Cancelled   bool             `json:"cancelled,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// JSONDiagnostic represents a single diagnostic.
type JSONDiagnostic struct {
	Validator   string       `json:"validator"`
	Kind        string       `json:"kind"`
	Severity    string       `json:"severity"`
	Message     string       `json:"message"`
	StartLine   int          `json:"startLine"`
	StartColumn int          `json:"startColumn"`
	EndLine     int          `json:"endLine"`
	EndColumn   int          `json:"endColumn"`
	Offsets     *JSONOffsets `json:"offsets,omitempty"`
	Suggestion  string       `json:"suggestion,omitempty"`
}

// JSONOffsets is a half-open byte range.
type JSONOffsets struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked    int            `json:"filesChecked"`
	FilesWithIssues int            `json:"filesWithIssues"`
	FilesErrored    int            `json:"filesErrored"`
	FilesCancelled  int            `json:"filesCancelled"`
	TotalIssues     int            `json:"totalIssues"`
	BySeverity      map[string]int `json:"bySeverity"`
	ByKind          map[string]int `json:"byKind"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.TotalIssues, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: jsonSchemaVersion,
		Files:   make([]JSONFileResult, 0),
		Summary: JSONSummary{
			BySeverity: make(map[string]int),
			ByKind:     make(map[string]int),
		},
	}

	if result == nil {
		return output
	}

	output.Files = make([]JSONFileResult, 0, len(result.Files))

	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Path:        displayPath(file.Path, r.opts.WorkingDir),
			Diagnostics: make([]JSONDiagnostic, 0),
		}

		if file.Error != nil {
			fileResult.Error = file.Error.Error()
			output.Summary.FilesErrored++
		}

		if file.Result != nil {
			fileResult.Kind = file.Result.Kind.String()
			fileResult.Cancelled = file.Result.Cancelled
			if file.Result.Cancelled {
				output.Summary.FilesCancelled++
			}

			for _, diag := range file.Result.Diagnostics {
				fileResult.Diagnostics = append(fileResult.Diagnostics, toJSONDiagnostic(diag))
				output.Summary.TotalIssues++
				output.Summary.BySeverity[string(diag.Severity)]++
				output.Summary.ByKind[string(diag.Kind)]++
			}
		}

		if len(fileResult.Diagnostics) > 0 {
			output.Summary.FilesWithIssues++
		}

		output.Files = append(output.Files, fileResult)
		output.Summary.FilesChecked++
	}

	return output
}

func toJSONDiagnostic(diag lint.Diagnostic) JSONDiagnostic {
	out := JSONDiagnostic{
		Validator:   diag.Validator,
		Kind:        string(diag.Kind),
		Severity:    string(diag.Severity),
		Message:     diag.Message,
		StartLine:   diag.Line,
		StartColumn: diag.Column,
		EndLine:     diag.EndLine,
		EndColumn:   diag.EndColumn,
		Suggestion:  diag.Suggestion,
	}
	if diag.Offsets != nil {
		out.Offsets = &JSONOffsets{Start: diag.Offsets.Start, End: diag.Offsets.End}
	}
	return out
}
