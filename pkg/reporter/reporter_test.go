package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/lint/validators"
	"github.com/yaklabco/mdlinks/pkg/reporter"
	"github.com/yaklabco/mdlinks/pkg/runner"
	"github.com/yaklabco/mdlinks/pkg/textbuf"
)

const sampleDoc = "# Title\n\nSee [guide](missing.md) and [top](#nowhere).\n"

func sampleResult(root string) *runner.Result {
	path := filepath.Join(root, "docs", "README.md")
	diags := []lint.Diagnostic{
		{
			File:       path,
			Validator:  "file-target",
			Kind:       lint.KindMissingTarget,
			Severity:   config.SeverityError,
			Message:    `file "missing.md" does not exist`,
			Suggestion: "create the file or fix the path",
			Line:       3, Column: 14, EndLine: 3, EndColumn: 24,
			Offsets: &lint.Span{Start: 22, End: 32},
		},
		{
			File:      path,
			Validator: "anchor",
			Kind:      lint.KindMissingTarget,
			Severity:  config.SeverityWarning,
			Message:   `anchor "nowhere" is not declared`,
			Line:      3, Column: 35, EndLine: 3, EndColumn: 44,
			Offsets: &lint.Span{Start: 43, End: 52},
		},
	}

	return &runner.Result{
		Files: []runner.FileOutcome{
			{
				Path: path,
				Result: &lint.FileResult{
					Path:        path,
					Kind:        lint.FileMarkdown,
					Diagnostics: diags,
					Source:      textbuf.New(sampleDoc),
				},
			},
			{
				Path:   filepath.Join(root, "gone.md"),
				Error:  errors.New("file not found"),
				Result: nil,
			},
		},
		Stats: runner.Stats{
			FilesDiscovered:  2,
			FilesProcessed:   1,
			FilesErrored:     1,
			FilesWithIssues:  1,
			DiagnosticsTotal: 2,
			DiagnosticsBySeverity: map[config.Severity]int{
				config.SeverityError:   1,
				config.SeverityWarning: 1,
			},
			DiagnosticsByKind: map[lint.IssueKind]int{
				lint.KindMissingTarget: 2,
			},
		},
	}
}

func testRegistry() *lint.Registry {
	registry := lint.NewRegistry()
	validators.RegisterAll(registry)
	return registry
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{input: "", want: reporter.FormatText},
		{input: "text", want: reporter.FormatText},
		{input: "json", want: reporter.FormatJSON},
		{input: "sarif", want: reporter.FormatSARIF},
		{input: "table", wantErr: true},
		{input: "XML", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "valid formats")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  reporter.Format
		want    any
		wantErr bool
	}{
		{name: "default", format: "", want: &reporter.TextReporter{}},
		{name: "text", format: reporter.FormatText, want: &reporter.TextReporter{}},
		{name: "json", format: reporter.FormatJSON, want: &reporter.JSONReporter{}},
		{name: "sarif", format: reporter.FormatSARIF, want: &reporter.SARIFReporter{}},
		{name: "unknown", format: "diff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rep, err := reporter.New(reporter.Options{Writer: &bytes.Buffer{}, Format: tt.format})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, rep)
		})
	}
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowContext: true,
		ShowSummary: true,
		GroupByFile: true,
		WorkingDir:  root,
	})

	n, err := rep.Report(context.Background(), sampleResult(root))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out := buf.String()
	readme := filepath.Join("docs", "README.md")
	assert.Contains(t, out, readme+" (2 issues)")
	assert.Contains(t, out, readme+":3:14  error  file \"missing.md\" does not exist  (file-target)")
	assert.Contains(t, out, readme+":3:35  warning")
	assert.Contains(t, out, "See [guide](missing.md)")
	assert.Contains(t, out, "^^^^^^^^^^")
	assert.Contains(t, out, "Suggestion: create the file or fix the path")
	assert.Contains(t, out, "gone.md: error: file not found")
	assert.Contains(t, out, "2 issues (1 error, 1 warning)")
	assert.NotContains(t, out, root, "paths are relative to the working directory")
}

func TestTextReporter_NoContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never"})

	_, err := rep.Report(context.Background(), sampleResult(t.TempDir()))
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "See [guide]")
	assert.NotContains(t, buf.String(), "issues (")
}

func TestTextReporter_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true})

	n, err := rep.Report(context.Background(), &runner.Result{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, buf.String(), "No files to check.")
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, WorkingDir: root})

	n, err := rep.Report(context.Background(), sampleResult(root))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var doc reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "1.0.0", doc.Version)
	require.Len(t, doc.Files, 2)

	file := doc.Files[0]
	assert.Equal(t, filepath.Join("docs", "README.md"), file.Path)
	assert.Equal(t, "markdown", file.Kind)
	require.Len(t, file.Diagnostics, 2)

	first := file.Diagnostics[0]
	assert.Equal(t, "file-target", first.Validator)
	assert.Equal(t, "missing-target", first.Kind)
	assert.Equal(t, "error", first.Severity)
	assert.Equal(t, 3, first.StartLine)
	assert.Equal(t, 14, first.StartColumn)
	require.NotNil(t, first.Offsets)
	assert.Equal(t, 22, first.Offsets.Start)
	assert.Equal(t, 32, first.Offsets.End)
	assert.Equal(t, "create the file or fix the path", first.Suggestion)

	assert.Equal(t, "file not found", doc.Files[1].Error)
	assert.Empty(t, doc.Files[1].Diagnostics)

	assert.Equal(t, 2, doc.Summary.FilesChecked)
	assert.Equal(t, 1, doc.Summary.FilesWithIssues)
	assert.Equal(t, 1, doc.Summary.FilesErrored)
	assert.Equal(t, 2, doc.Summary.TotalIssues)
	assert.Equal(t, map[string]int{"error": 1, "warning": 1}, doc.Summary.BySeverity)
	assert.Equal(t, map[string]int{"missing-target": 2}, doc.Summary.ByKind)
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})

	_, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.Contains(t, buf.String(), `"files":[]`)
}

func TestSARIFReporter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	registry := testRegistry()
	var buf bytes.Buffer
	rep := reporter.NewSARIFReporter(reporter.Options{
		Writer:      &buf,
		WorkingDir:  root,
		Registry:    registry,
		ToolVersion: "1.2.3",
	})

	n, err := rep.Report(context.Background(), sampleResult(root))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var doc reporter.SARIFOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]

	driver := run.Tool.Driver
	assert.Equal(t, "mdlinks", driver.Name)
	assert.Equal(t, "1.2.3", driver.Version)
	require.Len(t, driver.Rules, registry.Len())
	for i, name := range registry.Names() {
		assert.Equal(t, name, driver.Rules[i].ID)
		assert.NotEmpty(t, driver.Rules[i].ShortDescription.Text)
	}

	require.Len(t, run.Results, 2)
	first := run.Results[0]
	assert.Equal(t, "file-target", first.RuleID)
	assert.Equal(t, "file-target", driver.Rules[first.RuleIndex].ID)
	assert.Equal(t, "error", first.Level)
	assert.Equal(t, "missing-target", first.Properties["kind"])

	loc := first.Locations[0].PhysicalLocation
	assert.Equal(t, "docs/README.md", loc.ArtifactLocation.URI)
	require.NotNil(t, loc.Region)
	assert.Equal(t, 3, loc.Region.StartLine)
	assert.Equal(t, 22, loc.Region.ByteOffset)
	assert.Equal(t, 10, loc.Region.ByteLength)

	assert.Equal(t, "warning", run.Results[1].Level)
}

func TestSARIFReporter_UnregisteredValidator(t *testing.T) {
	t.Parallel()

	result := &runner.Result{Files: []runner.FileOutcome{{
		Path: "a.md",
		Result: &lint.FileResult{Path: "a.md", Diagnostics: []lint.Diagnostic{{
			File: "a.md", Validator: "custom", Severity: config.SeverityInfo, Message: "note",
		}}},
	}}}

	var buf bytes.Buffer
	rep := reporter.NewSARIFReporter(reporter.Options{Writer: &buf, Registry: lint.NewRegistry()})
	_, err := rep.Report(context.Background(), result)
	require.NoError(t, err)

	var doc reporter.SARIFOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	run := doc.Runs[0]
	require.Len(t, run.Tool.Driver.Rules, 1)
	assert.Equal(t, "custom", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "note", run.Results[0].Level)
	assert.Nil(t, run.Results[0].Locations[0].PhysicalLocation.Region)
}

func TestTextReporter_DetailedSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:          &buf,
		Color:           "never",
		ShowSummary:     true,
		DetailedSummary: true,
	})

	_, err := rep.Report(context.Background(), sampleResult(t.TempDir()))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Check failed with errors")
}
