// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Configuration fields.
	FieldJobs     = "jobs"
	FieldOffline  = "offline"
	FieldDebounce = "debounce"
	FieldAddr     = "addr"

	// Validation fields.
	FieldValidator = "validator"
	FieldRegion    = "region"
	FieldURL       = "url"
	FieldTarget    = "target"
	FieldStatus    = "status"
	FieldDuration  = "duration"
	FieldPanic     = "panic"
	FieldQueue     = "queue"
	FieldEvent     = "event"

	// Statistics fields.
	FieldFilesDiscovered  = "files_discovered"
	FieldFilesProcessed   = "files_processed"
	FieldFilesWithIssues  = "files_with_issues"
	FieldDiagnosticsTotal = "diagnostics_total"
	FieldDiagnostics      = "diagnostics"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Validator listing fields.
	FieldName        = "name"
	FieldSeverity    = "severity"
	FieldEnabled     = "enabled"
	FieldDescription = "description"
)
