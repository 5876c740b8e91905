package lint

import (
	"fmt"

	"github.com/yaklabco/mdlinks/pkg/config"
)

// DiagnosticBuilder helps construct Diagnostic values.
// Position, file and validator name are filled in when the diagnostic is reported.
type DiagnosticBuilder struct {
	diag Diagnostic
}

// NewDiagnostic starts building a diagnostic of the given kind.
func NewDiagnostic(kind IssueKind, message string) *DiagnosticBuilder {
	return &DiagnosticBuilder{
		diag: Diagnostic{
			Kind:    kind,
			Message: message,
		},
	}
}

// NewDiagnosticf is NewDiagnostic with a formatted message.
func NewDiagnosticf(kind IssueKind, format string, args ...any) *DiagnosticBuilder {
	return NewDiagnostic(kind, fmt.Sprintf(format, args...))
}

// At anchors the diagnostic at a buffer span.
func (b *DiagnosticBuilder) At(span Span) *DiagnosticBuilder {
	b.diag.Offsets = &span
	return b
}

// AtLine anchors the diagnostic at a line without offsets.
func (b *DiagnosticBuilder) AtLine(line int) *DiagnosticBuilder {
	b.diag.Line = line
	b.diag.Column = 1
	return b
}

// WithSeverity sets a severity that differs from the validator default.
func (b *DiagnosticBuilder) WithSeverity(s config.Severity) *DiagnosticBuilder {
	b.diag.Severity = s
	return b
}

// WithSuggestion sets a human-readable fix suggestion.
func (b *DiagnosticBuilder) WithSuggestion(s string) *DiagnosticBuilder {
	b.diag.Suggestion = s
	return b
}

// Build returns the constructed Diagnostic.
func (b *DiagnosticBuilder) Build() Diagnostic {
	return b.diag
}
