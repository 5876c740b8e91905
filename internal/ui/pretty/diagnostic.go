package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
)

// FormatDiagnostic formats a single diagnostic for terminal output.
//
//	path:line:col  severity  message  (validator)
//	        source line
//	        ^
//	    Suggestion: ...
func (s *Styles) FormatDiagnostic(diag *lint.Diagnostic, showContext bool, sourceLine string) string {
	var builder strings.Builder

	location := s.FilePath.Render(diag.File)
	if diag.HasPosition() {
		location += s.Location.Render(fmt.Sprintf(":%d:%d", diag.Line, diag.Column))
	}

	fmt.Fprintf(&builder, "  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(diag.Severity),
		s.Message.Render(diag.Message),
		s.Validator.Render("("+diag.Validator+")"),
	)

	if showContext && sourceLine != "" {
		width := 1
		if diag.EndLine == diag.Line && diag.EndColumn > diag.Column {
			width = diag.EndColumn - diag.Column
		}
		builder.WriteString(s.FormatSourceContext(sourceLine, diag.Column, width))
	}

	if diag.Suggestion != "" {
		builder.WriteString("    " + s.Dim.Render("Suggestion:") + " " +
			s.Suggestion.Render(diag.Suggestion) + "\n")
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev config.Severity) string {
	switch sev {
	case config.SeverityError:
		return s.Error.Render("error")
	case config.SeverityWarning:
		return s.Warning.Render("warning")
	case config.SeverityInfo:
		return s.Info.Render("info")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats the source line with a caret marker under
// width columns starting at column. Tabs are kept so the caret lines up.
func (s *Styles) FormatSourceContext(line string, column, width int) string {
	var builder strings.Builder

	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		var padding strings.Builder
		for i, r := range line {
			if i >= column-1 {
				break
			}
			if r == '\t' {
				padding.WriteByte('\t')
			} else {
				padding.WriteByte(' ')
			}
		}
		builder.WriteString(indent + padding.String() + s.Caret.Render(strings.Repeat("^", max(width, 1))) + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	switch {
	case issueCount == 1:
		header += s.Dim.Render(" (1 issue)")
	case issueCount > 1:
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}
