// Package lint provides the validation engine, diagnostics, and validator registry for mdlinks.
package lint

import (
	"cmp"
	"slices"

	"github.com/yaklabco/mdlinks/pkg/config"
)

// IssueKind classifies what is wrong with a link or declaration.
type IssueKind string

const (
	// KindMalformedTarget is a target that cannot be resolved at all.
	KindMalformedTarget IssueKind = "malformed-target"
	// KindMissingTarget is a file, anchor or member that does not exist.
	KindMissingTarget IssueKind = "missing-target"
	// KindAmbiguousTarget is a directory/file mismatch or a duplicate anchor.
	KindAmbiguousTarget IssueKind = "ambiguous-target"
	// KindUnreachableTarget is a network target that failed its check.
	KindUnreachableTarget IssueKind = "unreachable-target"
	// KindUnresolvedLabel is a reference with no matching definition.
	KindUnresolvedLabel IssueKind = "unresolved-label"
	// KindTaskMarker is a task tag found in a source comment.
	KindTaskMarker IssueKind = "task-marker"
)

// IssueKinds returns every issue kind in a stable order.
func IssueKinds() []IssueKind {
	return []IssueKind{
		KindMalformedTarget,
		KindMissingTarget,
		KindAmbiguousTarget,
		KindUnreachableTarget,
		KindUnresolvedLabel,
		KindTaskMarker,
	}
}

// Span is a half-open byte range [Start, End) in the file buffer.
type Span struct {
	Start int
	End   int
}

// Len returns the span length.
func (s Span) Len() int {
	return s.End - s.Start
}

// Widen grows an empty span by one byte on each side, clamped to [0, limit].
func (s Span) Widen(limit int) Span {
	if s.Len() > 0 {
		return s
	}
	out := Span{Start: max(s.Start-1, 0), End: min(s.End+1, limit)}
	return out
}

// Diagnostic represents a single issue found in a file.
type Diagnostic struct {
	// File is the path of the file containing the issue.
	File string

	// Validator is the name of the validator that produced this diagnostic.
	Validator string

	// Kind classifies the issue.
	Kind IssueKind

	// Severity indicates the importance of the diagnostic.
	Severity config.Severity

	// Message is the human-readable description of the issue.
	Message string

	// Suggestion is an optional human-readable fix suggestion.
	Suggestion string

	// Line and Column are 1-based; zero when the position is unknown.
	Line   int
	Column int

	// EndLine and EndColumn locate the end of Offsets; zero when unknown.
	EndLine   int
	EndColumn int

	// Offsets is the byte range in the file, if known.
	Offsets *Span
}

// HasPosition reports whether the diagnostic carries a line.
func (d *Diagnostic) HasPosition() bool {
	return d.Line > 0
}

// key identifies a diagnostic independently of report order.
type key struct {
	file, validator, message string
	kind                     IssueKind
	start, end               int
}

func (d *Diagnostic) key() key {
	k := key{file: d.File, validator: d.Validator, message: d.Message, kind: d.Kind, start: -1, end: -1}
	if d.Offsets != nil {
		k.start, k.end = d.Offsets.Start, d.Offsets.End
	}
	return k
}

// CompareDiagnostics orders diagnostics by file, position, validator and message.
func CompareDiagnostics(a, b Diagnostic) int {
	return cmp.Or(
		cmp.Compare(a.File, b.File),
		cmp.Compare(a.Line, b.Line),
		cmp.Compare(a.Column, b.Column),
		cmp.Compare(a.Validator, b.Validator),
		cmp.Compare(a.Message, b.Message),
	)
}

// SortDiagnostics sorts diags in place with CompareDiagnostics.
func SortDiagnostics(diags []Diagnostic) {
	slices.SortStableFunc(diags, CompareDiagnostics)
}

// SameSet reports whether a and b hold the same diagnostics regardless of order.
func SameSet(a, b []Diagnostic) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[key]int, len(a))
	for i := range a {
		counts[a[i].key()]++
	}
	for i := range b {
		k := b[i].key()
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}
