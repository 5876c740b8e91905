package validators

import (
	"strconv"
	"strings"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/anchor"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

// AnchorValidator checks fragments that point into the current document.
type AnchorValidator struct {
	lint.BaseValidator
}

// NewAnchorValidator creates the anchor validator.
func NewAnchorValidator() *AnchorValidator {
	return &AnchorValidator{
		BaseValidator: lint.NewBaseValidator(
			"anchor",
			"Fragments into the current document must name a declared anchor",
			config.SeverityWarning,
			markdownFiles,
			proseRegions,
		),
	}
}

// Validate reports self references whose anchor is not declared.
func (v *AnchorValidator) Validate(pass *lint.Pass, region partition.Region) error {
	for _, o := range occurrences(pass, region) {
		t, path, ok := localFragment(pass, o)
		if !ok || !(t.SelfReference || pass.IsSelf(path)) {
			continue
		}
		if pass.Anchors().Has(t.Fragment) {
			continue
		}
		pass.Report(lint.NewDiagnosticf(lint.KindMissingTarget,
			"Anchor #%s not found in %s", t.Fragment, pass.File.Path).
			At(o.span()))
	}
	return nil
}

// CrossFileAnchorValidator checks fragments that point into other Markdown files.
type CrossFileAnchorValidator struct {
	lint.BaseValidator
}

// NewCrossFileAnchorValidator creates the cross-file-anchor validator.
func NewCrossFileAnchorValidator() *CrossFileAnchorValidator {
	return &CrossFileAnchorValidator{
		BaseValidator: lint.NewBaseValidator(
			"cross-file-anchor",
			"Fragments into other Markdown files must name an anchor declared there",
			config.SeverityWarning,
			markdownFiles,
			proseRegions,
		),
	}
}

// Validate reads each referenced Markdown file through the workspace, so
// unsaved buffers win over the disk, and looks the fragment up in its anchors.
func (v *CrossFileAnchorValidator) Validate(pass *lint.Pass, region partition.Region) error {
	for _, o := range occurrences(pass, region) {
		if pass.Cancelled() {
			return nil
		}

		t, path, ok := localFragment(pass, o)
		if !ok || t.SelfReference || pass.IsSelf(path) || !pass.IsMarkdownPath(path) {
			continue
		}
		if !existingFile(pass, path) {
			continue
		}

		set, err := pass.AnchorsOf(path)
		if err != nil {
			pass.Logger.Debug("anchors unavailable", logging.FieldPath, path, logging.FieldError, err)
			continue
		}
		if set.Has(t.Fragment) {
			continue
		}
		pass.Report(lint.NewDiagnosticf(lint.KindMissingTarget,
			"Anchor #%s not found in %s", t.Fragment, t.Path).
			At(o.span()))
	}
	return nil
}

// AnchorDeclarationValidator checks heading anchor declarations.
type AnchorDeclarationValidator struct {
	lint.BaseValidator
}

// NewAnchorDeclarationValidator creates the anchor-declaration validator.
func NewAnchorDeclarationValidator() *AnchorDeclarationValidator {
	return &AnchorDeclarationValidator{
		BaseValidator: lint.NewBaseValidator(
			"anchor-declaration",
			"Heading anchors must be well formed and unique",
			config.SeverityError,
			markdownFiles,
			proseRegions,
		),
	}
}

// Validate reports the declarations that start inside region. Each
// duplicated declaration gets its own diagnostic listing every line that
// declares the same identifier.
func (v *AnchorDeclarationValidator) Validate(pass *lint.Pass, region partition.Region) error {
	decls := pass.Declarations()

	lines := make(map[string][]int, len(decls))
	for _, d := range decls {
		lines[d.ID] = append(lines[d.ID], d.Line)
	}

	for _, d := range decls {
		if !region.Contains(d.Start) {
			continue
		}
		span := lint.Span{Start: d.Start, End: d.End}.Widen(pass.Buffer.Len())

		if !anchor.ValidID(d.ID) {
			pass.Report(lint.NewDiagnosticf(lint.KindMalformedTarget, "Invalid anchor identifier %q", d.ID).
				At(span).
				WithSuggestion("start with a letter and use only letters, digits, '-', '_', ':' or '.'"))
		}

		if same := lines[d.ID]; len(same) > 1 {
			pass.Report(lint.NewDiagnosticf(lint.KindAmbiguousTarget,
				"Anchor #%s is declared more than once (lines %s)", d.ID, joinLines(same)).
				At(span))
		}
	}
	return nil
}

func joinLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = strconv.Itoa(line)
	}
	return strings.Join(parts, ", ")
}
