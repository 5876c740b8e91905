package validators

import (
	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

// FileTargetValidator checks that local targets exist and that a trailing
// '/' matches whether the target is a directory.
type FileTargetValidator struct {
	lint.BaseValidator
}

// NewFileTargetValidator creates the file-target validator.
func NewFileTargetValidator() *FileTargetValidator {
	return &FileTargetValidator{
		BaseValidator: lint.NewBaseValidator(
			"file-target",
			"Local link targets must exist",
			config.SeverityError,
			markdownFiles,
			linkRegions,
		),
	}
}

// Validate checks every local path target in region.
func (v *FileTargetValidator) Validate(pass *lint.Pass, region partition.Region) error {
	for _, o := range occurrences(pass, region) {
		if pass.Cancelled() {
			return nil
		}

		t := pass.Target(o.match.Text)
		if t.IsBlank() || !t.IsLocal() || t.SelfReference || t.Path == "" {
			continue
		}

		path := pass.ResolvePath(t)
		probe, err := pass.Workspace.Probe(path)
		if err != nil {
			pass.Logger.Debug("probe failed", logging.FieldPath, path, logging.FieldError, err)
			continue
		}

		switch {
		case !probe.Exists:
			pass.Report(lint.NewDiagnosticf(lint.KindMissingTarget, "File not found: %s", t.Path).
				At(o.span()))

		case probe.IsDir && o.include:
			pass.Report(lint.NewDiagnosticf(lint.KindAmbiguousTarget,
				"Diagram include %s is a directory, not a file", t.Path).
				At(o.span()))

		case probe.IsDir && !t.HasTrailingSlash():
			pass.Report(lint.NewDiagnosticf(lint.KindAmbiguousTarget, "%s is a directory", t.Path).
				At(o.span()).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("add a trailing '/'"))

		case !probe.IsDir && t.HasTrailingSlash():
			pass.Report(lint.NewDiagnosticf(lint.KindAmbiguousTarget, "%s is a file, not a directory", t.Path).
				At(o.span()).
				WithSuggestion("remove the trailing '/'"))

		case !probe.Readable:
			pass.Report(lint.NewDiagnosticf(lint.KindMissingTarget, "File is not readable: %s", t.Path).
				At(o.span()).
				WithSeverity(config.SeverityWarning))
		}
	}
	return nil
}
