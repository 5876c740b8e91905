package validators

import (
	"strings"

	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

// ReferenceLabelValidator checks that every reference link has a definition.
type ReferenceLabelValidator struct {
	lint.BaseValidator
}

// NewReferenceLabelValidator creates the reference-label validator.
func NewReferenceLabelValidator() *ReferenceLabelValidator {
	return &ReferenceLabelValidator{
		BaseValidator: lint.NewBaseValidator(
			"reference-label",
			"Reference links must have a link reference definition",
			config.SeverityError,
			markdownFiles,
			proseRegions,
		),
	}
}

// Validate matches labels exactly, case included, against every definition
// in the document.
func (v *ReferenceLabelValidator) Validate(pass *lint.Pass, region partition.Region) error {
	labels := pass.Labels()

	for _, ref := range pass.Extract(region).References {
		label := ref.Label.Text
		if strings.TrimSpace(label) == "" {
			pass.Report(lint.NewDiagnostic(lint.KindUnresolvedLabel, "Reference link has an empty label").
				At(lint.Span{Start: ref.Match.Start, End: ref.Match.End}))
			continue
		}
		if _, ok := labels[label]; ok {
			continue
		}
		pass.Report(lint.NewDiagnosticf(lint.KindUnresolvedLabel,
			"No link reference definition found for label %q", label).
			At(lint.Span{Start: ref.Label.Start, End: ref.Label.End}).
			WithSuggestion("add a definition such as [" + label + "]: <target>"))
	}
	return nil
}
