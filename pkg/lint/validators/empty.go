package validators

import (
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

// EmptyTargetValidator reports blank link targets.
type EmptyTargetValidator struct {
	lint.BaseValidator
}

// NewEmptyTargetValidator creates the empty-target validator.
func NewEmptyTargetValidator() *EmptyTargetValidator {
	return &EmptyTargetValidator{
		BaseValidator: lint.NewBaseValidator(
			"empty-target",
			"Link targets must not be empty",
			config.SeverityError,
			markdownFiles,
			linkRegions,
		),
	}
}

// Validate reports every blank target. A zero-length target is widened by
// one character on each side so the diagnostic has a visible range.
func (v *EmptyTargetValidator) Validate(pass *lint.Pass, region partition.Region) error {
	for _, o := range occurrences(pass, region) {
		if !pass.Target(o.match.Text).IsBlank() {
			continue
		}
		pass.Report(lint.NewDiagnostic(lint.KindMalformedTarget, "Link target is empty").
			At(o.span().Widen(pass.Buffer.Len())).
			WithSuggestion("add a path, URL or #anchor"))
	}
	return nil
}
