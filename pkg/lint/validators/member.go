package validators

import (
	"errors"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/gomember"
	"github.com/yaklabco/mdlinks/pkg/langdetect"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

// MemberValidator checks fragments that name members of Go source files,
// such as "handler.go#Server.ServeHTTP(http.ResponseWriter, *http.Request)".
type MemberValidator struct {
	lint.BaseValidator
}

// NewMemberValidator creates the member validator.
func NewMemberValidator() *MemberValidator {
	return &MemberValidator{
		BaseValidator: lint.NewBaseValidator(
			"member",
			"Fragments into Go sources must name a declared member",
			config.SeverityWarning,
			markdownFiles,
			proseRegions,
		),
	}
}

// Validate resolves each member reference against the parsed source.
func (v *MemberValidator) Validate(pass *lint.Pass, region partition.Region) error {
	for _, o := range occurrences(pass, region) {
		if pass.Cancelled() {
			return nil
		}

		t, path, ok := localFragment(pass, o)
		if !ok || !langdetect.IsGoSource(path) || !existingFile(pass, path) {
			continue
		}

		ref, err := gomember.ParseRef(t.Fragment)
		if errors.Is(err, gomember.ErrNotMember) {
			pass.Report(lint.NewDiagnosticf(lint.KindMalformedTarget,
				"#%s is not a member reference", t.Fragment).
				At(o.span()).
				WithSuggestion("use Name, Type.Member or Type.Method(ParamType, ...)"))
			continue
		}
		if err != nil {
			return err
		}

		src, err := pass.ReadSource(path)
		if err != nil {
			pass.Logger.Debug("source unavailable", logging.FieldPath, path, logging.FieldError, err)
			continue
		}

		found, err := gomember.Lookup(src, ref)
		if err != nil {
			pass.Logger.Debug("source does not parse", logging.FieldPath, path, logging.FieldError, err)
			continue
		}
		if !found {
			pass.Report(lint.NewDiagnosticf(lint.KindMissingTarget,
				"Member %s not found in %s", ref, t.Path).
				At(o.span()))
		}
	}
	return nil
}
