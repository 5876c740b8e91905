package lint_test

import (
	"errors"
	"sync"

	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

var errValidator = errors.New("validator failed")

// stubValidator reports one diagnostic per region it is handed and records
// the region kinds it saw.
type stubValidator struct {
	lint.BaseValidator

	network bool
	fail    bool
	panics  bool
	message string

	mu   sync.Mutex
	seen []partition.Kind
}

func newStub(name string, kinds ...partition.Kind) *stubValidator {
	if len(kinds) == 0 {
		kinds = []partition.Kind{partition.Default}
	}
	return &stubValidator{
		BaseValidator: lint.NewBaseValidator(
			name, "stub "+name, config.SeverityWarning,
			[]lint.FileKind{lint.FileMarkdown, lint.FileDiagram, lint.FileOther},
			kinds,
		),
	}
}

func (v *stubValidator) UsesNetwork() bool { return v.network }

func (v *stubValidator) Validate(pass *lint.Pass, region partition.Region) error {
	v.mu.Lock()
	v.seen = append(v.seen, region.Kind)
	v.mu.Unlock()

	if v.panics {
		panic("boom")
	}
	if v.fail {
		return errValidator
	}

	msg := v.message
	if msg == "" {
		msg = "found " + region.Kind.String()
	}
	pass.Report(lint.NewDiagnostic(lint.KindMissingTarget, msg).
		At(lint.Span{Start: region.Offset, End: region.End()}))
	return nil
}

func (v *stubValidator) kinds() []partition.Kind {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]partition.Kind(nil), v.seen...)
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }
