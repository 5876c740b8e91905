package lint

import (
	"slices"

	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

// BaseValidator provides the descriptive half of the Validator interface.
// Embed this in validator implementations and override methods as needed.
//
// Fields are unexported to avoid stutter and name collisions with interface methods.
type BaseValidator struct {
	name      string
	desc      string
	severity  config.Severity
	fileKinds []FileKind
	regions   []partition.Kind
}

// NewBaseValidator creates a BaseValidator that applies to the given file and region kinds.
func NewBaseValidator(
	name, desc string,
	severity config.Severity,
	fileKinds []FileKind,
	regions []partition.Kind,
) BaseValidator {
	return BaseValidator{
		name:      name,
		desc:      desc,
		severity:  severity,
		fileKinds: fileKinds,
		regions:   regions,
	}
}

// Name returns the validator name.
func (v *BaseValidator) Name() string {
	return v.name
}

// Description returns what the validator checks.
func (v *BaseValidator) Description() string {
	return v.desc
}

// DefaultEnabled returns true. Override to ship a validator switched off.
func (v *BaseValidator) DefaultEnabled() bool {
	return true
}

// DefaultSeverity returns the severity given at construction.
func (v *BaseValidator) DefaultSeverity() config.Severity {
	return v.severity
}

// AppliesToFile checks the file kind against the configured list.
func (v *BaseValidator) AppliesToFile(file *File) bool {
	return file != nil && slices.Contains(v.fileKinds, file.Kind)
}

// AppliesToRegion checks the region kind against the configured list.
func (v *BaseValidator) AppliesToRegion(region partition.Region, _ *File) bool {
	return slices.Contains(v.regions, region.Kind)
}
