package lint

import (
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

// Validator defines the interface that all validators must implement.
type Validator interface {
	// Name returns the unique kebab-case name (e.g., "file-target").
	Name() string

	// Description returns a one-line description of what is checked.
	Description() string

	// DefaultEnabled returns whether the validator runs without configuration.
	DefaultEnabled() bool

	// DefaultSeverity returns the severity used when a diagnostic does not set one.
	DefaultSeverity() config.Severity

	// AppliesToFile reports whether the validator wants to see this file.
	AppliesToFile(file *File) bool

	// AppliesToRegion reports whether the validator wants to see this region of file.
	AppliesToRegion(region partition.Region, file *File) bool

	// Validate checks one region and reports through pass.
	//
	// Validators must:
	//   - Report one diagnostic per independent issue.
	//   - Treat the buffer as read-only.
	//   - Return an error only for internal failures, not for findings.
	Validate(pass *Pass, region partition.Region) error
}
