package configloader

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gobwas/glob"

	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "validators.url.severity").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown validators).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// knownFormats lists valid output format values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText:  true,
	config.FormatJSON:  true,
	config.FormatSARIF: true,
}

// Validate checks a configuration for errors and warnings.
// Validator names are checked against registry; nil skips that check.
func Validate(cfg *config.Config, registry *lint.Registry) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Format != "" && !knownFormats[cfg.Format] {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, json, sarif", cfg.Format)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.TabWidth < 0 {
		result.fail("tab_width", cfg.TabWidth, "tab width must be >= 1")
	}
	if cfg.EscapeChar != "" && (utf8.RuneCountInString(cfg.EscapeChar) != 1 || len(cfg.EscapeChar) != 1) {
		result.fail("escape_char", cfg.EscapeChar, "escape character must be a single ASCII character, got %q", cfg.EscapeChar)
	}

	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			result.fail(fmt.Sprintf("extensions[%d]", i), ext, "extension %q must start with '.'", ext)
		}
	}

	validateDurations(cfg, result)
	validateValidators(cfg, registry, result)
	validatePatterns(cfg, result)

	return result
}

func validateDurations(cfg *config.Config, result *ValidationResult) {
	durations := []struct {
		field string
		value time.Duration
	}{
		{"network.http_timeout", cfg.Network.HTTPTimeout},
		{"network.dial_timeout", cfg.Network.DialTimeout},
		{"network.plugin_timeout", cfg.Network.PluginTimeout},
		{"watch.debounce", cfg.Watch.Debounce},
	}
	for _, d := range durations {
		if d.value < 0 {
			result.fail(d.field, d.value, "duration must not be negative")
		}
	}
}

// validateValidators checks validator configurations for errors and warnings.
func validateValidators(cfg *config.Config, registry *lint.Registry, result *ValidationResult) {
	known := func(name string) bool {
		if registry == nil {
			return true
		}
		_, ok := registry.Get(name)
		return ok
	}

	for name, vc := range cfg.Validators {
		if !known(name) {
			result.warn("validators."+name, name, "unknown validator %q; it will be ignored", name)
		}
		if vc.Severity != nil && !config.Severity(*vc.Severity).IsValid() {
			result.fail("validators."+name+".severity", *vc.Severity,
				"invalid severity %q; must be one of: error, warning, info", *vc.Severity)
		}
	}

	for _, list := range []struct {
		field string
		names []string
	}{{"enable", cfg.Enable}, {"disable", cfg.Disable}} {
		for _, name := range list.names {
			if !known(name) {
				result.warn(list.field, name, "unknown validator %q; it will be ignored", name)
			}
		}
	}
}

// validatePatterns checks that file and URL ignore patterns compile.
func validatePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
	for i, pattern := range cfg.Network.Ignore {
		if _, err := glob.Compile(pattern); err != nil {
			result.fail(fmt.Sprintf("network.ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string, registry *lint.Registry) *ValidationResult {
	result := Validate(cfg, registry)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidFormat returns true if the format is valid.
func IsValidFormat(f config.OutputFormat) bool {
	return knownFormats[f]
}
