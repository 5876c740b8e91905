// Package config defines core configuration types for mdlinks.
// These types are pure data structures; loading and merging live in internal/configloader.
package config

import (
	"time"
)

// Severity represents the severity level of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rank orders severities so that errors sort first.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// IsValid reports whether s is one of the known severities.
func (s Severity) IsValid() bool {
	return s.Rank() < 3
}

// ValidatorConfig holds per-validator configuration options.
type ValidatorConfig struct {
	Enabled  *bool          `yaml:"enabled"`
	Severity *string        `yaml:"severity"`
	Options  map[string]any `yaml:"options"`
}

// NetworkConfig controls checks that leave the machine.
type NetworkConfig struct {
	// Enabled turns URL checks on. Nil means enabled.
	Enabled *bool `yaml:"enabled"`

	// HTTPTimeout bounds a single HEAD request.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// DialTimeout bounds the reachability check for non-HTTP schemes.
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// PluginTimeout bounds checks run by registered URL checkers.
	PluginTimeout time.Duration `yaml:"plugin_timeout"`

	// UserAgent is sent with HTTP requests.
	UserAgent string `yaml:"user_agent"`

	// Ignore holds URL glob patterns that are never checked.
	Ignore []string `yaml:"ignore"`
}

// IsEnabled reports whether URL checks should run.
func (n NetworkConfig) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// AnchorsConfig controls which heading anchors count as declared.
type AnchorsConfig struct {
	// Implicit also accepts IDs generated from heading text.
	Implicit bool `yaml:"implicit"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	// Debounce is the quiet period before a batch starts.
	Debounce time.Duration `yaml:"debounce"`

	// MetricsAddr serves Prometheus metrics when set (e.g. ":9464").
	MetricsAddr string `yaml:"metrics_addr"`
}

// OutputFormat specifies the output format for diagnostics.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatJSON  OutputFormat = "json"
	FormatSARIF OutputFormat = "sarif"
)

// Defaults.
const (
	DefaultTabWidth      = 4
	DefaultEscapeChar    = `\`
	DefaultHTTPTimeout   = 2 * time.Second
	DefaultDialTimeout   = 5 * time.Second
	DefaultPluginTimeout = 10 * time.Second
	DefaultDebounce      = time.Second
	DefaultUserAgent     = "mdlinks"
)

// DefaultExtensions lists the file extensions treated as Markdown.
func DefaultExtensions() []string {
	return []string{".md", ".markdown", ".mdown", ".mkd"}
}

// DefaultTaskTags lists the comment tags reported by the task-marker validator.
func DefaultTaskTags() []string {
	return []string{"TODO", "FIXME", "XXX"}
}

// Config is the root configuration structure for mdlinks.
type Config struct {
	// Extensions lists file extensions treated as Markdown.
	Extensions []string `yaml:"extensions"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore"`

	// TabWidth is the tab stop used when measuring indentation.
	TabWidth int `yaml:"tab_width"`

	// EscapeChar is the single character that escapes Markdown delimiters.
	EscapeChar string `yaml:"escape_char"`

	// Validators contains per-validator configuration keyed by validator name.
	Validators map[string]ValidatorConfig `yaml:"validators"`

	Network NetworkConfig `yaml:"network"`
	Anchors AnchorsConfig `yaml:"anchors"`
	Watch   WatchConfig   `yaml:"watch"`

	// TaskTags lists comment tags reported in source files.
	TaskTags []string `yaml:"task_tags"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// Strict makes warnings fail the run.
	Strict bool `yaml:"-"`

	// Enable contains validator names to explicitly enable.
	Enable []string `yaml:"-"`

	// Disable contains validator names to explicitly disable.
	Disable []string `yaml:"-"`

	// Offline disables every network check.
	Offline bool `yaml:"-"`

	// NoContext omits source lines from text output.
	NoContext bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Extensions: DefaultExtensions(),
		TabWidth:   DefaultTabWidth,
		EscapeChar: DefaultEscapeChar,
		Validators: make(map[string]ValidatorConfig),
		Network: NetworkConfig{
			HTTPTimeout:   DefaultHTTPTimeout,
			DialTimeout:   DefaultDialTimeout,
			PluginTimeout: DefaultPluginTimeout,
			UserAgent:     DefaultUserAgent,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
		TaskTags: DefaultTaskTags(),
		Format:   FormatText,
		Jobs:     0, // 0 means use GOMAXPROCS
	}
}

// Escape returns the escape character as a byte, falling back to the default.
func (c *Config) Escape() byte {
	if c == nil || len(c.EscapeChar) != 1 {
		return DefaultEscapeChar[0]
	}
	return c.EscapeChar[0]
}

// NetworkEnabled reports whether URL checks should run.
func (c *Config) NetworkEnabled() bool {
	return c != nil && !c.Offline && c.Network.IsEnabled()
}
