package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every registered validator.
	// If false, generates a minimal template.
	Full bool
}

// ValidatorInfo contains validator metadata for template generation.
type ValidatorInfo struct {
	Name        string
	Description string
	Enabled     bool
	Severity    Severity
}

// ValidatorInfoProvider returns information about registered validators.
// It decouples this package from the lint package.
type ValidatorInfoProvider func() []ValidatorInfo

// DefaultValidatorInfoProvider is set by the validators package during init.
//
//nolint:gochecknoglobals // Intentional extension point for validator info.
var DefaultValidatorInfoProvider ValidatorInfoProvider

const templateHeader = `# mdlinks configuration
# See: https://github.com/yaklabco/mdlinks
`

const templateBody = `
# File extensions treated as Markdown
extensions: [".md", ".markdown", ".mdown", ".mkd"]

# File patterns to skip (glob patterns)
# ignore:
#   - "vendor/**"
#   - "node_modules/**"

# Tab stop used to measure indented code blocks
tab_width: 4

# Escape character for Markdown delimiters
escape_char: "\\"

network:
  enabled: true
  http_timeout: 2s
  dial_timeout: 5s
  plugin_timeout: 10s
  # URLs that are never checked
  # ignore:
  #   - "https://localhost*"

anchors:
  # Also accept heading IDs generated from heading text
  implicit: false

watch:
  debounce: 1s
  # metrics_addr: ":9464"

task_tags: [TODO, FIXME, XXX]
`

// GenerateTemplate creates a configuration file template using DefaultValidatorInfoProvider.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	return GenerateTemplateWith(opts, DefaultValidatorInfoProvider)
}

// GenerateTemplateWith creates a configuration file template from the given provider.
func GenerateTemplateWith(opts TemplateOptions, provider ValidatorInfoProvider) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(templateHeader)
	buf.WriteString(templateBody)

	if !opts.Full {
		buf.WriteString(`
# Validator-specific configuration
# validators:
#   url:
#     severity: error
#   file-target:
#     enabled: false
`)
		return buf.Bytes(), nil
	}

	var infos []ValidatorInfo
	if provider != nil {
		infos = provider()
	}
	if len(infos) == 0 {
		return nil, errors.New("no validators registered")
	}

	buf.WriteString("\nvalidators:\n")
	for _, info := range infos {
		fmt.Fprintf(&buf, "\n  # %s\n", wrapComment(info.Description, commentWrapWidth))
		fmt.Fprintf(&buf, "  %s:\n", info.Name)
		fmt.Fprintf(&buf, "    enabled: %t\n", info.Enabled)
		fmt.Fprintf(&buf, "    severity: %s\n", info.Severity)
	}

	return buf.Bytes(), nil
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	currentLine := ""

	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n  # ")
}
