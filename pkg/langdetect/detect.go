// Package langdetect classifies files and fenced code blocks by language.
// It uses go-enry for filename, alias and content based detection.
package langdetect

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names returned by the detectors.
const (
	LangGo       = "go"
	LangMarkdown = "markdown"
	LangText     = "text"
)

// Diagram identifies the diagram language family of a fenced block or file.
type Diagram int

const (
	// DiagramNone means the info string or file is not a diagram language.
	DiagramNone Diagram = iota
	// DiagramDot covers Graphviz DOT.
	DiagramDot
	// DiagramUML covers PlantUML and the text diagram languages rendered alongside it.
	DiagramUML
)

// String returns the family name.
func (d Diagram) String() string {
	switch d {
	case DiagramDot:
		return "dot"
	case DiagramUML:
		return "uml"
	default:
		return "none"
	}
}

//nolint:gochecknoglobals // lookup table
var diagramAliases = map[string]Diagram{
	"dot":      DiagramDot,
	"graphviz": DiagramDot,
	"gv":       DiagramDot,
	"plantuml": DiagramUML,
	"puml":     DiagramUML,
	"uml":      DiagramUML,
	"salt":     DiagramUML,
	"mermaid":  DiagramUML,
	"ditaa":    DiagramUML,
}

//nolint:gochecknoglobals // lookup table
var diagramLanguages = map[string]Diagram{
	"Graphviz (DOT)": DiagramDot,
	"PlantUML":       DiagramUML,
	"Mermaid":        DiagramUML,
}

//nolint:gochecknoglobals // lookup table
var diagramExtensions = map[string]Diagram{
	".dot":      DiagramDot,
	".gv":       DiagramDot,
	".puml":     DiagramUML,
	".plantuml": DiagramUML,
	".iuml":     DiagramUML,
}

// FenceLanguage extracts the language word from a code fence info string.
// "{.dot}" and "dot {engine=neato}" both yield "dot".
func FenceLanguage(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	lang := strings.Trim(fields[0], "{}.")
	return strings.ToLower(lang)
}

// DiagramFamily classifies a code fence info string.
// Known aliases are checked first, then go-enry's alias table.
func DiagramFamily(info string) Diagram {
	lang := FenceLanguage(info)
	if lang == "" {
		return DiagramNone
	}

	if family, ok := diagramAliases[lang]; ok {
		return family
	}

	if name, ok := enry.GetLanguageByAlias(lang); ok {
		if family, known := diagramLanguages[name]; known {
			return family
		}
	}

	return DiagramNone
}

// DiagramFile classifies a path by its extension.
func DiagramFile(path string) Diagram {
	return diagramExtensions[strings.ToLower(filepath.Ext(path))]
}

// FileLanguage returns the lower-case language name for a file.
// Content is optional and only consulted when the name is ambiguous.
func FileLanguage(path string, content []byte) string {
	lang := enry.GetLanguage(filepath.Base(path), content)
	if lang == "" {
		return LangText
	}
	return normalize(lang)
}

// IsGoSource reports whether path names Go source code.
func IsGoSource(path string) bool {
	if strings.ToLower(filepath.Ext(path)) != ".go" {
		return false
	}
	lang, _ := enry.GetLanguageByExtension(path)
	return lang == "Go"
}

// Detect guesses the language of a code snippet, for fences without an info string.
// Returns "text" if detection fails or confidence is low.
func Detect(content []byte) string {
	if len(strings.TrimSpace(string(content))) == 0 {
		return LangText
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	candidates := []string{
		"Go", "Python", "Shell", "JavaScript", "TypeScript",
		"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
		"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
		"Graphviz (DOT)", "PlantUML",
	}

	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe && lang != "" {
		return normalize(lang)
	}

	return LangText
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	switch lang {
	case "Shell":
		return "bash"
	case "Graphviz (DOT)":
		return "dot"
	}
	return strings.ToLower(lang)
}
