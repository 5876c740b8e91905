package lint

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/mdlinks/pkg/langdetect"
)

// FileKind selects how a file is partitioned and which validators apply.
type FileKind uint8

const (
	FileOther FileKind = iota
	FileMarkdown
	FileDiagram
	FileGoSource
)

// String returns the kind name.
func (k FileKind) String() string {
	switch k {
	case FileMarkdown:
		return "markdown"
	case FileDiagram:
		return "diagram"
	case FileGoSource:
		return "go"
	default:
		return "other"
	}
}

// File is the identity of a file under validation.
type File struct {
	// Path is the file path as given by the caller.
	Path string

	// Ext is the lower-cased extension including the dot.
	Ext string

	Kind FileKind

	// Exists and Readable describe the file on disk. Buffers that only live
	// in an editor overlay are readable but may not exist.
	Exists   bool
	Readable bool
}

// NewFile builds a readable, existing File and classifies it.
// markdownExts lists the extensions treated as Markdown.
func NewFile(path string, markdownExts []string) *File {
	return &File{
		Path:     path,
		Ext:      strings.ToLower(filepath.Ext(path)),
		Kind:     ClassifyFile(path, markdownExts),
		Exists:   true,
		Readable: true,
	}
}

// Dir returns the directory containing the file.
func (f *File) Dir() string {
	return filepath.Dir(f.Path)
}

// ClassifyFile returns the kind of path.
func ClassifyFile(path string, markdownExts []string) FileKind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case IsMarkdownExt(ext, markdownExts):
		return FileMarkdown
	case langdetect.DiagramFile(path) != langdetect.DiagramNone:
		return FileDiagram
	case langdetect.IsGoSource(path):
		return FileGoSource
	default:
		return FileOther
	}
}

// IsMarkdownExt reports whether ext is one of exts, case-insensitively.
func IsMarkdownExt(ext string, exts []string) bool {
	ext = strings.ToLower(ext)
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.ToLower(e) == ext
	})
}
