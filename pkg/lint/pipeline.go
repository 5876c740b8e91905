package lint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/yaklabco/mdlinks/pkg/fsutil"
	"github.com/yaklabco/mdlinks/pkg/textbuf"
)

// Pipeline error types for categorization.
var (
	// ErrFileNotFound indicates the file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")
)

// FileResult contains the results of validating a single file.
type FileResult struct {
	// Path is the file that was validated.
	Path string

	// Kind is the classification the file was validated as.
	Kind FileKind

	// Diagnostics contains all issues found, sorted.
	Diagnostics []Diagnostic

	// Cancelled is true when validation stopped early; Diagnostics is partial.
	Cancelled bool

	// Source is the validated content, kept for showing context lines.
	Source *textbuf.Buffer
}

// SourceLine returns a 1-based line of the validated content, or "".
func (fr *FileResult) SourceLine(line int) string {
	if fr == nil || fr.Source == nil {
		return ""
	}
	return fr.Source.Line(line)
}

// HasIssues returns true if any diagnostics were found.
func (fr *FileResult) HasIssues() bool {
	return len(fr.Diagnostics) > 0
}

// IssueCount returns the total number of diagnostics.
func (fr *FileResult) IssueCount() int {
	return len(fr.Diagnostics)
}

// CheckFile reads path through the workspace and validates it.
// Read failures are returned categorized; cancellation is not an error and
// yields a partial result.
func (e *Engine) CheckFile(ctx context.Context, path string) (*FileResult, error) {
	content, err := e.Workspace.ReadFile(ctx, path)
	if err != nil {
		return nil, categorizeError(err)
	}
	return e.CheckContent(ctx, path, content)
}

// CheckContent validates in-memory content as path.
func (e *Engine) CheckContent(ctx context.Context, path string, content []byte) (*FileResult, error) {
	file := e.NewFile(path)
	sink := &CollectSink{}

	result := &FileResult{Path: file.Path, Kind: file.Kind, Source: textbuf.FromBytes(content)}

	if err := e.ValidateFile(ctx, file, content, sink); err != nil {
		if !errors.Is(err, ErrCancelled) {
			return nil, err
		}
		result.Cancelled = true
	}

	result.Diagnostics = sink.Diagnostics()
	return result, nil
}

// categorizeError wraps an error with the appropriate pipeline error type.
func categorizeError(err error) error {
	switch {
	case errors.Is(err, fsutil.ErrNotFound) || errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fsutil.ErrPermissionDenied) || errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

// IsPipelineError checks if an error is a known pipeline error type.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) || errors.Is(err, ErrPermissionDenied)
}
