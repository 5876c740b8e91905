package runner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher tests slash-separated relative paths against ignore patterns.
//
// Patterns without a '/' also match the base name, so "*.tmp.md" skips such
// files anywhere. '*' stops at '/', '**' crosses it.
type Matcher struct {
	globs    []glob.Glob
	baseOnly []bool
}

// CompileGlobs compiles patterns into a Matcher.
func CompileGlobs(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if err := m.add(pattern); err != nil {
			return nil, err
		}
		// A leading "**/" also matches at the top level.
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok && rest != "" {
			if err := m.add(rest); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Matcher) add(pattern string) error {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return fmt.Errorf("compile glob %q: %w", pattern, err)
	}
	m.globs = append(m.globs, g)
	m.baseOnly = append(m.baseOnly, !strings.Contains(pattern, "/"))
	return nil
}

// Empty reports whether the matcher has no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.globs) == 0
}

// Match reports whether relPath is excluded.
func (m *Matcher) Match(relPath string) bool {
	if m.Empty() {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	base := relPath
	if i := strings.LastIndexByte(relPath, '/'); i >= 0 {
		base = relPath[i+1:]
	}
	for i, g := range m.globs {
		if g.Match(relPath) {
			return true
		}
		if m.baseOnly[i] && g.Match(base) {
			return true
		}
	}
	return false
}

// MatchDir reports whether the directory relPath, and so everything under
// it, is excluded. "vendor/**" excludes the directory "vendor".
func (m *Matcher) MatchDir(relPath string) bool {
	return m.Match(relPath) || m.Match(strings.TrimSuffix(filepath.ToSlash(relPath), "/")+"/")
}
