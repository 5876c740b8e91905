package schedule

import (
	"maps"
	"path/filepath"
	"slices"
	"sync"

	"github.com/yaklabco/mdlinks/pkg/lint"
)

// Store holds the current diagnostics of every validated file.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	files map[string][]lint.Diagnostic
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{files: make(map[string][]lint.Diagnostic)}
}

// Sink returns a sink that appends to the diagnostics of path.
//
//nolint:ireturn // callers only need the Sink contract
func (s *Store) Sink(path string) lint.Sink {
	path = filepath.Clean(path)
	return lint.SinkFunc(func(d lint.Diagnostic) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.files[path] = append(s.files[path], d)
	})
}

// Clear drops the diagnostics of path.
func (s *Store) Clear(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, filepath.Clean(path))
}

// Get returns a sorted copy of the diagnostics of path.
func (s *Store) Get(path string) []lint.Diagnostic {
	s.mu.RLock()
	out := slices.Clone(s.files[filepath.Clean(path)])
	s.mu.RUnlock()

	lint.SortDiagnostics(out)
	return out
}

// All returns a copy of every file's diagnostics, keyed by path.
func (s *Store) All() map[string][]lint.Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]lint.Diagnostic, len(s.files))
	for path, diags := range s.files {
		sorted := slices.Clone(diags)
		lint.SortDiagnostics(sorted)
		out[path] = sorted
	}
	return out
}

// Paths returns the files that currently have diagnostics, sorted.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.files))
}

// Total returns the number of diagnostics across all files.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, diags := range s.files {
		n += len(diags)
	}
	return n
}
