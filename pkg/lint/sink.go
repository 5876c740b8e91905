package lint

import (
	"slices"
	"sync"
)

// Sink receives diagnostics as they are produced.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(d Diagnostic)

// Report calls f.
func (f SinkFunc) Report(d Diagnostic) {
	f(d)
}

// CollectSink keeps diagnostics in memory. It is safe for concurrent use.
type CollectSink struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Report appends d.
func (s *CollectSink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, d)
}

// Diagnostics returns a sorted copy of everything collected.
func (s *CollectSink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	out := slices.Clone(s.diags)
	s.mu.Unlock()

	SortDiagnostics(out)
	return out
}

// Len returns the number of diagnostics collected.
func (s *CollectSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.diags)
}

// Reset drops everything collected.
func (s *CollectSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = nil
}
