package lint

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/yaklabco/mdlinks/pkg/fsutil"
)

// Workspace maps paths to file state and content for cross-file checks.
type Workspace interface {
	// Root is the directory that a leading '/' in a link target refers to.
	Root() string

	// Probe reports whether path exists and whether it is a directory.
	Probe(path string) (fsutil.Probe, error)

	// ReadFile returns the current content of path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// OSWorkspace reads straight from disk.
type OSWorkspace struct {
	root string
}

// NewOSWorkspace creates a workspace rooted at root.
func NewOSWorkspace(root string) *OSWorkspace {
	return &OSWorkspace{root: filepath.Clean(root)}
}

// Root returns the workspace root.
func (w *OSWorkspace) Root() string {
	return w.root
}

// Probe stats path.
func (w *OSWorkspace) Probe(path string) (fsutil.Probe, error) {
	probe, err := fsutil.ProbePath(path)
	if err != nil {
		return fsutil.Probe{}, fmt.Errorf("probe: %w", err)
	}
	return probe, nil
}

// ReadFile reads path from disk.
func (w *OSWorkspace) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("workspace read: %w", err)
	}
	return content, nil
}

// Overlay layers in-memory buffers over another workspace.
// Buffers win over the base for both Probe and ReadFile.
type Overlay struct {
	base Workspace

	mu      sync.RWMutex
	buffers map[string][]byte
}

// NewOverlay creates an overlay over base.
func NewOverlay(base Workspace) *Overlay {
	return &Overlay{
		base:    base,
		buffers: make(map[string][]byte),
	}
}

// Root returns the base workspace root.
func (o *Overlay) Root() string {
	return o.base.Root()
}

// Put stores the latest content for path, replacing any previous buffer.
func (o *Overlay) Put(path string, content []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buffers[filepath.Clean(path)] = content
}

// Get returns the buffer for path.
func (o *Overlay) Get(path string) ([]byte, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	content, ok := o.buffers[filepath.Clean(path)]
	return content, ok
}

// Take returns and removes the buffer for path.
func (o *Overlay) Take(path string) ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	path = filepath.Clean(path)
	content, ok := o.buffers[path]
	delete(o.buffers, path)
	return content, ok
}

// Delete drops the buffer for path.
func (o *Overlay) Delete(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.buffers, filepath.Clean(path))
}

// Len returns the number of buffers.
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.buffers)
}

// Probe reports buffered paths as readable files.
func (o *Overlay) Probe(path string) (fsutil.Probe, error) {
	if _, ok := o.Get(path); ok {
		return fsutil.Probe{Exists: true, Readable: true}, nil
	}
	return o.base.Probe(path)
}

// ReadFile returns the buffer for path, or reads through to the base workspace.
func (o *Overlay) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if content, ok := o.Get(path); ok {
		return content, nil
	}
	return o.base.ReadFile(ctx, path)
}
