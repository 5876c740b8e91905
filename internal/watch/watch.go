// Package watch feeds file system changes into a schedule.Scheduler.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/fsutil"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/runner"
)

// DefaultSettle is the quiet period after the last event for a file before
// the watcher reads it.
const DefaultSettle = 50 * time.Millisecond

// Scheduler is the part of schedule.Scheduler the watcher drives.
type Scheduler interface {
	Schedule(path string, content []byte) error
	Forget(path string)
}

// Options configures a Watcher.
type Options struct {
	// Root is the directory ignore patterns are relative to.
	Root string

	// Extensions lists Markdown extensions. Defaults to config.DefaultExtensions().
	Extensions []string

	// Ignore holds glob patterns for files and directories to skip.
	Ignore []string

	// MarkdownOnly skips diagram and Go source files.
	MarkdownOnly bool

	// Settle is how long a file must go without events before it is read,
	// so a truncate followed by a write is seen as one change. Defaults to DefaultSettle.
	Settle time.Duration

	// Logger defaults to logging.Default().
	Logger *log.Logger
}

// Watcher schedules validation for files that change on disk.
type Watcher struct {
	fsw    *fsnotify.Watcher
	sched  Scheduler
	opts   Options
	ignore *runner.Matcher
	logger *log.Logger

	mu     sync.Mutex
	infos  map[string]*fsutil.FileInfo
	timers map[string]*time.Timer
}

// New creates a Watcher. Call Add to register directories and Run to start.
func New(sched Scheduler, opts Options) (*Watcher, error) {
	if len(opts.Extensions) == 0 {
		opts.Extensions = config.DefaultExtensions()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}

	ignore, err := runner.CompileGlobs(opts.Ignore)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		fsw:    fsw,
		sched:  sched,
		opts:   opts,
		ignore: ignore,
		logger: opts.Logger,
		infos:  make(map[string]*fsutil.FileInfo),
		timers: make(map[string]*time.Timer),
	}, nil
}

// Add watches each directory and everything below it, skipping hidden and
// ignored directories. A file path watches its directory.
func (w *Watcher) Add(paths ...string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		if !info.IsDir() {
			path = filepath.Dir(path)
		}
		if err := w.addDirsRecursive(path); err != nil {
			return err
		}
	}
	return nil
}

// WatchList returns the directories currently watched.
func (w *Watcher) WatchList() []string {
	return w.fsw.WatchList()
}

// Close stops watching and drops reads still waiting to settle.
func (w *Watcher) Close() error {
	w.stopTimers()
	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

// Run handles events until ctx ends or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logging.FieldError, err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if shouldIgnoreName(filepath.Base(path)) {
		return
	}
	w.logger.Debug("file event", logging.FieldPath, path, logging.FieldEvent, ev.Op.String())

	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.forget(path)
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if ev.Has(fsnotify.Create) && !w.ignored(path, true) {
				if err := w.addDirsRecursive(path); err != nil {
					w.logger.Warn("watch add failed", logging.FieldPath, path, logging.FieldError, err)
				}
				w.scheduleTree(ctx, path)
			}
			return
		}
		w.settle(ctx, path)
	}
}

// settle (re)starts the quiet period for path; schedule runs once it passes.
func (w *Watcher) settle(ctx context.Context, path string) {
	if !w.wanted(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.opts.Settle)
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.opts.Settle, func() {
		w.mu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.schedule(ctx, path)
	})
	w.timers[path] = timer
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// schedule reads path and hands it to the scheduler unless its content is unchanged.
func (w *Watcher) schedule(ctx context.Context, path string) {
	if !w.wanted(path) {
		return
	}

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, fsutil.ErrNotFound) {
			w.forget(path)
			return
		}
		w.logger.Warn("read failed", logging.FieldPath, path, logging.FieldError, err)
		return
	}

	w.mu.Lock()
	unchanged := info.SameContent(w.infos[path])
	w.infos[path] = info
	w.mu.Unlock()
	if unchanged {
		return
	}

	if err := w.sched.Schedule(path, content); err != nil {
		w.logger.Warn("schedule failed", logging.FieldPath, path, logging.FieldError, err)
	}
}

// scheduleTree schedules every wanted file below a newly created directory.
func (w *Watcher) scheduleTree(ctx context.Context, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Unreadable entries are skipped.
		}
		if d.IsDir() {
			if path != root && w.ignored(path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		w.settle(ctx, path)
		return nil
	})
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.infos, path)
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.sched.Forget(path)
}

// wanted reports whether path is a file kind the scheduler validates.
func (w *Watcher) wanted(path string) bool {
	switch lint.ClassifyFile(path, w.opts.Extensions) {
	case lint.FileMarkdown:
	case lint.FileDiagram, lint.FileGoSource:
		if w.opts.MarkdownOnly {
			return false
		}
	default:
		return false
	}
	return !w.ignored(path, false)
}

func (w *Watcher) ignored(path string, dir bool) bool {
	if w.ignore.Empty() {
		return false
	}
	rel, err := filepath.Rel(w.opts.Root, path)
	if err != nil {
		rel = path
	}
	if dir {
		return w.ignore.MatchDir(rel)
	}
	return w.ignore.Match(rel)
}

func (w *Watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Unreadable directories are skipped.
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || w.ignored(path, true)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("watch add failed", logging.FieldPath, path, logging.FieldError, err)
		}
		return nil
	})
}

// shouldIgnoreName reports hidden files and editor temporaries.
func shouldIgnoreName(base string) bool {
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}
