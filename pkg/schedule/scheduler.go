// Package schedule revalidates files in the background as their content changes.
//
// A Scheduler absorbs bursts of changes: scheduling a file that is already
// waiting only replaces its latest content, so each validation sees the most
// recent text. A debounce timer starts a batch once changes settle, and at
// most one batch runs at a time.
package schedule

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/internal/metrics"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
)

// ErrClosed is returned when scheduling on a closed Scheduler.
var ErrClosed = errors.New("scheduler closed")

// Options configures a Scheduler.
type Options struct {
	// Debounce is the quiet period before a batch starts. Defaults to config.DefaultDebounce.
	Debounce time.Duration

	// Recorder receives metrics. Defaults to metrics.NoopRecorder.
	Recorder metrics.Recorder

	// Logger defaults to logging.Default().
	Logger *log.Logger

	// OnValidated is called after each file that was validated to completion,
	// with its fresh diagnostics. It runs on the worker goroutine.
	OnValidated func(path string, diags []lint.Diagnostic)
}

// Scheduler owns the queue of files waiting for validation.
type Scheduler struct {
	engine  *lint.Engine
	overlay *lint.Overlay
	store   *Store
	opts    Options

	mu      sync.Mutex
	queue   []string
	queued  map[string]struct{}
	latest  map[string][]byte
	timer   *time.Timer
	running bool
	cancel  context.CancelFunc
	closed  bool
	changed chan struct{}
	wg      sync.WaitGroup
}

// New creates a Scheduler validating with engine.
// The engine workspace is wrapped in an Overlay, so cross-file checks see the
// latest scheduled content of every file.
func New(engine *lint.Engine, opts Options) *Scheduler {
	if opts.Debounce <= 0 {
		opts.Debounce = config.DefaultDebounce
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}

	overlay, ok := engine.Workspace.(*lint.Overlay)
	if !ok {
		overlay = lint.NewOverlay(engine.Workspace)
		engine.Workspace = overlay
	}

	return &Scheduler{
		engine:  engine,
		overlay: overlay,
		store:   NewStore(),
		opts:    opts,
		queued:  make(map[string]struct{}),
		latest:  make(map[string][]byte),
		changed: make(chan struct{}),
	}
}

// Debounce returns the effective quiet period.
func (s *Scheduler) Debounce() time.Duration {
	return s.opts.Debounce
}

// Store returns the diagnostics store.
func (s *Scheduler) Store() *Store {
	return s.store
}

// Overlay returns the buffers visible to cross-file checks.
func (s *Scheduler) Overlay() *lint.Overlay {
	return s.overlay
}

// Schedule records content as the latest text of path and (re)arms the
// debounce timer. A path already waiting keeps its place in the queue.
func (s *Scheduler) Schedule(path string, content []byte) error {
	path = filepath.Clean(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if _, ok := s.queued[path]; !ok {
		s.queued[path] = struct{}{}
		s.queue = append(s.queue, path)
	}
	s.latest[path] = content
	s.overlay.Put(path, content)

	s.opts.Recorder.SetQueueDepth(len(s.queue))
	s.arm()
	return nil
}

// Forget drops path from the queue, the overlay and the store.
func (s *Scheduler) Forget(path string) {
	path = filepath.Clean(path)

	s.mu.Lock()
	if _, ok := s.queued[path]; ok {
		delete(s.queued, path)
		delete(s.latest, path)
		for i, p := range s.queue {
			if p == path {
				s.queue = append(s.queue[:i], s.queue[i+1:]...)
				break
			}
		}
		s.opts.Recorder.SetQueueDepth(len(s.queue))
		s.notify()
	}
	s.mu.Unlock()

	s.overlay.Delete(path)
	s.store.Clear(path)
}

// Cancel stops the running batch. The file being validated and every file
// not reached yet stay queued for the next batch.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Pending returns the number of queued files.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Running reports whether a batch is in progress.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// WaitIdle blocks until no batch is running and the queue is empty, or ctx ends.
func (s *Scheduler) WaitIdle(ctx context.Context) error {
	for {
		s.mu.Lock()
		if !s.running && len(s.queue) == 0 {
			s.mu.Unlock()
			return nil
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Close stops the timer, cancels the running batch and waits for it to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// arm (re)starts the debounce timer. Callers hold mu.
func (s *Scheduler) arm() {
	if s.timer == nil {
		s.timer = time.AfterFunc(s.opts.Debounce, s.fire)
		return
	}
	s.timer.Reset(s.opts.Debounce)
}

// notify wakes WaitIdle callers. Callers hold mu.
func (s *Scheduler) notify() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || len(s.queue) == 0 {
		return
	}
	if s.running {
		s.arm()
		return
	}

	ctx, cancel := context.WithCancel(logging.WithLogger(context.Background(), s.opts.Logger))
	s.running = true
	s.cancel = cancel
	s.wg.Add(1)
	s.notify()

	go s.work(ctx, cancel)
}

func (s *Scheduler) work(ctx context.Context, cancel context.CancelFunc) {
	defer func() {
		cancel()
		s.mu.Lock()
		s.running = false
		s.cancel = nil
		s.notify()
		s.mu.Unlock()
		s.wg.Done()
	}()

	s.engine.Reset()
	for {
		if ctx.Err() != nil {
			return
		}

		path, content, ok := s.pop()
		if !ok {
			return
		}

		if !s.validate(ctx, path, content) {
			s.requeue(path, content)
			return
		}
	}
}

// pop takes the next path and its latest content off the queue.
func (s *Scheduler) pop() (string, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return "", nil, false
	}
	path := s.queue[0]
	s.queue = s.queue[1:]
	delete(s.queued, path)
	content := s.latest[path]
	delete(s.latest, path)

	s.opts.Recorder.SetQueueDepth(len(s.queue))
	s.notify()
	return path, content, true
}

// requeue puts an interrupted file back at the head of the queue unless it
// was scheduled again in the meantime, and re-arms the timer so the queue
// drains without waiting for another change.
func (s *Scheduler) requeue(path string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if _, ok := s.queued[path]; !ok {
		s.queued[path] = struct{}{}
		s.latest[path] = content
		s.queue = append([]string{path}, s.queue...)
		s.opts.Recorder.SetQueueDepth(len(s.queue))
	}
	s.arm()
}

// validate runs one file and reports whether it completed.
func (s *Scheduler) validate(ctx context.Context, path string, content []byte) bool {
	logger := s.opts.Logger.With(logging.FieldPath, path)
	start := time.Now()

	s.store.Clear(path)
	err := s.engine.ValidateFile(ctx, s.engine.NewFile(path), content, s.store.Sink(path))
	s.opts.Recorder.ObserveValidationDuration(time.Since(start))

	switch {
	case errors.Is(err, lint.ErrCancelled):
		s.opts.Recorder.IncValidation(metrics.OutcomeCancelled)
		logger.Debug("validation cancelled")
		return false
	case err != nil:
		s.opts.Recorder.IncValidation(metrics.OutcomeFailed)
		logger.Warn("validation failed", logging.FieldError, err)
		return true
	}

	diags := s.store.Get(path)
	s.opts.Recorder.IncValidation(metrics.OutcomeSuccess)
	for _, d := range diags {
		s.opts.Recorder.AddDiagnostics(string(d.Kind), string(d.Severity), 1)
	}
	logger.Debug("validated",
		logging.FieldDiagnostics, len(diags),
		logging.FieldDuration, time.Since(start))

	if s.opts.OnValidated != nil {
		s.opts.OnValidated(path, diags)
	}
	return true
}
