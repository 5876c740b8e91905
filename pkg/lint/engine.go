package lint

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/extract"
	"github.com/yaklabco/mdlinks/pkg/partition"
	"github.com/yaklabco/mdlinks/pkg/target"
	"github.com/yaklabco/mdlinks/pkg/textbuf"
)

// ErrCancelled is returned when validation stops because the context ended.
// Diagnostics reported before cancellation have already reached the sink.
var ErrCancelled = errors.New("validation cancelled")

// Engine partitions files and runs the resolved validators over their regions.
// An Engine is safe for concurrent use by multiple goroutines.
type Engine struct {
	// Registry holds all available validators.
	Registry *Registry

	// Config is the resolved configuration.
	Config *config.Config

	// Workspace resolves other files. Defaults to the OS, rooted at ".".
	Workspace Workspace

	// Logger overrides the logger taken from the context.
	Logger *log.Logger

	partitioner *partition.Partitioner
	extractor   *extract.Extractor
	resolved    []ResolvedValidator
}

// NewEngine creates an Engine. cfg may be nil for defaults.
func NewEngine(registry *Registry, cfg *config.Config, ws Workspace) *Engine {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if ws == nil {
		ws = NewOSWorkspace(".")
	}

	return &Engine{
		Registry:  registry,
		Config:    cfg,
		Workspace: ws,
		partitioner: partition.New(partition.Options{
			TabWidth: cfg.TabWidth,
			Escape:   cfg.Escape(),
		}),
		extractor: extract.New(cfg.Escape()),
		resolved:  ResolveValidators(registry, cfg),
	}
}

// Validators returns the validators that will run, in order.
func (e *Engine) Validators() []ResolvedValidator {
	return e.resolved
}

// Resetter is implemented by validators that keep results between files,
// such as cached network checks.
type Resetter interface {
	Reset()
}

// Reset clears the state validators keep between files. Batch callers invoke
// it before each batch so every result is recomputed.
func (e *Engine) Reset() {
	for _, rv := range e.resolved {
		if r, ok := rv.Validator.(Resetter); ok {
			r.Reset()
		}
	}
}

// Partitioner returns the partitioner configured from Config.
func (e *Engine) Partitioner() *partition.Partitioner {
	return e.partitioner
}

// Partition splits text into regions according to the file kind.
// Markdown is scanned; diagram sources become one diagram region; anything
// else is a single Default region.
func (e *Engine) Partition(file *File, text string) []partition.Region {
	switch file.Kind {
	case FileMarkdown:
		return e.partitioner.Partition(text)
	case FileDiagram:
		if kind, ok := partition.DiagramFileKind(file.Path); ok {
			return partition.Whole(kind, text)
		}
		return partition.Whole(partition.Default, text)
	default:
		return partition.Whole(partition.Default, text)
	}
}

// ValidateFile validates content as file and reports every finding to sink.
//
// The context is checked before each region. On cancellation ValidateFile
// returns an error wrapping both ErrCancelled and ctx.Err().
func (e *Engine) ValidateFile(ctx context.Context, file *File, content []byte, sink Sink) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	logger := e.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	logger = logger.With(logging.FieldPath, file.Path)

	var applicable []ResolvedValidator
	for _, rv := range e.resolved {
		if rv.Validator.AppliesToFile(file) {
			applicable = append(applicable, rv)
		}
	}
	if len(applicable) == 0 {
		return nil
	}

	buf := textbuf.FromBytes(content)
	regions := e.Partition(file, buf.Text())

	doc := &document{
		partitioner: e.partitioner,
		extractor:   e.extractor,
		sink:        sink,
		extracted:   make(map[int]*extract.Result),
		targets:     make(map[string]target.Target),
		foreign:     make(map[string]foreignAnchors),
		sources:     make(map[string]sourceFile),
	}

	passes := make([]*Pass, len(applicable))
	for i, rv := range applicable {
		passes[i] = &Pass{
			Ctx:             ctx,
			File:            file,
			Buffer:          buf,
			Regions:         regions,
			Config:          e.Config,
			ValidatorConfig: rv.Config,
			Workspace:       e.Workspace,
			Logger:          logger.With(logging.FieldValidator, rv.Validator.Name()),
			doc:             doc,
			resolved:        rv,
		}
	}

	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		for _, pass := range passes {
			if !pass.resolved.Validator.AppliesToRegion(region, file) {
				continue
			}
			e.run(pass, region)
		}
	}

	// Validators stop early on cancellation, so the last region may be partial.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

// run validates one region with one validator. Failures and panics are
// logged and produce no diagnostic.
func (e *Engine) run(pass *Pass, region partition.Region) {
	defer func() {
		if r := recover(); r != nil {
			pass.Logger.Warn("validator panicked",
				logging.FieldRegion, region.String(),
				logging.FieldPanic, fmt.Sprint(r))
		}
	}()

	if err := pass.resolved.Validator.Validate(pass, region); err != nil {
		pass.Logger.Warn("validator failed",
			logging.FieldRegion, region.String(),
			logging.FieldError, err)
	}
}

// NewFile builds a File for path using the configured Markdown extensions.
func (e *Engine) NewFile(path string) *File {
	exts := e.Config.Extensions
	if len(exts) == 0 {
		exts = config.DefaultExtensions()
	}
	return NewFile(filepath.Clean(path), exts)
}
