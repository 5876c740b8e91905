package lint

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdlinks/pkg/anchor"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/extract"
	"github.com/yaklabco/mdlinks/pkg/partition"
	"github.com/yaklabco/mdlinks/pkg/target"
	"github.com/yaklabco/mdlinks/pkg/textbuf"
)

// document holds the per-file state shared by every validator of one pass.
// Validators of a file run sequentially, so nothing here is locked.
type document struct {
	partitioner *partition.Partitioner
	extractor   *extract.Extractor
	sink        Sink

	extracted map[int]*extract.Result
	targets   map[string]target.Target
	labels    map[string]struct{}
	decls     []anchor.Declaration
	declsDone bool
	anchors   anchor.Set
	foreign   map[string]foreignAnchors
	sources   map[string]sourceFile
}

type foreignAnchors struct {
	set anchor.Set
	err error
}

type sourceFile struct {
	content []byte
	err     error
}

// Pass provides one validator with everything it needs for one file.
//
// Pass stores context.Context as a field rather than passing it to every
// method. It is a short-lived parameter object created per validator and
// file, which keeps the Validator interface to a single Validate method.
type Pass struct {
	// Ctx is the context for cancellation and timeouts.
	Ctx context.Context

	// File is the file under validation.
	File *File

	// Buffer is the file content with its line index.
	Buffer *textbuf.Buffer

	// Regions is the partition of Buffer.
	Regions []partition.Region

	// Config is the resolved configuration.
	Config *config.Config

	// ValidatorConfig is the validator-specific configuration (may be nil).
	ValidatorConfig *config.ValidatorConfig

	// Workspace resolves other files.
	Workspace Workspace

	// Logger is scoped to the file and validator.
	Logger *log.Logger

	doc      *document
	resolved ResolvedValidator
	reported int
}

// Cancelled returns true if the context has been cancelled.
func (p *Pass) Cancelled() bool {
	select {
	case <-p.Ctx.Done():
		return true
	default:
		return false
	}
}

// Text returns the whole buffer.
func (p *Pass) Text() string {
	return p.Buffer.Text()
}

// Report finishes the diagnostic under construction and sends it to the sink.
func (p *Pass) Report(b *DiagnosticBuilder) {
	p.ReportDiagnostic(b.Build())
}

// ReportDiagnostic fills in file, validator, severity and position, then sends d to the sink.
func (p *Pass) ReportDiagnostic(d Diagnostic) {
	d.File = p.File.Path
	d.Validator = p.resolved.Validator.Name()

	if p.resolved.Override || d.Severity == "" {
		d.Severity = p.resolved.Severity
	}

	if d.Offsets != nil {
		span := *d.Offsets
		d.Line, d.Column = p.Buffer.LineAt(span.Start)
		d.EndLine, d.EndColumn = p.Buffer.LineAt(span.End)
	}

	p.reported++
	p.doc.sink.Report(d)
}

// Reported returns how many diagnostics this pass has sent.
func (p *Pass) Reported() int {
	return p.reported
}

// Extract returns the link syntax found in region, with buffer-absolute offsets.
func (p *Pass) Extract(region partition.Region) *extract.Result {
	if res, ok := p.doc.extracted[region.Offset]; ok {
		return res
	}
	res := p.doc.extractor.Extract(region.Text(p.Text())).Shift(region.Offset)
	p.doc.extracted[region.Offset] = res
	return res
}

// Target resolves a raw link target relative to this file.
func (p *Pass) Target(raw string) target.Target {
	if t, ok := p.doc.targets[raw]; ok {
		return t
	}
	t := target.Resolve(raw, p.File.Path)
	p.doc.targets[raw] = t
	return t
}

// ResolvePath maps a local target to a file system path.
// A leading '/' is relative to the workspace root; anything else is relative
// to the directory of the current file.
func (p *Pass) ResolvePath(t target.Target) string {
	if t.SelfReference {
		return p.File.Path
	}
	path := t.Path
	switch {
	case t.Scheme == "file":
		return filepath.Clean(filepath.FromSlash(path))
	case strings.HasPrefix(path, "/"):
		return filepath.Join(p.Workspace.Root(), filepath.FromSlash(path))
	default:
		return filepath.Join(p.File.Dir(), filepath.FromSlash(path))
	}
}

// IsSelf reports whether path names the file under validation.
func (p *Pass) IsSelf(path string) bool {
	return filepath.Clean(path) == filepath.Clean(p.File.Path)
}

// Labels returns every link reference definition label in the document.
func (p *Pass) Labels() map[string]struct{} {
	if p.doc.labels != nil {
		return p.doc.labels
	}
	labels := make(map[string]struct{})
	for _, region := range p.Regions {
		if region.Kind != partition.Default {
			continue
		}
		for _, def := range p.Extract(region).Definitions {
			labels[def.Label.Text] = struct{}{}
		}
	}
	p.doc.labels = labels
	return labels
}

// Declarations returns the explicit heading anchors of the document.
func (p *Pass) Declarations() []anchor.Declaration {
	if !p.doc.declsDone {
		p.doc.decls = anchor.Declarations(p.Buffer, p.Regions)
		p.doc.declsDone = true
	}
	return p.doc.decls
}

// Anchors returns the anchor set of the document, including generated
// heading IDs when anchors.implicit is configured.
func (p *Pass) Anchors() anchor.Set {
	if p.doc.anchors != nil {
		return p.doc.anchors
	}
	set := anchor.FromDeclarations(p.Declarations())
	if p.implicitAnchors() {
		set.Add(anchor.Implicit([]byte(p.Text()))...)
	}
	p.doc.anchors = set
	return set
}

// AnchorsOf returns the anchor set of another Markdown file, read through the workspace.
func (p *Pass) AnchorsOf(path string) (anchor.Set, error) {
	path = filepath.Clean(path)
	if cached, ok := p.doc.foreign[path]; ok {
		return cached.set, cached.err
	}

	content, err := p.Workspace.ReadFile(p.Ctx, path)
	if err != nil {
		err = fmt.Errorf("read anchors: %w", err)
		p.doc.foreign[path] = foreignAnchors{err: err}
		return nil, err
	}

	set := anchor.Collect(content, p.doc.partitioner, p.implicitAnchors())
	p.doc.foreign[path] = foreignAnchors{set: set}
	return set, nil
}

// ReadSource returns the content of another file, read through the workspace once per pass.
func (p *Pass) ReadSource(path string) ([]byte, error) {
	path = filepath.Clean(path)
	if cached, ok := p.doc.sources[path]; ok {
		return cached.content, cached.err
	}

	content, err := p.Workspace.ReadFile(p.Ctx, path)
	if err != nil {
		err = fmt.Errorf("read source: %w", err)
	}
	p.doc.sources[path] = sourceFile{content: content, err: err}
	return content, err
}

// IsMarkdownPath reports whether path has a configured Markdown extension.
func (p *Pass) IsMarkdownPath(path string) bool {
	exts := config.DefaultExtensions()
	if p.Config != nil && len(p.Config.Extensions) > 0 {
		exts = p.Config.Extensions
	}
	return IsMarkdownExt(filepath.Ext(path), exts)
}

func (p *Pass) implicitAnchors() bool {
	return p.Config != nil && p.Config.Anchors.Implicit
}

// Option returns a validator-specific option value, or the default if not set.
func (p *Pass) Option(key string, defaultValue any) any {
	if p.ValidatorConfig == nil || p.ValidatorConfig.Options == nil {
		return defaultValue
	}
	if v, ok := p.ValidatorConfig.Options[key]; ok {
		return v
	}
	return defaultValue
}

// OptionInt returns a validator-specific integer option, or the default.
func (p *Pass) OptionInt(key string, defaultValue int) int {
	switch val := p.Option(key, defaultValue).(type) {
	case int:
		return val
	case float64:
		return int(val)
	default:
		return defaultValue
	}
}

// OptionString returns a validator-specific string option, or the default.
func (p *Pass) OptionString(key string, defaultValue string) string {
	if s, ok := p.Option(key, defaultValue).(string); ok {
		return s
	}
	return defaultValue
}

// OptionBool returns a validator-specific boolean option, or the default.
func (p *Pass) OptionBool(key string, defaultValue bool) bool {
	if b, ok := p.Option(key, defaultValue).(bool); ok {
		return b
	}
	return defaultValue
}

// OptionDuration returns a validator-specific duration option such as "3s", or the default.
func (p *Pass) OptionDuration(key string, defaultValue time.Duration) time.Duration {
	switch val := p.Option(key, defaultValue).(type) {
	case time.Duration:
		return val
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}

// OptionStringSlice returns a validator-specific string slice option, or the default.
func (p *Pass) OptionStringSlice(key string, defaultValue []string) []string {
	v := p.Option(key, defaultValue)
	if slice, ok := v.([]string); ok {
		return slice
	}
	// YAML decodes sequences as []any.
	if items, ok := v.([]any); ok {
		result := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
