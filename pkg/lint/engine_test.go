package lint_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

func newTestEngine(t *testing.T, cfg *config.Config, validators ...lint.Validator) *lint.Engine {
	t.Helper()

	reg := lint.NewRegistry()
	for _, v := range validators {
		reg.Register(v)
	}
	engine := lint.NewEngine(reg, cfg, lint.NewOSWorkspace(t.TempDir()))
	engine.Logger = logging.Discard()
	return engine
}

func TestNewEngine_Defaults(t *testing.T) {
	t.Parallel()

	engine := lint.NewEngine(lint.NewRegistry(), nil, nil)

	require.NotNil(t, engine.Config)
	require.NotNil(t, engine.Workspace)
	assert.Equal(t, ".", engine.Workspace.Root())
	assert.Empty(t, engine.Validators())
	assert.Equal(t, config.DefaultTabWidth, engine.Partitioner().Options().TabWidth)
}

func TestEngine_Partition(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil)

	tests := []struct {
		name string
		path string
		text string
		want partition.Kind
	}{
		{name: "dot source", path: "graph.dot", text: "digraph { a -> b }", want: partition.DotBlock},
		{name: "uml source", path: "seq.puml", text: "@startuml\nA -> B\n@enduml", want: partition.UMLBlock},
		{name: "go source", path: "main.go", text: "package main", want: partition.Default},
		{name: "plain text", path: "notes.txt", text: "see README.md", want: partition.Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			regions := engine.Partition(engine.NewFile(tt.path), tt.text)
			require.Len(t, regions, 1)
			assert.Equal(t, tt.want, regions[0].Kind)
			assert.Equal(t, len(tt.text), regions[0].Length)
		})
	}
}

func TestEngine_ValidateFile_RegionFilter(t *testing.T) {
	t.Parallel()

	text := "# Title\n\nSee [docs](docs.md).\n\n```go\nfmt.Println(\"[x](y)\")\n```\n"

	prose := newStub("prose")
	code := newStub("code", partition.CodeBlock)
	engine := newTestEngine(t, nil, prose, code)

	sink := &lint.CollectSink{}
	err := engine.ValidateFile(context.Background(), engine.NewFile("doc.md"), []byte(text), sink)
	require.NoError(t, err)

	assert.NotContains(t, prose.kinds(), partition.CodeBlock)
	assert.NotEmpty(t, prose.kinds())
	assert.Equal(t, []partition.Kind{partition.CodeBlock}, code.kinds())
	assert.Equal(t, len(prose.kinds())+1, sink.Len())
}

func TestEngine_ValidateFile_FillsDiagnostic(t *testing.T) {
	t.Parallel()

	v := newStub("file-target")
	engine := newTestEngine(t, nil, v)

	sink := &lint.CollectSink{}
	err := engine.ValidateFile(context.Background(), engine.NewFile("notes.txt"), []byte("abc"), sink)
	require.NoError(t, err)

	diags := sink.Diagnostics()
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, "notes.txt", d.File)
	assert.Equal(t, "file-target", d.Validator)
	assert.Equal(t, lint.KindMissingTarget, d.Kind)
	assert.Equal(t, config.SeverityWarning, d.Severity)
	assert.Equal(t, 1, d.Line)
	assert.Equal(t, 1, d.Column)
	assert.Equal(t, 1, d.EndLine)
	assert.Equal(t, 4, d.EndColumn)
	require.NotNil(t, d.Offsets)
	assert.Equal(t, lint.Span{Start: 0, End: 3}, *d.Offsets)
}

func TestEngine_ValidateFile_SeverityOverride(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Validators["file-target"] = config.ValidatorConfig{Severity: strPtr("info")}

	engine := newTestEngine(t, cfg, newStub("file-target"))

	sink := &lint.CollectSink{}
	require.NoError(t, engine.ValidateFile(context.Background(), engine.NewFile("a.txt"), []byte("x"), sink))

	diags := sink.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, config.SeverityInfo, diags[0].Severity)
}

func TestEngine_ValidateFile_Cancelled(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, newStub("file-target"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &lint.CollectSink{}
	err := engine.ValidateFile(ctx, engine.NewFile("a.md"), []byte("text"), sink)
	require.Error(t, err)
	require.ErrorIs(t, err, lint.ErrCancelled)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sink.Len())
}

func TestEngine_ValidateFile_FailuresAreContained(t *testing.T) {
	t.Parallel()

	failing := newStub("failing")
	failing.fail = true
	panicking := newStub("panicking")
	panicking.panics = true
	healthy := newStub("healthy")

	engine := newTestEngine(t, nil, failing, panicking, healthy)

	sink := &lint.CollectSink{}
	err := engine.ValidateFile(context.Background(), engine.NewFile("a.txt"), []byte("text"), sink)
	require.NoError(t, err)

	diags := sink.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "healthy", diags[0].Validator)
}

func TestEngine_ValidateFile_Idempotent(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, newStub("a"), newStub("b"))
	content := []byte("one\n\n<!-- hidden -->\n\ntwo\n")

	first := &lint.CollectSink{}
	second := &lint.CollectSink{}
	require.NoError(t, engine.ValidateFile(context.Background(), engine.NewFile("a.md"), content, first))
	require.NoError(t, engine.ValidateFile(context.Background(), engine.NewFile("a.md"), content, second))

	assert.True(t, lint.SameSet(first.Diagnostics(), second.Diagnostics()))
}

func TestEngine_CheckFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	engine := newTestEngine(t, nil, newStub("file-target"))

	result, err := engine.CheckFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, result.Path)
	assert.Equal(t, lint.FileMarkdown, result.Kind)
	assert.True(t, result.HasIssues())
	assert.Equal(t, 1, result.IssueCount())
	assert.False(t, result.Cancelled)
}

func TestEngine_CheckFile_Missing(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, newStub("file-target"))

	_, err := engine.CheckFile(context.Background(), filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	require.ErrorIs(t, err, lint.ErrFileNotFound)
	assert.True(t, lint.IsPipelineError(err))
}

func TestEngine_CheckContent_Cancelled(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, newStub("file-target"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.CheckContent(ctx, "a.md", []byte("text"))
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.False(t, result.HasIssues())
}
