package validators_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/lint/urlcheck"
	"github.com/yaklabco/mdlinks/pkg/lint/validators"
)

// fixture is a temporary workspace.
type fixture struct {
	t   *testing.T
	dir string
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()

	f := &fixture{t: t, dir: t.TempDir()}
	for name, content := range files {
		path := f.path(name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return f
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.dir, filepath.FromSlash(name))
}

func (f *fixture) mkdir(name string) {
	require.NoError(f.t, os.MkdirAll(f.path(name), 0o755))
}

func offline() *config.Config {
	cfg := config.NewConfig()
	cfg.Offline = true
	return cfg
}

// validate runs every built-in validator over content as the file name.
func (f *fixture) validate(cfg *config.Config, ws lint.Workspace, name, content string) []lint.Diagnostic {
	f.t.Helper()

	reg := lint.NewRegistry()
	validators.RegisterAll(reg)
	return f.validateWith(reg, cfg, ws, name, content)
}

func (f *fixture) validateWith(
	reg *lint.Registry, cfg *config.Config, ws lint.Workspace, name, content string,
) []lint.Diagnostic {
	f.t.Helper()

	if ws == nil {
		ws = lint.NewOSWorkspace(f.dir)
	}
	engine := lint.NewEngine(reg, cfg, ws)
	engine.Logger = logging.Discard()

	sink := &lint.CollectSink{}
	err := engine.ValidateFile(context.Background(), engine.NewFile(f.path(name)), []byte(content), sink)
	require.NoError(f.t, err)
	return sink.Diagnostics()
}

func byValidator(diags []lint.Diagnostic, name string) []lint.Diagnostic {
	var out []lint.Diagnostic
	for _, d := range diags {
		if d.Validator == name {
			out = append(out, d)
		}
	}
	return out
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"empty-target",
		"file-target",
		"anchor",
		"cross-file-anchor",
		"member",
		"url",
		"reference-label",
		"anchor-declaration",
		"task-marker",
	}, lint.DefaultRegistry.Names())

	infos := validators.Info(lint.DefaultRegistry)
	require.Len(t, infos, 9)
	assert.Equal(t, config.SeverityError, infos[0].Severity)
	assert.True(t, infos[0].Enabled)

	tmpl, err := config.GenerateTemplate(config.TemplateOptions{Full: true})
	require.NoError(t, err)
	assert.Contains(t, string(tmpl), "reference-label")
}

func TestScenarioA_CommentedLinkNotValidated(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var checked []string
	recorder := urlcheck.CheckerFunc{
		ID:     "recorder",
		Claims: func(*url.URL) bool { return true },
		CheckWith: func(_ context.Context, u *url.URL) urlcheck.Result {
			mu.Lock()
			defer mu.Unlock()
			checked = append(checked, u.String())
			return urlcheck.Result{}
		},
	}

	uv := validators.NewURLValidator()
	uv.RegisterChecker(recorder)
	reg := lint.NewRegistry()
	reg.Register(uv)

	f := newFixture(t, nil)
	diags := f.validateWith(reg, config.NewConfig(), nil, "doc.md",
		"[a](http://x.com) <!--[b](http://y.com)-->")

	assert.Empty(t, diags)
	assert.Equal(t, []string{"http://x.com"}, checked)
}

func TestScenarioB_ReferenceLabels(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	defined := f.validate(offline(), nil, "doc.md", "[ref]: https://site\n\nSee [ref].\n")
	assert.Empty(t, byValidator(defined, "reference-label"))

	missing := f.validate(offline(), nil, "doc.md", "See [ref].\n")
	labels := byValidator(missing, "reference-label")
	require.Len(t, labels, 1)
	assert.Equal(t, `No link reference definition found for label "ref"`, labels[0].Message)
	assert.Equal(t, lint.KindUnresolvedLabel, labels[0].Kind)
	assert.Equal(t, config.SeverityError, labels[0].Severity)
}

func TestReferenceLabel_CaseSensitive(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	diags := f.validate(offline(), nil, "doc.md", "See [Ref][ref].\n\n[REF]: https://site\n")

	labels := byValidator(diags, "reference-label")
	require.Len(t, labels, 1)
	assert.Contains(t, labels[0].Message, `"ref"`)
}

func TestScenarioC_TrailingSlashParity(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{"notes.txt": "plain"})
	f.mkdir("tests")

	dir := f.validate(offline(), nil, "doc.md", "See [tests](tests).\n")
	require.Len(t, dir, 1)
	assert.Equal(t, "file-target", dir[0].Validator)
	assert.Equal(t, config.SeverityWarning, dir[0].Severity)
	assert.Equal(t, lint.KindAmbiguousTarget, dir[0].Kind)
	assert.Contains(t, dir[0].Suggestion, "add a trailing '/'")

	file := f.validate(offline(), nil, "doc.md", "See [notes](notes.txt/).\n")
	require.Len(t, file, 1)
	assert.Equal(t, config.SeverityError, file[0].Severity)
	assert.Equal(t, lint.KindAmbiguousTarget, file[0].Kind)
	assert.Contains(t, file[0].Suggestion, "remove the trailing '/'")

	ok := f.validate(offline(), nil, "doc.md", "See [tests](tests/) and [notes](notes.txt).\n")
	assert.Empty(t, ok)
}

func TestScenarioD_DuplicateAnchors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	diags := f.validate(offline(), nil, "doc.md", "# One {#dup}\n\ntext\n\n## Two {#dup}\n")

	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, "anchor-declaration", d.Validator)
		assert.Equal(t, config.SeverityError, d.Severity)
		assert.Contains(t, d.Message, "lines 1, 5")
	}
	assert.Equal(t, 1, diags[0].Line)
	assert.Equal(t, 5, diags[1].Line)
}

func TestAnchorDeclaration_InvalidID(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	diags := f.validate(offline(), nil, "doc.md", "# One {#1st}\n\n# Two {#ok.id}\n")

	require.Len(t, diags, 1)
	assert.Equal(t, lint.KindMalformedTarget, diags[0].Kind)
	assert.Contains(t, diags[0].Message, `"1st"`)
}

func TestEmptyTarget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	diags := f.validate(offline(), nil, "doc.md", "[a]() and [b]( )\n")

	empty := byValidator(diags, "empty-target")
	require.Len(t, empty, 2)
	assert.Equal(t, lint.KindMalformedTarget, empty[0].Kind)
	require.NotNil(t, empty[0].Offsets)
	assert.Equal(t, lint.Span{Start: 3, End: 5}, *empty[0].Offsets)
	assert.Len(t, diags, 2)
}

func TestFileTarget_Missing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{"docs/guide.md": "# Guide\n", "top.md": "top"})

	diags := f.validate(offline(), nil, "docs/index.md",
		"[a](guide.md) [b](../top.md) [c](/top.md) [d](gone.md)\n\n[e]: ./missing.md\n")

	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, lint.KindMissingTarget, d.Kind)
		assert.Equal(t, config.SeverityError, d.Severity)
	}
	assert.Contains(t, diags[0].Message, "gone.md")
	assert.Contains(t, diags[1].Message, "missing.md")
}

func TestFileTarget_IgnoresExcludedRegions(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	content := "<!-- [a](gone.md) -->\n\n```\n[b](gone.md)\n```\n\n    [c](gone.md)\n\n```dot\na -> b [URL=\"[d](gone.md)\"]\n```\n"

	assert.Empty(t, f.validate(offline(), nil, "doc.md", content))
}

func TestFileTarget_DiagramInclude(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{"flow.puml": "@startuml\n@enduml\n"})
	f.mkdir("diagram.puml")

	ok := f.validate(offline(), nil, "doc.md", "![flow](flow.puml)\n")
	assert.Empty(t, ok)

	dir := f.validate(offline(), nil, "doc.md", "![dir](diagram.puml)\n")
	require.Len(t, dir, 1)
	assert.Equal(t, config.SeverityError, dir[0].Severity)
	assert.Contains(t, dir[0].Message, "Diagram include")

	missing := f.validate(offline(), nil, "doc.md", "![gone](gone.puml)\n")
	require.Len(t, missing, 1)
	assert.Equal(t, lint.KindMissingTarget, missing[0].Kind)
}

func TestAnchor_SelfReferences(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{"doc.md": ""})
	diags := f.validate(offline(), nil, "doc.md",
		"# Intro {#intro}\n\n[a](#intro) [b](#nope) [c](doc.md#gone)\n")

	anchors := byValidator(diags, "anchor")
	require.Len(t, anchors, 2)
	assert.Equal(t, config.SeverityWarning, anchors[0].Severity)
	assert.Contains(t, anchors[0].Message, "#nope")
	assert.Contains(t, anchors[0].Message, f.path("doc.md"))
	assert.Contains(t, anchors[1].Message, "#gone")
	assert.Len(t, diags, 2)
}

func TestAnchor_HeadingWithInlineMathAndComment(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	content := "# Cost $x$ {#cost}\n\n# Title <!-- note --> {#t}\n\nSee [c](#cost) and [d](#t).\n"
	assert.Empty(t, f.validate(offline(), nil, "doc.md", content))

	dups := f.validate(offline(), nil, "doc.md", "# A $x$ {#dup}\n\n# B {#dup}\n")
	require.Len(t, dups, 2)
	assert.Equal(t, "anchor-declaration", dups[0].Validator)
	assert.Contains(t, dups[0].Message, "lines 1, 3")
}

func TestFileTarget_LinkWithDollarsInDestination(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	diags := f.validate(offline(), nil, "doc.md", "See [a](docs/$v$/missing.md)\n")

	require.Len(t, diags, 1)
	assert.Equal(t, lint.KindMissingTarget, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "docs/$v$/missing.md")
}

func TestFileTarget_IncludeInCodeSpanIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	assert.Empty(t, f.validate(offline(), nil, "doc.md", "Write `![x](missing.puml)` to include\n"))
}

func TestAnchor_Implicit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	content := "# Getting Started\n\n[a](#getting-started)\n"

	assert.Len(t, byValidator(f.validate(offline(), nil, "doc.md", content), "anchor"), 1)

	cfg := offline()
	cfg.Anchors.Implicit = true
	assert.Empty(t, f.validate(cfg, nil, "doc.md", content))
}

func TestCrossFileAnchor(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{"other.md": "## Setup {#setup}\n"})
	content := "[a](other.md#setup) [b](other.md#missing) [c](gone.md#x)\n"

	diags := f.validate(offline(), nil, "doc.md", content)
	cross := byValidator(diags, "cross-file-anchor")
	require.Len(t, cross, 1)
	assert.Contains(t, cross[0].Message, "#missing")
	assert.Contains(t, cross[0].Message, "other.md")
	assert.Len(t, byValidator(diags, "file-target"), 1, "missing file is reported once, by file-target")

	overlay := lint.NewOverlay(lint.NewOSWorkspace(f.dir))
	overlay.Put(f.path("other.md"), []byte("## Setup {#setup}\n## More {#missing}\n"))

	diags = f.validate(offline(), overlay, "doc.md", content)
	assert.Empty(t, byValidator(diags, "cross-file-anchor"), "unsaved buffer wins over disk")
}

func TestMember(t *testing.T) {
	t.Parallel()

	src := `package api

type Server struct {
	Addr string
}

func (s *Server) Serve(n int) error { return nil }

func New() *Server { return nil }
`
	f := newFixture(t, map[string]string{"api.go": src})
	content := "[a](api.go#Server.Serve(int)) [b](api.go#Server.Stop) [c](api.go#New) " +
		"[d](api.go#Server.Addr) [e](api.go#a.b.c)\n"

	diags := byValidator(f.validate(offline(), nil, "doc.md", content), "member")
	require.Len(t, diags, 2)

	assert.Equal(t, lint.KindMissingTarget, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "Server.Stop")
	assert.Equal(t, lint.KindMalformedTarget, diags[1].Kind)
	for _, d := range diags {
		assert.Equal(t, config.SeverityWarning, d.Severity)
	}
}

func TestURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	f := newFixture(t, nil)
	content := "[ok](" + server.URL + "/ok) [bad](" + server.URL + "/missing) [mail](mailto:a@b.c)\n"

	diags := f.validate(config.NewConfig(), nil, "doc.md", content)
	require.Len(t, diags, 1)
	assert.Equal(t, "url", diags[0].Validator)
	assert.Equal(t, lint.KindUnreachableTarget, diags[0].Kind)
	assert.Equal(t, config.SeverityWarning, diags[0].Severity)
	assert.True(t, strings.HasPrefix(diags[0].Message, server.URL+"/missing"))

	assert.Empty(t, f.validate(offline(), nil, "doc.md", content), "offline skips network checks")

	cfg := config.NewConfig()
	cfg.Network.Ignore = []string{server.URL + "/*"}
	assert.Empty(t, f.validate(cfg, nil, "doc.md", content))
}

func TestURL_BrokenLinkRecheckedOnNextPass(t *testing.T) {
	t.Parallel()

	var fixed atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fixed.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	f := newFixture(t, nil)
	reg := lint.NewRegistry()
	validators.RegisterAll(reg)
	cfg := config.NewConfig()
	content := "[page](" + server.URL + "/page)\n"

	require.Len(t, f.validateWith(reg, cfg, nil, "doc.md", content), 1)

	fixed.Store(true)
	assert.Empty(t, f.validateWith(reg, cfg, nil, "doc.md", content))
}

func TestURL_ResetRechecksReachableLinks(t *testing.T) {
	t.Parallel()

	var broken atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if broken.Load() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	f := newFixture(t, nil)
	reg := lint.NewRegistry()
	validators.RegisterAll(reg)
	engine := lint.NewEngine(reg, config.NewConfig(), lint.NewOSWorkspace(f.dir))
	engine.Logger = logging.Discard()
	content := []byte("[page](" + server.URL + "/page)\n")

	run := func() []lint.Diagnostic {
		sink := &lint.CollectSink{}
		require.NoError(t, engine.ValidateFile(context.Background(), engine.NewFile(f.path("doc.md")), content, sink))
		return sink.Diagnostics()
	}

	assert.Empty(t, run())
	broken.Store(true)
	assert.Empty(t, run(), "reachable result cached within a batch")

	engine.Reset()
	assert.Len(t, run(), 1)
}

func TestTaskMarker(t *testing.T) {
	t.Parallel()

	src := "package main\n\n// TODO: fix this\nfunc main() {} /* FIXME later */\n\nvar s = \"TODO not a comment\" // TODOS is not a tag\n"
	f := newFixture(t, map[string]string{"main.go": src})

	diags := f.validate(offline(), nil, "main.go", src)
	require.Len(t, diags, 2)

	assert.Equal(t, "task-marker", diags[0].Validator)
	assert.Equal(t, config.SeverityInfo, diags[0].Severity)
	assert.Equal(t, lint.KindTaskMarker, diags[0].Kind)
	assert.Equal(t, "TODO: fix this", diags[0].Message)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, 4, diags[0].Column)

	assert.Equal(t, "FIXME later", diags[1].Message)
	assert.Equal(t, 4, diags[1].Line)

	cfg := offline()
	cfg.TaskTags = []string{"HACK"}
	assert.Empty(t, f.validate(cfg, nil, "main.go", src))
}

func TestValidation_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{"other.md": "# X {#x}\n"})
	content := "# A {#a}\n# B {#a}\n\n[x]() [y](gone.md) [z](#nope) [w](other.md#y) [q][missing]\n"

	first := f.validate(offline(), nil, "doc.md", content)
	second := f.validate(offline(), nil, "doc.md", content)

	assert.NotEmpty(t, first)
	assert.True(t, lint.SameSet(first, second))
}
