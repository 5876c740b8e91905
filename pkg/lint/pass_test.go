package lint_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

// probeValidator hands the pass of the first Default region to fn.
type probeValidator struct {
	lint.BaseValidator

	fn   func(p *lint.Pass, region partition.Region)
	done bool
}

func newProbe(fn func(p *lint.Pass, region partition.Region)) *probeValidator {
	return &probeValidator{
		BaseValidator: lint.NewBaseValidator("probe", "probe", config.SeverityInfo,
			[]lint.FileKind{lint.FileMarkdown}, []partition.Kind{partition.Default}),
		fn: fn,
	}
}

func (v *probeValidator) Validate(p *lint.Pass, region partition.Region) error {
	if v.done {
		return nil
	}
	v.done = true
	v.fn(p, region)
	return nil
}

func runProbe(t *testing.T, cfg *config.Config, ws lint.Workspace, path, text string,
	fn func(p *lint.Pass, region partition.Region),
) {
	t.Helper()

	probe := newProbe(fn)
	reg := lint.NewRegistry()
	reg.Register(probe)

	engine := lint.NewEngine(reg, cfg, ws)
	engine.Logger = logging.Discard()

	err := engine.ValidateFile(context.Background(), engine.NewFile(path), []byte(text), &lint.CollectSink{})
	require.NoError(t, err)
	require.True(t, probe.done, "probe never ran")
}

func TestPass_ExtractAbsoluteOffsets(t *testing.T) {
	t.Parallel()

	text := "<!-- [a](hidden.md) -->\n\nSee [b](shown.md).\n"

	runProbe(t, nil, nil, "doc.md", text, func(p *lint.Pass, region partition.Region) {
		res := p.Extract(region)
		require.Len(t, res.Links, 1)

		link := res.Links[0]
		assert.Equal(t, "shown.md", link.Target.Text)
		assert.Equal(t, "shown.md", text[link.Target.Start:link.Target.End])
		assert.Same(t, res, p.Extract(region), "results are cached per region")
	})
}

func TestPass_ResolvePath(t *testing.T) {
	t.Parallel()

	root := filepath.Join(string(filepath.Separator), "repo")
	ws := lint.NewOSWorkspace(root)
	file := filepath.Join(root, "docs", "guide.md")

	runProbe(t, nil, ws, file, "text", func(p *lint.Pass, _ partition.Region) {
		assert.Equal(t, filepath.Join(root, "docs", "api.md"), p.ResolvePath(p.Target("api.md#x")))
		assert.Equal(t, filepath.Join(root, "README.md"), p.ResolvePath(p.Target("../README.md")))
		assert.Equal(t, filepath.Join(root, "top.md"), p.ResolvePath(p.Target("/top.md")))
		assert.Equal(t, file, p.ResolvePath(p.Target("#section")))
		assert.True(t, p.IsSelf(filepath.Join(root, "docs", ".", "guide.md")))
	})
}

func TestPass_LabelsAndAnchors(t *testing.T) {
	t.Parallel()

	text := "# Intro {#intro}\n\nSee [docs][d].\n\n[d]: docs.md\n"

	runProbe(t, nil, nil, "doc.md", text, func(p *lint.Pass, _ partition.Region) {
		assert.Contains(t, p.Labels(), "d")
		assert.True(t, p.Anchors().Has("intro"))
		assert.False(t, p.Anchors().Has("missing"))
	})
}

func TestPass_AnchorsOf(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	other := filepath.Join(dir, "other.md")
	require.NoError(t, os.WriteFile(other, []byte("## Setup {#setup}\n"), 0o600))

	overlay := lint.NewOverlay(lint.NewOSWorkspace(dir))
	unsaved := filepath.Join(dir, "unsaved.md")
	overlay.Put(unsaved, []byte("## Draft {#draft}\n"))

	runProbe(t, nil, overlay, filepath.Join(dir, "doc.md"), "text", func(p *lint.Pass, _ partition.Region) {
		set, err := p.AnchorsOf(other)
		require.NoError(t, err)
		assert.True(t, set.Has("setup"))

		set, err = p.AnchorsOf(unsaved)
		require.NoError(t, err)
		assert.True(t, set.Has("draft"))

		_, err = p.AnchorsOf(filepath.Join(dir, "missing.md"))
		require.Error(t, err)
	})
}

func TestPass_Options(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Validators["probe"] = config.ValidatorConfig{Options: map[string]any{
		"count":   3,
		"ratio":   float64(7),
		"name":    "x",
		"strict":  true,
		"timeout": "3s",
		"tags":    []any{"TODO", 5, "HACK"},
	}}

	runProbe(t, cfg, nil, "doc.md", "text", func(p *lint.Pass, _ partition.Region) {
		assert.Equal(t, 3, p.OptionInt("count", 1))
		assert.Equal(t, 7, p.OptionInt("ratio", 1))
		assert.Equal(t, 1, p.OptionInt("name", 1))
		assert.Equal(t, "x", p.OptionString("name", "y"))
		assert.True(t, p.OptionBool("strict", false))
		assert.Equal(t, 3*time.Second, p.OptionDuration("timeout", time.Second))
		assert.Equal(t, time.Second, p.OptionDuration("name", time.Second))
		assert.Equal(t, []string{"TODO", "HACK"}, p.OptionStringSlice("tags", nil))
		assert.Equal(t, []string{"d"}, p.OptionStringSlice("absent", []string{"d"}))
	})
}

func TestPass_ReportCounts(t *testing.T) {
	t.Parallel()

	runProbe(t, nil, nil, "doc.md", "text", func(p *lint.Pass, region partition.Region) {
		assert.False(t, p.Cancelled())
		assert.Zero(t, p.Reported())
		p.Report(lint.NewDiagnostic(lint.KindMissingTarget, "m").At(lint.Span{Start: region.Offset, End: region.End()}))
		assert.Equal(t, 1, p.Reported())
		assert.Equal(t, "text", p.Text())
	})
}
