package lint_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdlinks/pkg/fsutil"
	"github.com/yaklabco/mdlinks/pkg/lint"
)

func TestOSWorkspace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("disk"), 0o600))

	ws := lint.NewOSWorkspace(dir + "/")
	assert.Equal(t, dir, ws.Root())

	probe, err := ws.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, fsutil.Probe{Exists: true, Readable: true}, probe)

	probe, err = ws.Probe(dir)
	require.NoError(t, err)
	assert.True(t, probe.IsDir)

	probe, err = ws.Probe(filepath.Join(dir, "missing.md"))
	require.NoError(t, err)
	assert.False(t, probe.Exists)

	content, err := ws.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "disk", string(content))

	_, err = ws.ReadFile(context.Background(), filepath.Join(dir, "missing.md"))
	require.ErrorIs(t, err, fsutil.ErrNotFound)
}

func TestOverlay(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	onDisk := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(onDisk, []byte("disk"), 0o600))

	overlay := lint.NewOverlay(lint.NewOSWorkspace(dir))
	assert.Equal(t, dir, overlay.Root())

	unsaved := filepath.Join(dir, "new.md")
	overlay.Put(unsaved, []byte("buffer"))
	overlay.Put(filepath.Join(dir, ".", "a.md"), []byte("edited"))
	assert.Equal(t, 2, overlay.Len())

	probe, err := overlay.Probe(unsaved)
	require.NoError(t, err)
	assert.True(t, probe.Exists)
	assert.True(t, probe.Readable)

	content, err := overlay.ReadFile(context.Background(), onDisk)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(content), "buffer wins over disk")

	taken, ok := overlay.Take(onDisk)
	require.True(t, ok)
	assert.Equal(t, "edited", string(taken))
	_, ok = overlay.Get(onDisk)
	assert.False(t, ok)

	content, err = overlay.ReadFile(context.Background(), onDisk)
	require.NoError(t, err)
	assert.Equal(t, "disk", string(content))

	overlay.Delete(unsaved)
	assert.Zero(t, overlay.Len())

	probe, err = overlay.Probe(unsaved)
	require.NoError(t, err)
	assert.False(t, probe.Exists)
}

func TestCollectSink(t *testing.T) {
	t.Parallel()

	sink := &lint.CollectSink{}
	sink.Report(lint.Diagnostic{File: "b.md", Line: 1})
	sink.Report(lint.Diagnostic{File: "a.md", Line: 2})

	diags := sink.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, "a.md", diags[0].File)

	sink.Reset()
	assert.Zero(t, sink.Len())

	var got []lint.Diagnostic
	fn := lint.SinkFunc(func(d lint.Diagnostic) { got = append(got, d) })
	fn.Report(lint.Diagnostic{File: "c.md"})
	assert.Len(t, got, 1)
}
