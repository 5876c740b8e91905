package runner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/lint/validators"
	"github.com/yaklabco/mdlinks/pkg/runner"
)

// writeTree creates files under dir; keys are slash-separated relative paths.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// newRunner builds a runner over dir with every validator and no network.
func newRunner(dir string) *runner.Runner {
	registry := lint.NewRegistry()
	validators.RegisterAll(registry)

	cfg := config.NewConfig()
	cfg.Offline = true

	return runner.New(lint.NewEngine(registry, cfg, lint.NewOSWorkspace(dir)))
}
