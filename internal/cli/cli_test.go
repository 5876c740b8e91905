package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdlinks/internal/cli"
	"github.com/yaklabco/mdlinks/pkg/reporter"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"}
}

// workspace creates files under a fresh directory, changes into it and
// isolates user configuration.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	// Stops the upward config search at the workspace.
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(dir)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--color", "never"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	assert.Equal(t, "mdlinks", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"check", "watch", "regions", "validators", "init", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"debug", "config", "color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestCommandFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		flags   []string
	}{
		{
			command: "check",
			flags: []string{
				"format", "jobs", "ignore", "enable", "disable",
				"strict", "offline", "no-context", "compact", "markdown-only",
			},
		},
		{command: "watch", flags: []string{"ignore", "debounce", "metrics-addr", "offline", "no-initial"}},
		{command: "regions", flags: []string{"format"}},
		{command: "init", flags: []string{"force", "full", "resolved", "output"}},
	}

	root := cli.NewRootCommand(testInfo())
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()

			cmd, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			for _, flag := range tt.flags {
				assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag --%s", flag)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: cli.ExitSuccess},
		{name: "plain", err: errors.New("boom"), want: cli.ExitInternalError},
		{name: "exit error", err: &cli.ExitError{Code: cli.ExitConfigError}, want: cli.ExitConfigError},
		{
			name: "wrapped",
			err:  errors.Join(errors.New("ctx"), &cli.ExitError{Code: cli.ExitIssueWarnings, Err: cli.ErrIssuesFound}),
			want: cli.ExitIssueWarnings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}

func TestExitCodeFromResult_Nil(t *testing.T) {
	t.Parallel()
	assert.Equal(t, cli.ExitSuccess, cli.ExitCodeFromResult(nil, true))
}

func TestCheck_Clean(t *testing.T) {
	workspace(t, map[string]string{
		"README.md":     "# Readme\n\nSee [guide](docs/guide.md#usage).\n",
		"docs/guide.md": "# Guide\n\n## Usage {#usage}\n",
	})

	out, err := execute(t, "check", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found")
}

func TestCheck_BrokenLinkFails(t *testing.T) {
	workspace(t, map[string]string{
		"README.md": "# Readme\n\nSee [guide](missing.md).\n",
	})

	out, err := execute(t, "check", "--offline")
	require.Error(t, err)
	require.ErrorIs(t, err, cli.ErrIssuesFound)
	assert.Equal(t, cli.ExitIssueErrors, cli.ExitCode(err))

	assert.Contains(t, out, "README.md:3:")
	assert.Contains(t, out, "(file-target)")
	assert.Contains(t, out, "See [guide](missing.md).")
}

func TestCheck_JSON(t *testing.T) {
	workspace(t, map[string]string{
		"a.md": "[x](nope.md)\n",
		"b.md": "# B\n",
	})

	out, err := execute(t, "check", "--offline", "--format", "json")
	require.ErrorIs(t, err, cli.ErrIssuesFound)

	var doc reporter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 2, doc.Summary.FilesChecked)
	assert.Equal(t, 1, doc.Summary.TotalIssues)
	require.Len(t, doc.Files, 2)
	assert.Equal(t, "a.md", doc.Files[0].Path)
	assert.Equal(t, "file-target", doc.Files[0].Diagnostics[0].Validator)
}

func TestCheck_DisableValidator(t *testing.T) {
	workspace(t, map[string]string{
		"a.md": "[x](nope.md)\n",
	})

	out, err := execute(t, "check", "--offline", "--disable", "file-target")
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found")
}

func TestCheck_StrictWarnings(t *testing.T) {
	workspace(t, map[string]string{
		"a.md": "# A\n\n[x](#missing)\n",
	})

	_, err := execute(t, "check", "--offline")
	require.NoError(t, err, "warnings alone do not fail the run")

	_, err = execute(t, "check", "--offline", "--strict")
	require.Error(t, err)
	assert.Equal(t, cli.ExitIssueWarnings, cli.ExitCode(err))
}

func TestCheck_ProjectConfig(t *testing.T) {
	workspace(t, map[string]string{
		".mdlinks.yml": "ignore:\n  - \"drafts/**\"\n",
		"drafts/a.md":  "[x](nope.md)\n",
		"ok.md":        "# Ok\n",
	})

	_, err := execute(t, "check", "--offline")
	require.NoError(t, err)
}

func TestCheck_InvalidConfig(t *testing.T) {
	workspace(t, map[string]string{
		".mdlinks.yml": "tab_width: -3\n",
		"a.md":         "# A\n",
	})

	_, err := execute(t, "check", "--offline")
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestCheck_Usage(t *testing.T) {
	workspace(t, map[string]string{"a.md": "# A\n"})

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"check", "--bogus"}},
		{name: "bad format", args: []string{"check", "--format", "table"}},
		{name: "missing path", args: []string{"check", "--offline", "nowhere"}},
	}

	for _, tt := range tests {
		_, err := execute(t, tt.args...)
		require.Error(t, err, tt.name)
		assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err), tt.name)
	}
}

func TestRegions(t *testing.T) {
	workspace(t, map[string]string{
		"doc.md": "# Doc\n\n```go\nfmt.Println()\n```\n\ntext\n",
	})

	out, err := execute(t, "regions", "doc.md")
	require.NoError(t, err)
	assert.Contains(t, out, "code-block")
	assert.Contains(t, out, "default")

	out, err = execute(t, "regions", "--format", "json", "doc.md")
	require.NoError(t, err)

	var regions []struct {
		Kind      string `json:"kind"`
		StartLine int    `json:"startLine"`
		EndLine   int    `json:"endLine"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &regions))
	require.NotEmpty(t, regions)

	var found bool
	for _, r := range regions {
		if r.Kind == "code-block" {
			found = true
			assert.Equal(t, 3, r.StartLine)
			assert.Equal(t, 5, r.EndLine)
		}
	}
	assert.True(t, found)

	_, err = execute(t, "regions")
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestValidators_JSON(t *testing.T) {
	workspace(t, map[string]string{
		".mdlinks.yml": "validators:\n  url:\n    enabled: false\n",
	})

	out, err := execute(t, "validators", "--format", "json")
	require.NoError(t, err)

	var infos []struct {
		Name     string `json:"name"`
		Severity string `json:"severity"`
		Enabled  bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &infos))

	byName := make(map[string]bool)
	for _, info := range infos {
		byName[info.Name] = info.Enabled
	}
	assert.True(t, byName["file-target"])
	assert.False(t, byName["url"])
}

func TestInit(t *testing.T) {
	dir := workspace(t, nil)

	_, err := execute(t, "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".mdlinks.yml"))

	_, err = execute(t, "init")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))

	_, err = execute(t, "init", "--force", "--full")
	require.NoError(t, err)

	_, err = execute(t, "init", "--resolved", "--output", "resolved.yml")
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dir, "resolved.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "tab_width")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "abc123", info["commit"])
}

func TestHelp(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "check", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--offline")
	assert.Contains(t, out, "Global Flags:")
}

func TestCheck_DetailedSummary(t *testing.T) {
	workspace(t, map[string]string{"a.md": "# A\n"})

	out, err := execute(t, "check", "--offline", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Check passed")
}
