package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdlinks/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Parallel()

	t.Run("nil config returns nil", func(t *testing.T) {
		t.Parallel()
		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies Validators map", func(t *testing.T) {
		t.Parallel()

		enabled := true
		severity := "error"
		original := &config.Config{
			Validators: map[string]config.ValidatorConfig{
				"url": {
					Enabled:  &enabled,
					Severity: &severity,
					Options:  map[string]any{"retries": 2},
				},
			},
		}

		clone := original.Clone()
		require.NotNil(t, clone)
		require.Contains(t, clone.Validators, "url")
		assert.True(t, *clone.Validators["url"].Enabled)
		assert.Equal(t, "error", *clone.Validators["url"].Severity)

		newSeverity := "warning"
		clone.Validators["url"] = config.ValidatorConfig{Severity: &newSeverity}
		assert.Equal(t, "error", *original.Validators["url"].Severity)
	})

	t.Run("deep copies slices", func(t *testing.T) {
		t.Parallel()

		original := &config.Config{
			Ignore:   []string{"vendor/**"},
			TaskTags: []string{"TODO"},
			Network:  config.NetworkConfig{Ignore: []string{"https://localhost*"}},
		}

		clone := original.Clone()
		clone.Ignore[0] = "changed"
		clone.TaskTags[0] = "changed"
		clone.Network.Ignore[0] = "changed"

		assert.Equal(t, "vendor/**", original.Ignore[0])
		assert.Equal(t, "TODO", original.TaskTags[0])
		assert.Equal(t, "https://localhost*", original.Network.Ignore[0])
	})

	t.Run("preserves CLI fields", func(t *testing.T) {
		t.Parallel()

		original := config.NewConfig()
		original.Format = config.FormatSARIF
		original.Jobs = 4
		original.Strict = true
		original.Offline = true
		original.NoContext = true
		original.Enable = []string{"url"}
		original.Disable = []string{"task-marker"}

		clone := original.Clone()
		assert.Equal(t, original.Format, clone.Format)
		assert.Equal(t, original.Jobs, clone.Jobs)
		assert.True(t, clone.Strict)
		assert.True(t, clone.Offline)
		assert.True(t, clone.NoContext)
		assert.Equal(t, original.Enable, clone.Enable)
		assert.Equal(t, original.Disable, clone.Disable)
		assert.Equal(t, original.Network.HTTPTimeout, clone.Network.HTTPTimeout)
		assert.Equal(t, original.Watch.Debounce, clone.Watch.Debounce)
	})
}

func TestConfigToYAML(t *testing.T) {
	t.Parallel()

	t.Run("nil config returns nil", func(t *testing.T) {
		t.Parallel()
		var cfg *config.Config
		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("durations are written as strings", func(t *testing.T) {
		t.Parallel()

		data, err := config.NewConfig().ToYAML()
		require.NoError(t, err)
		assert.Contains(t, string(data), "http_timeout: 2s")
		assert.Contains(t, string(data), "debounce: 1s")
		assert.NotContains(t, string(data), "strict")
	})
}

func TestFromYAML(t *testing.T) {
	t.Parallel()

	t.Run("parses valid YAML", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.FromYAML([]byte(`
tab_width: 8
network:
  enabled: false
  http_timeout: 500ms
anchors:
  implicit: true
validators:
  anchor:
    severity: error
`))
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.TabWidth)
		assert.False(t, cfg.Network.IsEnabled())
		assert.Equal(t, 500*time.Millisecond, cfg.Network.HTTPTimeout)
		assert.True(t, cfg.Anchors.Implicit)
		require.Contains(t, cfg.Validators, "anchor")
		assert.Equal(t, "error", *cfg.Validators["anchor"].Severity)
	})

	t.Run("initializes empty Validators map", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.FromYAML([]byte(`tab_width: 4`))
		require.NoError(t, err)
		assert.NotNil(t, cfg.Validators)
	})

	t.Run("rejects bad durations", func(t *testing.T) {
		t.Parallel()
		_, err := config.FromYAML([]byte("watch:\n  debounce: soon\n"))
		require.Error(t, err)
	})
}

func TestConfigHelpers(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	assert.Equal(t, byte('\\'), cfg.Escape())
	assert.True(t, cfg.NetworkEnabled())

	cfg.EscapeChar = "^"
	assert.Equal(t, byte('^'), cfg.Escape())

	cfg.EscapeChar = "ab"
	assert.Equal(t, byte('\\'), cfg.Escape())

	cfg.Offline = true
	assert.False(t, cfg.NetworkEnabled())

	var nilCfg *config.Config
	assert.False(t, nilCfg.NetworkEnabled())
	assert.Equal(t, byte('\\'), nilCfg.Escape())
}

func TestSeverity(t *testing.T) {
	t.Parallel()

	assert.Less(t, config.SeverityError.Rank(), config.SeverityWarning.Rank())
	assert.Less(t, config.SeverityWarning.Rank(), config.SeverityInfo.Rank())
	assert.True(t, config.SeverityInfo.IsValid())
	assert.False(t, config.Severity("fatal").IsValid())
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	t.Run("minimal template parses", func(t *testing.T) {
		t.Parallel()

		data, err := config.GenerateTemplate(config.TemplateOptions{})
		require.NoError(t, err)

		cfg, err := config.FromYAML(data)
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.TabWidth)
		assert.Equal(t, `\`, cfg.EscapeChar)
		assert.Equal(t, 2*time.Second, cfg.Network.HTTPTimeout)
		assert.Equal(t, []string{"TODO", "FIXME", "XXX"}, cfg.TaskTags)
	})

	t.Run("full template lists validators", func(t *testing.T) {
		t.Parallel()

		provider := func() []config.ValidatorInfo {
			return []config.ValidatorInfo{
				{Name: "file-target", Description: "Local link targets must exist", Enabled: true, Severity: config.SeverityError},
				{Name: "url", Description: "URLs must be reachable", Enabled: true, Severity: config.SeverityWarning},
			}
		}

		data, err := config.GenerateTemplateWith(config.TemplateOptions{Full: true}, provider)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal(data, &doc))
		validators, ok := doc["validators"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, validators, "file-target")
		assert.Contains(t, validators, "url")
	})

	t.Run("full template without validators fails", func(t *testing.T) {
		t.Parallel()

		_, err := config.GenerateTemplateWith(config.TemplateOptions{Full: true}, nil)
		require.Error(t, err)
	})
}
