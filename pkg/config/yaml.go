package config

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// YAMLIndent is the indentation used when writing configuration files.
const YAMLIndent = 2

// ToYAML serializes the configuration to YAML.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// FromYAML parses a configuration from YAML bytes.
// Fields absent from data keep their zero value; merging with defaults is the loader's job.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if cfg.Validators == nil {
		cfg.Validators = make(map[string]ValidatorConfig)
	}

	return cfg, nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	yamlBytes, err := c.ToYAML()
	if err != nil {
		return c.deepCopy()
	}

	clone, err := FromYAML(yamlBytes)
	if err != nil {
		return c.deepCopy()
	}

	c.copyCLIFields(clone)

	return clone
}

// copyCLIFields copies the yaml:"-" fields to target.
func (c *Config) copyCLIFields(target *Config) {
	target.Format = c.Format
	target.Jobs = c.Jobs
	target.Strict = c.Strict
	target.Offline = c.Offline
	target.NoContext = c.NoContext
	target.Enable = slices.Clone(c.Enable)
	target.Disable = slices.Clone(c.Disable)
}

// deepCopy is the fallback when the YAML round-trip fails.
func (c *Config) deepCopy() *Config {
	clone := &Config{
		Extensions: slices.Clone(c.Extensions),
		Ignore:     slices.Clone(c.Ignore),
		TabWidth:   c.TabWidth,
		EscapeChar: c.EscapeChar,
		Network:    c.Network.clone(),
		Anchors:    c.Anchors,
		Watch:      c.Watch,
		TaskTags:   slices.Clone(c.TaskTags),
	}

	if c.Validators != nil {
		clone.Validators = make(map[string]ValidatorConfig, len(c.Validators))
		for name, vc := range c.Validators {
			clone.Validators[name] = vc.clone()
		}
	}

	c.copyCLIFields(clone)

	return clone
}

func (n NetworkConfig) clone() NetworkConfig {
	out := n
	if n.Enabled != nil {
		enabled := *n.Enabled
		out.Enabled = &enabled
	}
	out.Ignore = slices.Clone(n.Ignore)
	return out
}

// clone creates a deep copy of a ValidatorConfig.
func (vc ValidatorConfig) clone() ValidatorConfig {
	out := ValidatorConfig{}

	if vc.Enabled != nil {
		enabled := *vc.Enabled
		out.Enabled = &enabled
	}

	if vc.Severity != nil {
		severity := *vc.Severity
		out.Severity = &severity
	}

	if vc.Options != nil {
		out.Options = make(map[string]any, len(vc.Options))
		maps.Copy(out.Options, vc.Options) // nested values are shared
	}

	return out
}
