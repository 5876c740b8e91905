package configloader

import (
	"maps"

	"github.com/yaklabco/mdlinks/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Maps: deep merge, with override's values taking precedence
//   - Slices: override replaces base entirely if override is non-nil
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.TabWidth != 0 {
		result.TabWidth = override.TabWidth
	}
	if override.EscapeChar != "" {
		result.EscapeChar = override.EscapeChar
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	// false is the zero value, so a later layer can switch these on but not off.
	if override.Strict {
		result.Strict = true
	}
	if override.Offline {
		result.Offline = true
	}
	if override.NoContext {
		result.NoContext = true
	}
	if override.Anchors.Implicit {
		result.Anchors.Implicit = true
	}

	result.Network = mergeNetwork(base.Network, override.Network)

	if override.Watch.Debounce != 0 {
		result.Watch.Debounce = override.Watch.Debounce
	}
	if override.Watch.MetricsAddr != "" {
		result.Watch.MetricsAddr = override.Watch.MetricsAddr
	}

	result.Validators = mergeValidators(base.Validators, override.Validators)

	if override.Extensions != nil {
		result.Extensions = override.Extensions
	}
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}
	if override.TaskTags != nil {
		result.TaskTags = override.TaskTags
	}
	if override.Enable != nil {
		result.Enable = override.Enable
	}
	if override.Disable != nil {
		result.Disable = override.Disable
	}

	return &result
}

func mergeNetwork(base, override config.NetworkConfig) config.NetworkConfig {
	result := base
	if override.Enabled != nil {
		result.Enabled = override.Enabled
	}
	if override.HTTPTimeout != 0 {
		result.HTTPTimeout = override.HTTPTimeout
	}
	if override.DialTimeout != 0 {
		result.DialTimeout = override.DialTimeout
	}
	if override.PluginTimeout != 0 {
		result.PluginTimeout = override.PluginTimeout
	}
	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}
	return result
}

// mergeValidators performs deep merge of validator configurations.
func mergeValidators(base, override map[string]config.ValidatorConfig) map[string]config.ValidatorConfig {
	result := make(map[string]config.ValidatorConfig, len(base)+len(override))
	maps.Copy(result, base)

	for name, val := range override {
		if existing, ok := result[name]; ok {
			result[name] = mergeValidatorConfig(existing, val)
		} else {
			result[name] = val
		}
	}
	return result
}

// mergeValidatorConfig merges individual validator configurations.
func mergeValidatorConfig(base, override config.ValidatorConfig) config.ValidatorConfig {
	result := base

	if override.Enabled != nil {
		result.Enabled = override.Enabled
	}
	if override.Severity != nil {
		result.Severity = override.Severity
	}

	if override.Options != nil {
		options := make(map[string]any, len(base.Options)+len(override.Options))
		maps.Copy(options, base.Options)
		maps.Copy(options, override.Options)
		result.Options = options
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for _, cfg := range configs[1:] {
		result = merge(result, cfg)
	}
	return result
}
