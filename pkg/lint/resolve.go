package lint

import (
	"slices"

	"github.com/yaklabco/mdlinks/pkg/config"
)

// ResolvedValidator pairs a Validator with its resolved configuration.
type ResolvedValidator struct {
	// Validator is the underlying implementation.
	Validator Validator

	// Enabled indicates whether the validator should run.
	Enabled bool

	// Severity is the resolved default severity for its diagnostics.
	Severity config.Severity

	// Override is set when the configuration pins the severity. A pinned
	// severity replaces whatever the validator chose per diagnostic.
	Override bool

	// Config is the validator-specific configuration (may be nil).
	Config *config.ValidatorConfig
}

// ResolveValidators determines which validators run, in registration order.
// Returns only enabled validators with their resolved configuration.
func ResolveValidators(registry *Registry, cfg *config.Config) []ResolvedValidator {
	var resolved []ResolvedValidator

	for _, v := range registry.Validators() {
		rv := resolveValidator(v, cfg)
		if rv.Enabled {
			resolved = append(resolved, rv)
		}
	}

	return resolved
}

// Network validators are switched off when the configuration forbids network access.
type networkValidator interface {
	UsesNetwork() bool
}

func resolveValidator(v Validator, cfg *config.Config) ResolvedValidator {
	rv := ResolvedValidator{
		Validator: v,
		Enabled:   v.DefaultEnabled(),
		Severity:  v.DefaultSeverity(),
	}

	if cfg == nil {
		return rv
	}

	if vc, ok := cfg.Validators[v.Name()]; ok {
		rv.Config = &vc

		if vc.Enabled != nil {
			rv.Enabled = *vc.Enabled
		}
		if vc.Severity != nil {
			rv.Severity = config.Severity(*vc.Severity)
			rv.Override = true
		}
	}

	// CLI flags win over the file configuration.
	if slices.Contains(cfg.Enable, v.Name()) {
		rv.Enabled = true
	}
	if slices.Contains(cfg.Disable, v.Name()) {
		rv.Enabled = false
	}

	if nv, ok := v.(networkValidator); ok && nv.UsesNetwork() && !cfg.NetworkEnabled() {
		rv.Enabled = false
	}

	return rv
}
