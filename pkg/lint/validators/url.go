package validators

import (
	"fmt"
	"sync"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/lint/urlcheck"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

// URLValidator checks that targets with a network scheme are reachable.
// Each configuration gets its own checker chain and result cache.
type URLValidator struct {
	lint.BaseValidator

	mu      sync.Mutex
	plugins []urlcheck.Checker
	caches  map[*config.Config]*urlcheck.Cache
}

// NewURLValidator creates the url validator.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		BaseValidator: lint.NewBaseValidator(
			"url",
			"Network link targets must be reachable",
			config.SeverityWarning,
			markdownFiles,
			linkRegions,
		),
		caches: make(map[*config.Config]*urlcheck.Cache),
	}
}

// UsesNetwork marks the validator for switching off in offline mode.
func (v *URLValidator) UsesNetwork() bool {
	return true
}

// RegisterChecker adds a plug-in checker ahead of the built-in ones.
// Chains already built keep their checkers; new plug-ins apply from the next Reset.
func (v *URLValidator) RegisterChecker(c urlcheck.Checker) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.plugins = append(v.plugins, c)
}

// Reset drops every cached result and checker chain.
func (v *URLValidator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.caches = make(map[*config.Config]*urlcheck.Cache)
}

func (v *URLValidator) cache(cfg *config.Config) (*urlcheck.Cache, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if cache, ok := v.caches[cfg]; ok {
		return cache, nil
	}

	network := config.NewConfig().Network
	if cfg != nil {
		network = cfg.Network
	}
	registry, err := urlcheck.NewDefaultRegistry(network)
	if err != nil {
		return nil, fmt.Errorf("url checkers: %w", err)
	}
	for _, c := range v.plugins {
		registry.Register(c)
	}

	cache := urlcheck.NewCache(registry)
	v.caches[cfg] = cache
	return cache, nil
}

// Validate checks every target whose scheme is not file.
// A failed check is a warning on the target, never a pass failure.
func (v *URLValidator) Validate(pass *lint.Pass, region partition.Region) error {
	var cache *urlcheck.Cache

	for _, o := range occurrences(pass, region) {
		if pass.Cancelled() {
			return nil
		}

		t := pass.Target(o.match.Text)
		if t.IsBlank() || t.IsLocal() {
			continue
		}

		if _, err := t.URL(); err != nil {
			pass.Report(lint.NewDiagnosticf(lint.KindMalformedTarget, "Invalid URL %s", t.Raw).
				At(o.span()))
			continue
		}

		if cache == nil {
			var err error
			if cache, err = v.cache(pass.Config); err != nil {
				return err
			}
		}

		res := cache.Check(pass.Ctx, t.Raw)
		if res.OK() || pass.Cancelled() {
			continue
		}

		pass.Logger.Debug("url unreachable",
			logging.FieldURL, t.Raw,
			logging.FieldStatus, res.Status,
			logging.FieldError, res.Err)
		pass.Report(lint.NewDiagnosticf(lint.KindUnreachableTarget, "%s is unreachable: %v", t.Raw, res.Err).
			At(o.span()))
	}
	return nil
}
