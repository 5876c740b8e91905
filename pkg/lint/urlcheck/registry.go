package urlcheck

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/yaklabco/mdlinks/pkg/config"
)

// Registry is an ordered chain of checkers.
type Registry struct {
	mu            sync.RWMutex
	plugins       []Checker
	defaults      []Checker
	pluginTimeout time.Duration
}

// NewRegistry creates a chain ending in defaults.
// pluginTimeout bounds each plug-in check; zero means no extra bound.
func NewRegistry(pluginTimeout time.Duration, defaults ...Checker) *Registry {
	return &Registry{
		defaults:      defaults,
		pluginTimeout: pluginTimeout,
	}
}

// NewDefaultRegistry builds the built-in chain from the network configuration:
// ignore patterns, then HTTP(S), then a TCP dial for other schemes.
func NewDefaultRegistry(cfg config.NetworkConfig) (*Registry, error) {
	var defaults []Checker

	if len(cfg.Ignore) > 0 {
		ignore, err := NewIgnoreChecker(cfg.Ignore)
		if err != nil {
			return nil, fmt.Errorf("network ignore: %w", err)
		}
		defaults = append(defaults, ignore)
	}

	defaults = append(defaults,
		NewHTTPChecker(HTTPOptions{Timeout: cfg.HTTPTimeout, UserAgent: cfg.UserAgent}),
		NewDialChecker(cfg.DialTimeout),
	)

	return NewRegistry(cfg.PluginTimeout, defaults...), nil
}

// Register adds a plug-in checker. Plug-ins are consulted in registration
// order, ahead of every built-in checker.
func (r *Registry) Register(c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = append(r.plugins, c)
}

// Checkers returns the full chain in consultation order.
func (r *Registry) Checkers() []Checker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Checker, 0, len(r.plugins)+len(r.defaults))
	out = append(out, r.plugins...)
	return append(out, r.defaults...)
}

// Lookup returns the first checker responsible for u.
//
//nolint:ireturn // the chain stores interfaces
func (r *Registry) Lookup(u *url.URL) (Checker, bool) {
	checker, _, ok := r.lookup(u)
	return checker, ok
}

func (r *Registry) lookup(u *url.URL) (Checker, bool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.plugins {
		if c.Responsible(u) {
			return c, true, true
		}
	}
	for _, c := range r.defaults {
		if c.Responsible(u) {
			return c, false, true
		}
	}
	return nil, false, false
}

// Check runs the first responsible checker. A URL nobody claims is skipped.
func (r *Registry) Check(ctx context.Context, u *url.URL) Result {
	checker, plugin, ok := r.lookup(u)
	if !ok {
		return Result{Skipped: true}
	}

	if plugin && r.pluginTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.pluginTimeout)
		defer cancel()
	}

	res := checker.Check(ctx, u)
	if res.Checker == "" {
		res.Checker = checker.Name()
	}
	return res
}
