package urlcheck

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gobwas/glob"
)

// IgnoreChecker claims URLs matching any of its patterns and skips them.
// A pattern is matched against the full URL and against the host alone,
// so both "https://example.com/private/*" and "*.internal" work.
type IgnoreChecker struct {
	patterns []string
	globs    []glob.Glob
}

// NewIgnoreChecker compiles patterns.
func NewIgnoreChecker(patterns []string) (*IgnoreChecker, error) {
	c := &IgnoreChecker{patterns: patterns}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		c.globs = append(c.globs, g)
	}
	return c, nil
}

// Name returns "ignore".
func (c *IgnoreChecker) Name() string {
	return "ignore"
}

// Responsible reports whether u matches an ignore pattern.
func (c *IgnoreChecker) Responsible(u *url.URL) bool {
	full := u.String()
	host := u.Hostname()
	for _, g := range c.globs {
		if g.Match(full) || (host != "" && g.Match(host)) {
			return true
		}
	}
	return false
}

// Check skips u.
func (c *IgnoreChecker) Check(context.Context, *url.URL) Result {
	return Result{Checker: c.Name(), Skipped: true}
}
