package urlcheck

import (
	"context"
	"errors"
	"net/url"
)

// Sentinel errors carried by failed results.
var (
	// ErrHTTPStatus indicates an HTTP response with a status of 400 or above.
	ErrHTTPStatus = errors.New("http error status")

	// ErrUnreachable indicates a transport failure.
	ErrUnreachable = errors.New("unreachable")
)

// Result is the outcome of checking one URL.
type Result struct {
	// Checker is the name of the checker that claimed the URL.
	Checker string

	// Skipped is set when the checker claimed the URL without probing it.
	Skipped bool

	// Status is the HTTP status code, when one was received.
	Status int

	// Err is nil when the target is reachable.
	Err error
}

// OK reports whether the target is reachable or was skipped.
func (r Result) OK() bool {
	return r.Err == nil
}

// Checker checks URLs it declares itself responsible for.
type Checker interface {
	// Name identifies the checker in logs and results.
	Name() string

	// Responsible reports whether the checker handles u.
	Responsible(u *url.URL) bool

	// Check probes u. Failures are reported in the Result, not as panics.
	Check(ctx context.Context, u *url.URL) Result
}

// CheckerFunc adapts a pair of functions to Checker.
type CheckerFunc struct {
	ID        string
	Claims    func(u *url.URL) bool
	CheckWith func(ctx context.Context, u *url.URL) Result
}

// Name returns ID.
func (c CheckerFunc) Name() string {
	return c.ID
}

// Responsible calls Claims.
func (c CheckerFunc) Responsible(u *url.URL) bool {
	return c.Claims != nil && c.Claims(u)
}

// Check calls CheckWith.
func (c CheckerFunc) Check(ctx context.Context, u *url.URL) Result {
	if c.CheckWith == nil {
		return Result{Checker: c.ID, Skipped: true}
	}
	return c.CheckWith(ctx, u)
}
