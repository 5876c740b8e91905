package urlcheck

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// DefaultDialTimeout bounds a single reachability dial.
const DefaultDialTimeout = 5 * time.Second

// DialChecker is the generic reachability check for schemes without a
// dedicated checker: it opens and closes a TCP connection to the host.
// URLs without a host (mailto:, urn:) and schemes with no known port are skipped.
type DialChecker struct {
	dialer net.Dialer
}

// NewDialChecker creates a DialChecker.
func NewDialChecker(timeout time.Duration) *DialChecker {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return &DialChecker{dialer: net.Dialer{Timeout: timeout}}
}

// Name returns "dial".
func (c *DialChecker) Name() string {
	return "dial"
}

// Responsible claims every URL with a scheme other than file.
func (c *DialChecker) Responsible(u *url.URL) bool {
	return u.Scheme != "" && u.Scheme != "file"
}

// Check dials the host.
func (c *DialChecker) Check(ctx context.Context, u *url.URL) Result {
	res := Result{Checker: c.Name()}

	host := u.Hostname()
	if host == "" {
		res.Skipped = true
		return res
	}

	port := u.Port()
	if port == "" {
		p, err := net.LookupPort("tcp", u.Scheme)
		if err != nil {
			res.Skipped = true
			return res
		}
		port = strconv.Itoa(p)
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		return res
	}
	_ = conn.Close()
	return res
}
