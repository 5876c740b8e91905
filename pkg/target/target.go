// Package target decomposes raw link targets into scheme, path and fragment.
//
// Markdown targets are often not valid URIs (paths with spaces, Windows drive
// letters, unencoded characters), so a strict parse is tried first and a
// permissive manual split is used when it fails.
package target

import (
	"net/url"
	"strings"
)

// Target is a decomposed link target.
type Target struct {
	// Raw is the target exactly as written.
	Raw string

	// Scheme is the lower-cased URI scheme, empty for relative references.
	Scheme string

	// Path is the decoded path, or the opaque part for URIs such as mailto:.
	Path string

	// Fragment is the text after the first '#', without the '#'.
	Fragment string

	// HasFragment distinguishes "a.md#" from "a.md".
	HasFragment bool

	// SelfReference is set by Resolve when the target points into the
	// document that contains it.
	SelfReference bool

	// Strict reports whether the strict URI parse succeeded.
	Strict bool
}

// Parse decomposes raw.
func Parse(raw string) Target {
	if t, ok := parseStrict(raw); ok {
		return t
	}
	return parseLoose(raw)
}

// Resolve decomposes raw and treats a blank path with a fragment as a
// reference into selfPath.
func Resolve(raw, selfPath string) Target {
	t := Parse(raw)
	if t.Scheme == "" && strings.TrimSpace(t.Path) == "" && t.HasFragment {
		t.Path = selfPath
		t.SelfReference = true
	}
	return t
}

// IsBlank reports whether the raw target is empty or whitespace.
func (t Target) IsBlank() bool {
	return strings.TrimSpace(t.Raw) == ""
}

// IsLocal reports whether the target names something on the local file system.
func (t Target) IsLocal() bool {
	return t.Scheme == "" || t.Scheme == "file"
}

// IsNetwork reports whether the target uses http or https.
func (t Target) IsNetwork() bool {
	return t.Scheme == "http" || t.Scheme == "https"
}

// HasTrailingSlash reports whether the path ends with a '/'.
func (t Target) HasTrailingSlash() bool {
	return strings.HasSuffix(t.Path, "/")
}

// URL parses the raw target as a URL for network checks.
func (t Target) URL() (*url.URL, error) {
	return url.Parse(strings.TrimSpace(t.Raw))
}

func parseStrict(raw string) (Target, bool) {
	if raw == "" || !uriChars(raw) {
		return Target{}, false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, false
	}
	// A single-letter scheme is a Windows drive letter, not a scheme.
	if len(u.Scheme) == 1 {
		return Target{}, false
	}

	t := Target{
		Raw:         raw,
		Scheme:      strings.ToLower(u.Scheme),
		Path:        u.Path,
		Fragment:    u.Fragment,
		HasFragment: strings.Contains(raw, "#"),
		Strict:      true,
	}
	if u.Opaque != "" {
		t.Path = u.Opaque
	}
	return t, true
}

func parseLoose(raw string) Target {
	t := Target{Raw: raw}
	rest := raw

	if idx := strings.IndexByte(rest, '#'); idx >= 0 {
		t.Fragment = rest[idx+1:]
		t.HasFragment = true
		rest = rest[:idx]
	}

	colon := strings.IndexByte(rest, ':')
	slash := strings.IndexByte(rest, '/')
	if colon > 1 && (slash < 0 || colon < slash) {
		t.Scheme = strings.ToLower(rest[:colon])
		rest = rest[colon+1:]
		rest = strings.TrimPrefix(rest, "//")
	}

	t.Path = rest
	if decoded, err := url.PathUnescape(rest); err == nil {
		t.Path = decoded
	}
	return t
}

// uriChars reports whether s only uses characters allowed in an RFC 3986 URI reference.
func uriChars(s string) bool {
	for idx := range len(s) {
		ch := s[idx]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case strings.IndexByte("-._~:/?#[]@!$&'()*+,;=%", ch) >= 0:
		default:
			return false
		}
	}
	return true
}
