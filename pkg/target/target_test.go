package target_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdlinks/pkg/target"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		scheme   string
		path     string
		fragment string
		hasFrag  bool
		strict   bool
	}{
		{"relative file", "docs/a.md", "", "docs/a.md", "", false, true},
		{"file with fragment", "a.md#intro", "", "a.md", "intro", true, true},
		{"fragment only", "#intro", "", "", "intro", true, true},
		{"empty fragment", "a.md#", "", "a.md", "", true, true},
		{"https", "https://example.com/x?y=1#z", "https", "/x", "z", true, true},
		{"mailto opaque", "mailto:me@example.com", "mailto", "me@example.com", "", false, true},
		{"percent encoded", "my%20file.md", "", "my file.md", "", false, true},
		{"member fragment", "File.ext#member(Type)", "", "File.ext", "member(Type)", true, true},
		{"space falls back", "my file.md#Sec", "", "my file.md", "Sec", true, false},
		{"drive letter slash", "C:/docs/a.md", "", "C:/docs/a.md", "", false, false},
		{"drive letter backslash", `C:\docs\a.md`, "", `C:\docs\a.md`, "", false, false},
		{"scheme with space", "http://x.com/a b", "http", "x.com/a b", "", false, false},
		{"fallback first hash wins", "a b#c#d", "", "a b", "c#d", true, false},
		{"colon after slash is not scheme", "dir/a:b c", "", "dir/a:b c", "", false, false},
		{"escaped paren absorbed", `url\`, "", `url\`, "", false, false},
		{"upper case scheme", "HTTPS://example.com", "https", "", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := target.Parse(tt.raw)
			assert.Equal(t, tt.raw, got.Raw)
			assert.Equal(t, tt.scheme, got.Scheme)
			assert.Equal(t, tt.path, got.Path)
			assert.Equal(t, tt.fragment, got.Fragment)
			assert.Equal(t, tt.hasFrag, got.HasFragment)
			assert.Equal(t, tt.strict, got.Strict)
		})
	}
}

func TestResolve_SelfReference(t *testing.T) {
	t.Parallel()

	got := target.Resolve("#intro", "docs/guide.md")
	assert.True(t, got.SelfReference)
	assert.Equal(t, "docs/guide.md", got.Path)
	assert.Equal(t, "intro", got.Fragment)

	other := target.Resolve("other.md#intro", "docs/guide.md")
	assert.False(t, other.SelfReference)
	assert.Equal(t, "other.md", other.Path)

	plain := target.Resolve("", "docs/guide.md")
	assert.False(t, plain.SelfReference)
	assert.True(t, plain.IsBlank())
}

func TestTarget_Predicates(t *testing.T) {
	t.Parallel()

	assert.True(t, target.Parse("a.md").IsLocal())
	assert.True(t, target.Parse("file:///tmp/a.md").IsLocal())
	assert.False(t, target.Parse("https://x.org").IsLocal())
	assert.True(t, target.Parse("https://x.org").IsNetwork())
	assert.False(t, target.Parse("ftp://x.org").IsNetwork())
	assert.True(t, target.Parse("tests/").HasTrailingSlash())
	assert.True(t, target.Parse("  ").IsBlank())
}
