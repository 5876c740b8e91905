// Package anchor finds heading anchors declared in Markdown documents.
package anchor

import (
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/mdlinks/pkg/partition"
	"github.com/yaklabco/mdlinks/pkg/textbuf"
)

// headingRe matches an ATX heading carrying an explicit {#id} attribute.
var headingRe = regexp.MustCompile(`^#{1,6} .*\{#([^}]*)\}\s*$`)

// Declaration is an explicit anchor declared on a heading line.
type Declaration struct {
	// ID is the anchor identifier between "{#" and "}".
	ID string

	// Line is the 1-based line of the heading.
	Line int

	// Start and End are buffer offsets of the identifier.
	Start int
	End   int
}

// Declarations returns the explicit anchors declared on heading lines that
// start in a Default region. A heading split by inline math or a comment is
// matched against its whole line; the "{#" opener must itself be in a Default
// region.
func Declarations(buf *textbuf.Buffer, regions []partition.Region) []Declaration {
	var decls []Declaration
	text := buf.Text()

	for line := 1; line <= buf.LineCount(); line++ {
		info, ok := buf.LineInfo(line)
		if !ok || !inDefault(regions, info.StartOffset) {
			continue
		}
		loc := headingRe.FindStringSubmatchIndex(text[info.StartOffset:info.NewlineStart])
		if loc == nil {
			continue
		}
		start, end := info.StartOffset+loc[2], info.StartOffset+loc[3]
		if !inDefault(regions, start-2) {
			continue
		}
		decls = append(decls, Declaration{
			ID:    text[start:end],
			Line:  line,
			Start: start,
			End:   end,
		})
	}

	return decls
}

func inDefault(regions []partition.Region, offset int) bool {
	region, ok := partition.At(regions, offset)
	return ok && region.Kind == partition.Default
}

// ValidID reports whether id starts with an ASCII letter and continues with
// letters, digits, '-', '_', ':' or '.'.
func ValidID(id string) bool {
	if id == "" || !isLetter(id[0]) {
		return false
	}
	for idx := 1; idx < len(id); idx++ {
		ch := id[idx]
		if isLetter(ch) || (ch >= '0' && ch <= '9') {
			continue
		}
		switch ch {
		case '-', '_', ':', '.':
		default:
			return false
		}
	}
	return true
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// Implicit returns the heading IDs goldmark generates for src, including
// explicit attribute IDs.
func Implicit(src []byte) []string {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
	)
	doc := md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	var ids []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		if value, found := heading.AttributeString("id"); found {
			if id, isBytes := value.([]byte); isBytes {
				ids = append(ids, string(id))
			}
		}
		return ast.WalkSkipChildren, nil
	})
	return ids
}

// Set is a collection of anchor IDs.
type Set map[string]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts ids.
func (s Set) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Collect builds the anchor set of a whole Markdown document. Implicit
// heading IDs are included when implicit is set.
func Collect(src []byte, p *partition.Partitioner, implicit bool) Set {
	buf := textbuf.FromBytes(src)
	set := Set{}
	for _, decl := range Declarations(buf, p.Partition(buf.Text())) {
		set.Add(decl.ID)
	}
	if implicit {
		set.Add(Implicit(src)...)
	}
	return set
}

// FromDeclarations builds a set from already collected declarations.
func FromDeclarations(decls []Declaration) Set {
	set := Set{}
	for _, decl := range decls {
		set.Add(decl.ID)
	}
	return set
}
