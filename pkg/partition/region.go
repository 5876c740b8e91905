// Package partition splits Markdown text into typed, non-overlapping regions.
//
// Regions drive every later stage: only Default and DiagramInclude regions
// are scanned for links, so text inside comments, code, HTML and diagram
// blocks never produces link diagnostics.
package partition

import "fmt"

// Kind classifies a region of a document.
type Kind uint8

// Region kinds. The set is closed.
const (
	Default Kind = iota
	FrontMatter
	Comment
	CodeBlock
	HTMLBlock
	DotBlock
	UMLBlock
	MathBlock
	DiagramInclude
)

//nolint:gochecknoglobals // lookup table
var kindNames = [...]string{
	Default:        "default",
	FrontMatter:    "front-matter",
	Comment:        "comment",
	CodeBlock:      "code-block",
	HTMLBlock:      "html-block",
	DotBlock:       "dot-block",
	UMLBlock:       "uml-block",
	MathBlock:      "math-block",
	DiagramInclude: "diagram-include",
}

// String returns the kebab-case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind looks a kind up by its String form.
func ParseKind(name string) (Kind, bool) {
	for idx, n := range kindNames {
		if n == name {
			return Kind(idx), true
		}
	}
	return Default, false
}

// Kinds returns every region kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for idx := range kindNames {
		kinds[idx] = Kind(idx)
	}
	return kinds
}

// CarriesLinks reports whether link syntax inside regions of this kind is meaningful.
func (k Kind) CarriesLinks() bool {
	return k == Default || k == DiagramInclude
}

// Region is a typed byte range of a buffer.
type Region struct {
	Kind   Kind
	Offset int
	Length int
}

// End returns the exclusive end offset.
func (r Region) End() int {
	return r.Offset + r.Length
}

// Contains reports whether offset falls inside the region.
func (r Region) Contains(offset int) bool {
	return offset >= r.Offset && offset < r.End()
}

// Text returns the region's slice of text.
func (r Region) Text(text string) string {
	return text[r.Offset:r.End()]
}

func (r Region) String() string {
	return fmt.Sprintf("%s[%d:%d]", r.Kind, r.Offset, r.End())
}
