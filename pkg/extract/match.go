// Package extract finds link syntax in the text of a single region.
//
// All offsets are relative to the text passed in. Callers add the owning
// region's offset with Shift to obtain buffer offsets.
package extract

// Match is a located substring.
type Match struct {
	Text  string
	Start int
	End   int
}

// Shift returns the match moved by offset.
func (m Match) Shift(offset int) Match {
	m.Start += offset
	m.End += offset
	return m
}

// Len returns the match length in bytes.
func (m Match) Len() int {
	return m.End - m.Start
}

// IsZero reports whether the match is the zero value.
func (m Match) IsZero() bool {
	return m == Match{}
}

// Link is an inline link or image: [text](target "title").
type Link struct {
	Image  bool
	Match  Match
	Text   Match
	Target Match
	Title  string
}

// Definition is a link reference definition: [label]: target "title".
type Definition struct {
	Match  Match
	Label  Match
	Target Match
	Title  string

	// Loose marks a line that declares a label but whose remainder is not a
	// valid destination and title. The label counts as defined, the target is
	// not checked.
	Loose bool
}

// ReferenceStyle distinguishes the three reference link forms.
type ReferenceStyle int

const (
	// Full is [text][label].
	Full ReferenceStyle = iota
	// Collapsed is [label][].
	Collapsed
	// Shortcut is [label].
	Shortcut
)

func (s ReferenceStyle) String() string {
	switch s {
	case Full:
		return "full"
	case Collapsed:
		return "collapsed"
	default:
		return "shortcut"
	}
}

// Reference is a reference link or image usage.
type Reference struct {
	Style ReferenceStyle
	Image bool
	Match Match
	Text  Match
	Label Match
}

// Result holds everything found in one text, each list ordered by start offset.
type Result struct {
	Links       []Link
	Definitions []Definition
	References  []Reference
}

// Shift returns a copy of the result with every match moved by offset.
func (r *Result) Shift(offset int) *Result {
	out := &Result{
		Links:       make([]Link, len(r.Links)),
		Definitions: make([]Definition, len(r.Definitions)),
		References:  make([]Reference, len(r.References)),
	}
	for idx, link := range r.Links {
		link.Match = link.Match.Shift(offset)
		link.Text = link.Text.Shift(offset)
		link.Target = link.Target.Shift(offset)
		out.Links[idx] = link
	}
	for idx, def := range r.Definitions {
		def.Match = def.Match.Shift(offset)
		def.Label = def.Label.Shift(offset)
		if !def.Loose {
			def.Target = def.Target.Shift(offset)
		}
		out.Definitions[idx] = def
	}
	for idx, ref := range r.References {
		ref.Match = ref.Match.Shift(offset)
		ref.Text = ref.Text.Shift(offset)
		ref.Label = ref.Label.Shift(offset)
		out.References[idx] = ref
	}
	return out
}
