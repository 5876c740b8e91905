package extract

import (
	"sort"
	"strings"
)

// DefaultEscape is the escape character used by Extract.
const DefaultEscape = '\\'

const maxDefinitionIndent = 3

// Extractor finds links, definitions and references.
type Extractor struct {
	escape byte
}

// New returns an Extractor honoring the given escape character.
func New(escape byte) *Extractor {
	if escape == 0 {
		escape = DefaultEscape
	}
	return &Extractor{escape: escape}
}

// Extract scans text with the default escape character.
func Extract(text string) *Result {
	return New(DefaultEscape).Extract(text)
}

// Extract scans text. Bracket and parenthesis delimiters preceded by an odd
// number of escape characters are literal, and nothing inside an inline code
// span is matched.
func (e *Extractor) Extract(text string) *Result {
	s := &scanner{
		text:   text,
		escape: e.escape,
		skips:  make(map[int]int),
		res:    &Result{},
	}
	s.code = s.codeSpans()
	s.run()
	return s.res
}

type span struct {
	start, end int
}

type scanner struct {
	text   string
	escape byte
	code   []span
	skips  map[int]int // start -> end of ranges already consumed as destinations or labels
	res    *Result
}

func (s *scanner) run() {
	text := s.text
	for pos := 0; pos < len(text); {
		if end := s.codeSpanAt(pos); end > pos {
			pos = end
			continue
		}
		if end, ok := s.skips[pos]; ok {
			pos = end
			continue
		}
		if text[pos] != '[' || s.escaped(pos) {
			pos++
			continue
		}
		pos = s.bracket(pos)
	}
}

func (s *scanner) match(start, end int) Match {
	return Match{Text: s.text[start:end], Start: start, End: end}
}

func (s *scanner) escaped(idx int) bool {
	run := 0
	for i := idx - 1; i >= 0 && s.text[i] == s.escape; i-- {
		run++
	}
	return run%2 == 1
}

func (s *scanner) peek(idx int) byte {
	if idx < 0 || idx >= len(s.text) {
		return 0
	}
	return s.text[idx]
}

// blankLineAfter reports whether the newline at idx is followed by a blank line,
// which ends a paragraph.
func (s *scanner) blankLineAfter(idx int) bool {
	for k := idx + 1; k < len(s.text); k++ {
		switch s.text[k] {
		case ' ', '\t', '\r':
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// codeSpans locates inline code spans: a backtick run closed by the next run
// of the same length within the paragraph.
func (s *scanner) codeSpans() []span {
	text := s.text
	var spans []span

	for pos := 0; pos < len(text); {
		if text[pos] != '`' {
			pos++
			continue
		}
		run := countRun(text, pos, '`')
		if s.escaped(pos) {
			pos++
			continue
		}

		closing := -1
		for j := pos + run; j < len(text); {
			if text[j] == '\n' && s.blankLineAfter(j) {
				break
			}
			if text[j] != '`' {
				j++
				continue
			}
			n := countRun(text, j, '`')
			if n == run {
				closing = j
				break
			}
			j += n
		}

		if closing < 0 {
			pos += run
			continue
		}
		spans = append(spans, span{start: pos, end: closing + run})
		pos = closing + run
	}
	return spans
}

// codeSpanAt returns the end of the code span starting at pos, or pos.
func (s *scanner) codeSpanAt(pos int) int {
	idx := sort.Search(len(s.code), func(i int) bool { return s.code[i].start >= pos })
	if idx < len(s.code) && s.code[idx].start == pos {
		return s.code[idx].end
	}
	return pos
}

func countRun(text string, pos int, ch byte) int {
	n := 0
	for pos+n < len(text) && text[pos+n] == ch {
		n++
	}
	return n
}

// findClose returns the unescaped ']' balancing the '[' at open, or -1 when
// the paragraph ends first.
func (s *scanner) findClose(open int) int {
	depth := 0
	for j := open; j < len(s.text); j++ {
		if end := s.codeSpanAt(j); end > j {
			j = end - 1
			continue
		}
		switch s.text[j] {
		case '\n':
			if s.blankLineAfter(j) {
				return -1
			}
		case '[':
			if !s.escaped(j) {
				depth++
			}
		case ']':
			if !s.escaped(j) {
				depth--
				if depth == 0 {
					return j
				}
			}
		}
	}
	return -1
}

// bracket handles an unescaped '[' and returns where scanning resumes.
func (s *scanner) bracket(open int) int {
	image := open > 0 && s.text[open-1] == '!' && !s.escaped(open-1)
	start := open
	if image {
		start = open - 1
	}

	closing := s.findClose(open)
	if closing < 0 {
		return open + 1
	}

	switch s.peek(closing + 1) {
	case '(':
		s.inlineLink(start, open, closing, image)
	case '[':
		s.fullReference(start, open, closing, image)
	case ':':
		if image || !s.definitionIndent(open) {
			break
		}
		if end, ok := s.definition(open, closing); ok {
			return end
		}
		return closing + 2
	default:
		s.shortcut(start, open, closing, image)
	}

	// Resume inside the brackets so nested links such as badges are found too.
	return open + 1
}

// definitionIndent reports whether open is preceded on its line by at most three spaces.
func (s *scanner) definitionIndent(open int) bool {
	lineStart := strings.LastIndexByte(s.text[:open], '\n') + 1
	prefix := s.text[lineStart:open]
	return len(prefix) <= maxDefinitionIndent && strings.Trim(prefix, " ") == ""
}

func (s *scanner) inlineLink(start, open, closing int, image bool) {
	dest := closing + 2
	end := s.closeParen(dest)
	if end < 0 {
		return
	}

	// A destination with more unescaped '(' than ')' was cut short by the
	// first ')'. Recover the real end by counting nesting depth.
	if s.unbalanced(dest, end) {
		if balanced := s.balancedParen(dest); balanced >= 0 {
			end = balanced
		}
	}

	target, title := s.destination(dest, end)
	s.res.Links = append(s.res.Links, Link{
		Image:  image,
		Match:  s.match(start, end+1),
		Text:   s.match(open+1, closing),
		Target: target,
		Title:  title,
	})
	s.skips[closing+1] = end + 1
}

// closeParen returns the first ')' at or after from, escaped or not.
func (s *scanner) closeParen(from int) int {
	for j := from; j < len(s.text); j++ {
		switch s.text[j] {
		case ')':
			return j
		case '\n':
			if s.blankLineAfter(j) {
				return -1
			}
		}
	}
	return -1
}

func (s *scanner) unbalanced(from, to int) bool {
	depth := 0
	for j := from; j < to; j++ {
		if s.escaped(j) {
			continue
		}
		switch s.text[j] {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth > 0
}

// balancedParen scans from just after an opening '(' and returns the ')'
// that brings the depth back to zero, ignoring escaped parentheses.
func (s *scanner) balancedParen(from int) int {
	depth := 1
	for j := from; j < len(s.text); j++ {
		ch := s.text[j]
		if ch == '\n' && s.blankLineAfter(j) {
			return -1
		}
		if (ch != '(' && ch != ')') || s.escaped(j) {
			continue
		}
		if ch == '(' {
			depth++
			continue
		}
		depth--
		if depth == 0 {
			return j
		}
	}
	return -1
}

// destination splits text[from:to] into a target and an optional title.
func (s *scanner) destination(from, to int) (Match, string) {
	raw := s.text[from:to]
	lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
	trail := len(raw) - len(strings.TrimRight(raw, " \t\r\n"))
	start, end := from+lead, to-trail
	if start >= end {
		return Match{Start: from, End: from}, ""
	}

	if s.text[start] == '<' {
		if gt := strings.IndexByte(s.text[start:end], '>'); gt > 0 {
			return s.match(start+1, start+gt), unquote(strings.TrimSpace(s.text[start+gt+1 : end]))
		}
	}

	targetEnd, title := splitTitle(s.text[start:end])
	return s.match(start, start+targetEnd), title
}

// splitTitle finds a trailing quoted title separated from the target by
// whitespace. It returns the target length and the title text.
func splitTitle(dest string) (int, string) {
	if len(dest) < 3 {
		return len(dest), ""
	}
	closer := dest[len(dest)-1]
	var opener byte
	switch closer {
	case '"', '\'':
		opener = closer
	case ')':
		opener = '('
	default:
		return len(dest), ""
	}

	for k := 0; k+1 < len(dest)-1; k++ {
		if !isSpace(dest[k]) || dest[k+1] != opener {
			continue
		}
		target := strings.TrimRight(dest[:k], " \t\r\n")
		if target == "" {
			continue
		}
		return len(target), dest[k+2 : len(dest)-1]
	}
	return len(dest), ""
}

func unquote(title string) string {
	if len(title) >= 2 {
		first, last := title[0], title[len(title)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '(' && last == ')') {
			return title[1 : len(title)-1]
		}
	}
	return title
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func (s *scanner) fullReference(start, open, closing int, image bool) {
	labelOpen := closing + 1
	labelClose := s.findClose(labelOpen)
	if labelClose < 0 {
		return
	}

	ref := Reference{
		Style: Full,
		Image: image,
		Match: s.match(start, labelClose+1),
		Text:  s.match(open+1, closing),
		Label: s.match(labelOpen+1, labelClose),
	}
	if labelClose == labelOpen+1 {
		ref.Style = Collapsed
		ref.Label = ref.Text
	}

	s.res.References = append(s.res.References, ref)
	s.skips[labelOpen] = labelClose + 1
}

func (s *scanner) shortcut(start, open, closing int, image bool) {
	content := s.text[open+1 : closing]
	if content == "" || s.isTaskCheckbox(open, content) {
		return
	}

	label := s.match(open+1, closing)
	s.res.References = append(s.res.References, Reference{
		Style: Shortcut,
		Image: image,
		Match: s.match(start, closing+1),
		Text:  label,
		Label: label,
	})
}

// isTaskCheckbox reports whether [ ], [x] or [X] follows a list marker.
func (s *scanner) isTaskCheckbox(open int, content string) bool {
	if content != " " && content != "x" && content != "X" {
		return false
	}
	lineStart := strings.LastIndexByte(s.text[:open], '\n') + 1
	prefix := strings.TrimSpace(strings.TrimLeft(s.text[lineStart:open], " \t>"))
	switch prefix {
	case "-", "*", "+":
		return true
	}
	if prefix == "" {
		return false
	}
	digits := strings.TrimRight(prefix, ".)")
	if len(digits) != len(prefix)-1 || digits == "" {
		return false
	}
	for idx := range len(digits) {
		if digits[idx] < '0' || digits[idx] > '9' {
			return false
		}
	}
	return true
}

// definition parses [label]: destination "title". It returns the offset just
// past the definition, or false when the line only declares the label loosely.
func (s *scanner) definition(open, closing int) (int, bool) {
	text := s.text
	label := s.match(open+1, closing)
	if strings.TrimSpace(label.Text) == "" {
		return 0, false
	}

	pos := closing + 2
	for pos < len(text) && isSpace(text[pos]) {
		pos++
	}
	if pos >= len(text) {
		s.looseDefinition(open, closing)
		return 0, false
	}

	var target Match
	if text[pos] == '<' {
		gt := strings.IndexAny(text[pos+1:], ">\n")
		if gt < 0 || text[pos+1+gt] != '>' {
			s.looseDefinition(open, closing)
			return 0, false
		}
		target = s.match(pos+1, pos+1+gt)
		pos += gt + 2
	} else {
		end := pos
		for end < len(text) && !isSpace(text[end]) {
			end++
		}
		target = s.match(pos, end)
		pos = end
	}

	def := Definition{Label: label, Target: target}
	end := pos

	titleStart := pos
	for titleStart < len(text) && (text[titleStart] == ' ' || text[titleStart] == '\t') {
		titleStart++
	}

	switch {
	case s.restOfLineBlank(pos):
		// An optional title may follow on the next line.
		lineEnd := s.lineEnd(pos)
		if lineEnd < len(text) {
			next := lineEnd + 1
			for next < len(text) && (text[next] == ' ' || text[next] == '\t') {
				next++
			}
			if titleEnd, title, ok := s.title(next); ok && s.restOfLineBlank(titleEnd) {
				def.Title = title
				end = titleEnd
			}
		}
	case titleStart > pos:
		titleEnd, title, ok := s.title(titleStart)
		if !ok || !s.restOfLineBlank(titleEnd) {
			s.looseDefinition(open, closing)
			return 0, false
		}
		def.Title = title
		end = titleEnd
	default:
		s.looseDefinition(open, closing)
		return 0, false
	}

	def.Match = s.match(open, end)
	s.res.Definitions = append(s.res.Definitions, def)
	return end, true
}

func (s *scanner) looseDefinition(open, closing int) {
	label := s.match(open+1, closing)
	if strings.TrimSpace(label.Text) == "" {
		return
	}
	s.res.Definitions = append(s.res.Definitions, Definition{
		Match: s.match(open, closing+2),
		Label: label,
		Loose: true,
	})
}

// title parses a quoted title at pos that may span lines within the paragraph.
func (s *scanner) title(pos int) (int, string, bool) {
	var closer byte
	switch s.peek(pos) {
	case '"':
		closer = '"'
	case '\'':
		closer = '\''
	case '(':
		closer = ')'
	default:
		return 0, "", false
	}

	for j := pos + 1; j < len(s.text); j++ {
		ch := s.text[j]
		if ch == '\n' && s.blankLineAfter(j) {
			return 0, "", false
		}
		if ch == closer && !s.escaped(j) {
			return j + 1, s.text[pos+1 : j], true
		}
	}
	return 0, "", false
}

func (s *scanner) lineEnd(pos int) int {
	if nl := strings.IndexByte(s.text[pos:], '\n'); nl >= 0 {
		return pos + nl
	}
	return len(s.text)
}

func (s *scanner) restOfLineBlank(pos int) bool {
	return strings.Trim(s.text[pos:s.lineEnd(pos)], " \t\r") == ""
}
