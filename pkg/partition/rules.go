package partition

import (
	"path/filepath"
	"strings"

	"github.com/yaklabco/mdlinks/pkg/langdetect"
)

// RuleKind names one scanning rule. Rules are tried in declaration order
// at the current position and the first match wins.
type RuleKind uint8

const (
	RuleFrontMatter RuleKind = iota
	RuleComment
	RuleMath
	RuleDiagramInclude
	RuleHTMLBlock
	RuleDiagramFence
	RuleDiagramDelimited
	RuleFence
	RuleIndentedCode
)

//nolint:gochecknoglobals // fixed rule order
var ruleOrder = [...]RuleKind{
	RuleFrontMatter,
	RuleComment,
	RuleMath,
	RuleDiagramInclude,
	RuleHTMLBlock,
	RuleDiagramFence,
	RuleDiagramDelimited,
	RuleFence,
	RuleIndentedCode,
}

// diagramKeywords are the @start<keyword> / @end<keyword> pairs recognized at line start.
//
//nolint:gochecknoglobals // lookup table
var diagramKeywords = map[string]bool{
	"uml":     true,
	"salt":    true,
	"yaml":    true,
	"json":    true,
	"mindmap": true,
	"gantt":   true,
	"wbs":     true,
	"dot":     true,
}

// htmlBlockTags open a raw HTML block regardless of what follows them on the line.
//
//nolint:gochecknoglobals // lookup table
var htmlBlockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "base": true, "basefont": true,
	"blockquote": true, "body": true, "caption": true, "center": true, "col": true,
	"colgroup": true, "dd": true, "details": true, "dialog": true, "dir": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "frame": true, "frameset": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "header": true, "hr": true, "html": true, "iframe": true,
	"legend": true, "li": true, "link": true, "main": true, "menu": true,
	"menuitem": true, "nav": true, "noframes": true, "ol": true, "optgroup": true,
	"option": true, "p": true, "param": true, "pre": true, "script": true,
	"search": true, "section": true, "style": true, "summary": true, "table": true,
	"tbody": true, "td": true, "textarea": true, "tfoot": true, "th": true,
	"thead": true, "title": true, "tr": true, "track": true, "ul": true,
}

// IncludeExtensions lists the file extensions that turn an image link into a diagram include.
//
//nolint:gochecknoglobals // lookup table
var IncludeExtensions = []string{".puml", ".plantuml", ".iuml"}

const maxBlockIndent = 3

// scanner applies the rule set to one buffer.
type scanner struct {
	cur      cursor
	tabWidth int
}

// try runs a single rule at the cursor. On failure the cursor is restored.
func (s *scanner) try(rule RuleKind) (Kind, bool) {
	mark := s.cur.mark()

	var (
		kind Kind
		ok   bool
	)

	switch rule {
	case RuleFrontMatter:
		kind, ok = FrontMatter, s.frontMatter()
	case RuleComment:
		kind, ok = Comment, s.comment()
	case RuleMath:
		kind, ok = MathBlock, s.math()
	case RuleDiagramInclude:
		kind, ok = DiagramInclude, s.diagramInclude()
	case RuleHTMLBlock:
		kind, ok = HTMLBlock, s.htmlBlock()
	case RuleDiagramFence:
		kind, ok = s.diagramFence()
	case RuleDiagramDelimited:
		kind, ok = UMLBlock, s.diagramDelimited()
	case RuleFence:
		kind, ok = CodeBlock, s.fence()
	case RuleIndentedCode:
		kind, ok = CodeBlock, s.indentedCode()
	}

	if !ok || s.cur.pos <= mark {
		s.cur.reset(mark)
		return Default, false
	}
	return kind, true
}

// next tries every rule in order at the cursor.
func (s *scanner) next() (Kind, bool) {
	for _, rule := range ruleOrder {
		if kind, ok := s.try(rule); ok {
			return kind, true
		}
	}
	return Default, false
}

// frontMatter matches a "---" line at offset 0 through the next "---" or "..." line.
func (s *scanner) frontMatter() bool {
	if s.cur.pos != 0 || !s.cur.consume("---") {
		return false
	}
	text := s.cur.text
	if !isBlank(text[s.cur.pos:s.cur.lineEnd(s.cur.pos)]) {
		return false
	}

	line := s.cur.nextLine(s.cur.pos)
	for line < len(text) {
		end := s.cur.lineEnd(line)
		content := strings.TrimRight(text[line:end], " \t\r")
		if content == "---" || content == "..." {
			s.cur.pos = line + len(content)
			return true
		}
		line = s.cur.nextLine(line)
	}
	return false
}

// comment matches <!-- ... -->. An escaped terminator does not close the
// comment, and an unterminated comment runs to the end of the buffer.
func (s *scanner) comment() bool {
	if s.cur.escaped(s.cur.pos) || !s.cur.consume("<!--") {
		return false
	}
	end := s.cur.indexUnescaped("-->", s.cur.pos)
	if end < 0 {
		s.cur.pos = len(s.cur.text)
		return true
	}
	s.cur.pos = end + len("-->")
	return true
}

// math matches $$ ... $$ blocks and single-line $...$ spans outside link
// destinations and code spans.
func (s *scanner) math() bool {
	if s.cur.peek() != '$' || s.cur.escaped(s.cur.pos) {
		return false
	}
	if s.cur.inLinkDestination(s.cur.pos) || s.cur.inCodeSpan(s.cur.pos) {
		return false
	}

	start := s.cur.pos
	if s.cur.consume("$$") {
		if end := s.cur.indexUnescaped("$$", s.cur.pos); end >= 0 {
			s.cur.pos = end + 2
			return true
		}
		return false
	}

	// Inline math: opening $ not glued to a word, content not padded with
	// spaces, closing $ not glued to a word.
	prev := s.cur.peekAt(start - 1)
	if isWordByte(prev) || prev == '$' {
		return false
	}
	s.cur.read()
	first := s.cur.peek()
	if first == eof || isSpaceByte(first) || first == '$' {
		return false
	}

	for ch := s.cur.read(); ch != eof && ch != '\n'; ch = s.cur.read() {
		if ch != '$' || s.cur.escaped(s.cur.pos-1) {
			continue
		}
		closing := s.cur.pos - 1
		if isSpaceByte(s.cur.peekAt(closing-1)) || isWordByte(s.cur.peek()) {
			return false
		}
		return true
	}
	return false
}

// diagramInclude matches ![caption](path.puml) on a single line, outside
// code spans.
func (s *scanner) diagramInclude() bool {
	start := s.cur.pos
	if s.cur.escaped(start) || !s.cur.consume("![") || s.cur.inCodeSpan(start) {
		return false
	}

	text := s.cur.text
	lineEnd := s.cur.lineEnd(s.cur.pos)

	closeBracket := -1
	for idx := s.cur.pos; idx < lineEnd; idx++ {
		if text[idx] == ']' && !s.cur.escaped(idx) {
			closeBracket = idx
			break
		}
	}
	if closeBracket < 0 || closeBracket+1 >= lineEnd || text[closeBracket+1] != '(' {
		return false
	}

	destStart := closeBracket + 2
	closeParen := strings.IndexByte(text[destStart:lineEnd], ')')
	if closeParen < 0 {
		return false
	}
	closeParen += destStart

	fields := strings.Fields(text[destStart:closeParen])
	if len(fields) == 0 {
		return false
	}
	path := strings.Trim(fields[0], "<>")
	if !IsIncludePath(path) {
		return false
	}

	s.cur.pos = closeParen + 1
	return true
}

// IsIncludePath reports whether an image target names a diagram source file.
func IsIncludePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range IncludeExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// htmlBlock matches a line starting with an opening or closing tag and runs
// to the first blank line.
func (s *scanner) htmlBlock() bool {
	if !s.cur.atLineStart() {
		return false
	}
	for range maxBlockIndent {
		if s.cur.peek() != ' ' {
			break
		}
		s.cur.read()
	}

	if s.cur.read() != '<' {
		return false
	}
	if s.cur.peek() == '/' {
		s.cur.read()
	}
	nameStart := s.cur.pos
	if !isLetter(s.cur.read()) {
		return false
	}
	for ch := s.cur.peek(); isLetter(ch) || (ch >= '0' && ch <= '9') || ch == '-'; ch = s.cur.peek() {
		s.cur.read()
	}
	switch s.cur.peek() {
	case ' ', '\t', '>', '/', '\r', '\n', eof:
	default:
		return false
	}

	text := s.cur.text
	name := strings.ToLower(text[nameStart:s.cur.pos])
	if !htmlBlockTags[name] {
		// Other tags only open a block when they stand alone on the line.
		lineEnd := s.cur.lineEnd(s.cur.pos)
		closeTag := strings.IndexByte(text[s.cur.pos:lineEnd], '>')
		if closeTag < 0 || !isBlank(text[s.cur.pos+closeTag+1:lineEnd]) {
			return false
		}
	}

	end := s.cur.lineEnd(s.cur.pos)
	for line := s.cur.nextLine(s.cur.pos); line < len(text); line = s.cur.nextLine(line) {
		lineEnd := s.cur.lineEnd(line)
		if isBlank(text[line:lineEnd]) {
			break
		}
		end = lineEnd
	}
	s.cur.pos = end
	return true
}

// openFence reads a code fence opening line at the cursor.
func (s *scanner) openFence() (byte, int, string, bool) {
	if !s.cur.atLineStart() {
		return 0, 0, "", false
	}

	text := s.cur.text
	idx := s.cur.pos
	for idx < len(text) && idx-s.cur.pos < maxBlockIndent && text[idx] == ' ' {
		idx++
	}
	if idx >= len(text) || (text[idx] != '`' && text[idx] != '~') {
		return 0, 0, "", false
	}

	char := text[idx]
	run := 0
	for idx+run < len(text) && text[idx+run] == char {
		run++
	}
	if run < 3 {
		return 0, 0, "", false
	}

	info := strings.TrimSpace(text[idx+run : s.cur.lineEnd(idx)])
	if char == '`' && strings.ContainsRune(info, '`') {
		return 0, 0, "", false
	}
	return char, run, info, true
}

// closeFence advances past the closing fence, or to the end of the buffer.
func (s *scanner) closeFence(char byte, run int) {
	text := s.cur.text
	for line := s.cur.nextLine(s.cur.pos); line < len(text); line = s.cur.nextLine(line) {
		lineEnd := s.cur.lineEnd(line)
		if isClosingFence(text[line:lineEnd], char, run) {
			s.cur.pos = lineEnd
			return
		}
	}
	s.cur.pos = len(text)
}

func isClosingFence(line string, char byte, run int) bool {
	line = strings.TrimRight(line, " \t\r")
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > maxBlockIndent {
		return false
	}
	count := 0
	for count < len(trimmed) && trimmed[count] == char {
		count++
	}
	return count >= run && count == len(trimmed)
}

// diagramFence matches a fenced block whose info string names a diagram language.
func (s *scanner) diagramFence() (Kind, bool) {
	char, run, info, ok := s.openFence()
	if !ok {
		return Default, false
	}

	var kind Kind
	switch langdetect.DiagramFamily(info) {
	case langdetect.DiagramDot:
		kind = DotBlock
	case langdetect.DiagramUML:
		kind = UMLBlock
	default:
		return Default, false
	}

	s.closeFence(char, run)
	return kind, true
}

// fence matches any fenced code block.
func (s *scanner) fence() bool {
	char, run, _, ok := s.openFence()
	if !ok {
		return false
	}
	s.closeFence(char, run)
	return true
}

// diagramDelimited matches @start<keyword> ... @end<keyword> at line start.
func (s *scanner) diagramDelimited() bool {
	if !s.cur.atLineStart() {
		return false
	}

	text := s.cur.text
	lineEnd := s.cur.lineEnd(s.cur.pos)
	keyword, ok := diagramKeyword(text[s.cur.pos:lineEnd], "@start")
	if !ok {
		return false
	}

	for line := s.cur.nextLine(s.cur.pos); line < len(text); line = s.cur.nextLine(line) {
		end := s.cur.lineEnd(line)
		if closing, found := diagramKeyword(text[line:end], "@end"); found && closing == keyword {
			s.cur.pos = end
			return true
		}
	}
	return false
}

func diagramKeyword(line, prefix string) (string, bool) {
	line = strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	rest := line[len(prefix):]
	n := 0
	for n < len(rest) && isLetter(int(rest[n])) {
		n++
	}
	keyword := rest[:n]
	return keyword, diagramKeywords[keyword]
}

// indentedCode matches lines indented by at least four columns. Blank lines
// inside the block are kept, trailing blank lines are not.
func (s *scanner) indentedCode() bool {
	if !s.cur.atLineStart() {
		return false
	}

	text := s.cur.text
	end := s.cur.lineEnd(s.cur.pos)
	first := text[s.cur.pos:end]
	if isBlank(first) {
		return false
	}
	cols, width := indentation(first, s.tabWidth)
	if cols < 4 || isListMarker(first[width:]) {
		return false
	}

	for line := s.cur.nextLine(s.cur.pos); line < len(text); line = s.cur.nextLine(line) {
		lineEnd := s.cur.lineEnd(line)
		content := text[line:lineEnd]
		if isBlank(content) {
			continue
		}
		if cols, _ := indentation(content, s.tabWidth); cols < 4 {
			break
		}
		end = lineEnd
	}

	s.cur.pos = end
	return true
}
