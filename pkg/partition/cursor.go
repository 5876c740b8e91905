package partition

import "strings"

const eof = -1

// cursor walks a buffer byte by byte with unread and mark/reset support,
// so a rule that fails part way leaves the scan position where it found it.
type cursor struct {
	text   string
	pos    int
	escape byte
}

func (c *cursor) read() int {
	if c.pos >= len(c.text) {
		return eof
	}
	ch := c.text[c.pos]
	c.pos++
	return int(ch)
}

func (c *cursor) unread() {
	if c.pos > 0 {
		c.pos--
	}
}

func (c *cursor) peek() int {
	return c.peekAt(c.pos)
}

func (c *cursor) peekAt(idx int) int {
	if idx < 0 || idx >= len(c.text) {
		return eof
	}
	return int(c.text[idx])
}

func (c *cursor) mark() int {
	return c.pos
}

func (c *cursor) reset(mark int) {
	c.pos = mark
}

// consume advances past s if the text at the cursor starts with it.
func (c *cursor) consume(s string) bool {
	if !strings.HasPrefix(c.text[c.pos:], s) {
		return false
	}
	c.pos += len(s)
	return true
}

func (c *cursor) atLineStart() bool {
	return c.pos == 0 || c.text[c.pos-1] == '\n'
}

// escaped reports whether the byte at idx is preceded by an odd run of escape characters.
func (c *cursor) escaped(idx int) bool {
	return isEscaped(c.text, idx, c.escape)
}

// lineEnd returns the index of the newline terminating the line that contains idx,
// or len(text) for the last line.
func (c *cursor) lineEnd(idx int) int {
	if nl := strings.IndexByte(c.text[idx:], '\n'); nl >= 0 {
		return idx + nl
	}
	return len(c.text)
}

// nextLine returns the start of the line after the one containing idx.
func (c *cursor) nextLine(idx int) int {
	return min(c.lineEnd(idx)+1, len(c.text))
}

// indexUnescaped finds the first occurrence of s at or after from whose first
// byte is not escaped.
func (c *cursor) indexUnescaped(s string, from int) int {
	for from <= len(c.text) {
		idx := strings.Index(c.text[from:], s)
		if idx < 0 {
			return -1
		}
		abs := from + idx
		if !c.escaped(abs) {
			return abs
		}
		from = abs + 1
	}
	return -1
}

func isEscaped(text string, idx int, escape byte) bool {
	run := 0
	for i := idx - 1; i >= 0 && text[i] == escape; i-- {
		run++
	}
	return run%2 == 1
}

func isBlank(line string) bool {
	return strings.TrimLeft(line, " \t\r") == ""
}

func isWordByte(ch int) bool {
	return ch == '_' ||
		(ch >= '0' && ch <= '9') ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z')
}

func isLetter(ch int) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isSpaceByte(ch int) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

// indentation returns the indent width in columns, expanding tabs to the next
// multiple of tabWidth, and the byte length of the leading whitespace.
func indentation(line string, tabWidth int) (int, int) {
	cols := 0
	for idx := range len(line) {
		switch line[idx] {
		case ' ':
			cols++
		case '\t':
			cols += tabWidth - cols%tabWidth
		default:
			return cols, idx
		}
	}
	return cols, len(line)
}

// isListMarker reports whether s begins with an unordered or ordered list marker.
func isListMarker(s string) bool {
	if s == "" {
		return false
	}

	switch s[0] {
	case '-', '*', '+':
		return len(s) == 1 || s[1] == ' ' || s[1] == '\t'
	}

	digits := 0
	for digits < len(s) && digits < 10 && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits == 10 {
		return false
	}

	idx := digits
	if idx < len(s) && (s[idx] == '.' || s[idx] == ')') {
		idx++
	}
	return idx == len(s) || s[idx] == ' ' || s[idx] == '\t'
}

// lineStart returns the start of the line containing idx.
func (c *cursor) lineStart(idx int) int {
	return strings.LastIndexByte(c.text[:idx], '\n') + 1
}

// inCodeSpan reports whether idx falls inside an inline code span that opens
// earlier on the same line: a backtick run closed by the next run of the same
// length before the line ends.
func (c *cursor) inCodeSpan(idx int) bool {
	text := c.text
	end := c.lineEnd(idx)

	for pos := c.lineStart(idx); pos < idx; {
		if text[pos] != '`' || c.escaped(pos) {
			pos++
			continue
		}
		run := backtickRun(text, pos, end)
		closing := -1
		for j := pos + run; j < end; {
			if text[j] != '`' {
				j++
				continue
			}
			n := backtickRun(text, j, end)
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
		if idx < closing+run {
			return true
		}
		pos = closing + run
	}
	return false
}

// inLinkDestination reports whether idx falls inside the "(...)" destination
// of an inline link opened earlier on the same line.
func (c *cursor) inLinkDestination(idx int) bool {
	text := c.text
	depth := 0
	for pos := c.lineStart(idx); pos < idx; pos++ {
		switch {
		case depth == 0 && text[pos] == ']' && pos+1 < idx && text[pos+1] == '(' && !c.escaped(pos):
			depth = 1
			pos++
		case depth > 0 && text[pos] == '(' && !c.escaped(pos):
			depth++
		case depth > 0 && text[pos] == ')' && !c.escaped(pos):
			depth--
		}
	}
	return depth > 0
}

func backtickRun(text string, pos, end int) int {
	n := 0
	for pos+n < end && text[pos+n] == '`' {
		n++
	}
	return n
}
