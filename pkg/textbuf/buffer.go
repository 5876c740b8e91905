// Package textbuf provides an immutable text buffer with line/offset conversion.
package textbuf

import "sort"

// LineInfo describes the byte layout of a single line.
type LineInfo struct {
	// StartOffset is the byte offset of the first character of the line.
	StartOffset int

	// NewlineStart is the byte offset of the line terminator (\n or \r\n),
	// or the end of the content for the final line.
	NewlineStart int

	// EndOffset is the byte offset just past the line terminator.
	EndOffset int
}

// Buffer is a read-only view of a document's text.
// It is safe for concurrent use because it never changes after construction.
type Buffer struct {
	text  string
	lines []LineInfo
}

// New builds a Buffer for text.
func New(text string) *Buffer {
	return &Buffer{
		text:  text,
		lines: BuildLines(text),
	}
}

// FromBytes builds a Buffer from raw file content.
func FromBytes(content []byte) *Buffer {
	return New(string(content))
}

// BuildLines computes line metadata for text.
// Both LF and CRLF terminators are recognized. Empty text has a single empty line.
func BuildLines(text string) []LineInfo {
	lines := make([]LineInfo, 0, 16)
	lineStart := 0

	for idx := range len(text) {
		if text[idx] != '\n' {
			continue
		}

		newlineStart := idx
		if idx > lineStart && text[idx-1] == '\r' {
			newlineStart = idx - 1
		}

		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(text),
		EndOffset:    len(text),
	})

	return lines
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	return b.text
}

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Slice returns text[start:end] with the bounds clamped to the buffer.
func (b *Buffer) Slice(start, end int) string {
	start = max(0, min(start, len(b.text)))
	end = max(start, min(end, len(b.text)))
	return b.text[start:end]
}

// LineAt converts a byte offset to 1-based line and column numbers.
// Column counts bytes. Offsets past the end map to the end of the last line.
// Returns (0, 0) for negative offsets.
func (b *Buffer) LineAt(offset int) (int, int) {
	if offset < 0 {
		return 0, 0
	}

	if offset >= len(b.text) {
		last := b.lines[len(b.lines)-1]
		return len(b.lines), offset - last.StartOffset + 1
	}

	lineIdx := sort.Search(len(b.lines), func(i int) bool {
		return b.lines[i].EndOffset > offset
	})
	if lineIdx >= len(b.lines) {
		lineIdx = len(b.lines) - 1
	}

	return lineIdx + 1, offset - b.lines[lineIdx].StartOffset + 1
}

// LineOf returns the 1-based line containing offset.
func (b *Buffer) LineOf(offset int) int {
	line, _ := b.LineAt(offset)
	return line
}

// LineInfo returns the layout of a 1-based line.
func (b *Buffer) LineInfo(line int) (LineInfo, bool) {
	if line < 1 || line > len(b.lines) {
		return LineInfo{}, false
	}
	return b.lines[line-1], true
}

// Offset converts 1-based line and column numbers to a byte offset.
func (b *Buffer) Offset(line, col int) (int, bool) {
	info, ok := b.LineInfo(line)
	if !ok || col < 1 {
		return 0, false
	}

	offset := info.StartOffset + col - 1
	if offset > info.EndOffset {
		return 0, false
	}

	return offset, true
}

// Line returns the content of a 1-based line without its terminator.
func (b *Buffer) Line(line int) string {
	info, ok := b.LineInfo(line)
	if !ok {
		return ""
	}
	return b.text[info.StartOffset:info.NewlineStart]
}
