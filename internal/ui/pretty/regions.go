package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdlinks/pkg/partition"
	"github.com/yaklabco/mdlinks/pkg/textbuf"
)

// sampleWidth caps the preview of a region's text.
const sampleWidth = 48

// FormatRegion formats one region of buf as
//
//	kind  [start,end)  lines a-b  "preview"
func (s *Styles) FormatRegion(buf *textbuf.Buffer, region partition.Region) string {
	first := buf.LineOf(region.Offset)
	last := buf.LineOf(max(region.End()-1, region.Offset))

	lines := fmt.Sprintf("line %d", first)
	if last != first {
		lines = fmt.Sprintf("lines %d-%d", first, last)
	}

	return fmt.Sprintf("  %s %s  %s  %s\n",
		s.RegionKind.Render(fmt.Sprintf("%-15s", region.Kind.String())),
		s.RegionRange.Render(fmt.Sprintf("[%d,%d)", region.Offset, region.End())),
		s.Dim.Render(lines),
		s.RegionSample.Render(Preview(buf.Slice(region.Offset, region.End()))),
	)
}

// Preview quotes text on one line, shortened to a fixed width.
func Preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > sampleWidth {
		text = string(r[:sampleWidth-1]) + "…"
	}
	return fmt.Sprintf("%q", text)
}
