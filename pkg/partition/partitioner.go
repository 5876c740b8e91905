package partition

import (
	"iter"
	"slices"

	"github.com/yaklabco/mdlinks/pkg/langdetect"
)

// Defaults for Options.
const (
	DefaultTabWidth = 4
	DefaultEscape   = '\\'
)

// Options configures a Partitioner.
type Options struct {
	// TabWidth is the tab stop used when measuring indentation.
	TabWidth int

	// Escape is the character that disables the delimiter following it.
	Escape byte
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{
		TabWidth: DefaultTabWidth,
		Escape:   DefaultEscape,
	}
}

// Partitioner splits text into regions. It holds no per-buffer state and
// may be shared between goroutines.
type Partitioner struct {
	opts Options
}

// New creates a Partitioner. Zero option fields take their defaults.
func New(opts Options) *Partitioner {
	if opts.TabWidth <= 0 {
		opts.TabWidth = DefaultTabWidth
	}
	if opts.Escape == 0 {
		opts.Escape = DefaultEscape
	}
	return &Partitioner{opts: opts}
}

// Options returns the effective options.
func (p *Partitioner) Options() Options {
	return p.opts
}

// Regions lazily yields the regions of text in offset order. The regions are
// contiguous and cover the whole text; runs no rule claims are merged into
// single Default regions. The sequence can be iterated any number of times.
func (p *Partitioner) Regions(text string) iter.Seq[Region] {
	return func(yield func(Region) bool) {
		scan := scanner{
			cur:      cursor{text: text, escape: p.opts.Escape},
			tabWidth: p.opts.TabWidth,
		}

		gapStart := 0
		for scan.cur.pos < len(text) {
			start := scan.cur.pos
			kind, ok := scan.next()
			if !ok {
				scan.cur.pos++
				continue
			}

			if start > gapStart {
				if !yield(Region{Kind: Default, Offset: gapStart, Length: start - gapStart}) {
					return
				}
			}
			if !yield(Region{Kind: kind, Offset: start, Length: scan.cur.pos - start}) {
				return
			}
			gapStart = scan.cur.pos
		}

		if gapStart < len(text) {
			yield(Region{Kind: Default, Offset: gapStart, Length: len(text) - gapStart})
		}
	}
}

// Partition returns all regions of text.
func (p *Partitioner) Partition(text string) []Region {
	return slices.Collect(p.Regions(text))
}

// Whole returns a single region of the given kind spanning text.
func Whole(kind Kind, text string) []Region {
	if text == "" {
		return nil
	}
	return []Region{{Kind: kind, Offset: 0, Length: len(text)}}
}

// DiagramFileKind returns the region kind for a stand-alone diagram source
// file, based on its extension.
func DiagramFileKind(path string) (Kind, bool) {
	switch langdetect.DiagramFile(path) {
	case langdetect.DiagramDot:
		return DotBlock, true
	case langdetect.DiagramUML:
		return UMLBlock, true
	default:
		return Default, false
	}
}

// At returns the region containing offset, using binary search over regions
// sorted by offset.
func At(regions []Region, offset int) (Region, bool) {
	idx, found := slices.BinarySearchFunc(regions, offset, func(r Region, off int) int {
		switch {
		case r.End() <= off:
			return -1
		case r.Offset > off:
			return 1
		default:
			return 0
		}
	})
	if !found {
		return Region{}, false
	}
	return regions[idx], true
}
