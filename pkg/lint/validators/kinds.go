package validators

import (
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

//nolint:gochecknoglobals // applicability tables
var (
	markdownFiles = []lint.FileKind{lint.FileMarkdown}
	goFiles       = []lint.FileKind{lint.FileGoSource}

	proseRegions = []partition.Kind{partition.Default}
	linkRegions  = []partition.Kind{partition.Default, partition.DiagramInclude}
)
