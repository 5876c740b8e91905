package validators

import (
	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/extract"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
	"github.com/yaklabco/mdlinks/pkg/target"
)

// occurrence is one link target as written: an inline link or image, a
// definition destination, or a diagram include.
type occurrence struct {
	match   extract.Match
	include bool
}

func (o occurrence) span() lint.Span {
	return lint.Span{Start: o.match.Start, End: o.match.End}
}

// occurrences lists the targets written in region, in document order.
// Loose definitions carry no target.
func occurrences(pass *lint.Pass, region partition.Region) []occurrence {
	res := pass.Extract(region)
	include := region.Kind == partition.DiagramInclude

	out := make([]occurrence, 0, len(res.Links)+len(res.Definitions))
	for _, link := range res.Links {
		out = append(out, occurrence{match: link.Target, include: include})
	}
	for _, def := range res.Definitions {
		if def.Loose {
			continue
		}
		out = append(out, occurrence{match: def.Target})
	}
	return out
}

// localFragment resolves o and returns the target and its file path when it
// is a local target with a non-empty fragment.
func localFragment(pass *lint.Pass, o occurrence) (target.Target, string, bool) {
	t := pass.Target(o.match.Text)
	if t.IsBlank() || !t.IsLocal() || !t.HasFragment || t.Fragment == "" {
		return t, "", false
	}
	return t, pass.ResolvePath(t), true
}

// existingFile reports whether path is a readable regular file in the workspace.
// Missing files are left to the file-target validator.
func existingFile(pass *lint.Pass, path string) bool {
	probe, err := pass.Workspace.Probe(path)
	if err != nil {
		pass.Logger.Debug("probe failed", logging.FieldPath, path, logging.FieldError, err)
		return false
	}
	return probe.Exists && probe.Readable && !probe.IsDir
}
