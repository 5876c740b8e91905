package validators

import (
	"go/scanner"
	"go/token"
	"strings"

	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/partition"
)

// TaskMarkerValidator reports task tags such as TODO in Go comments.
type TaskMarkerValidator struct {
	lint.BaseValidator
}

// NewTaskMarkerValidator creates the task-marker validator.
func NewTaskMarkerValidator() *TaskMarkerValidator {
	return &TaskMarkerValidator{
		BaseValidator: lint.NewBaseValidator(
			"task-marker",
			"Task tags in Go comments are reported",
			config.SeverityInfo,
			goFiles,
			proseRegions,
		),
	}
}

// Validate scans the comments of the region. Tags may be configured per
// validator with the "tags" option, falling back to task_tags.
func (v *TaskMarkerValidator) Validate(pass *lint.Pass, region partition.Region) error {
	tags := config.DefaultTaskTags()
	if pass.Config != nil && len(pass.Config.TaskTags) > 0 {
		tags = pass.Config.TaskTags
	}
	tags = pass.OptionStringSlice("tags", tags)

	src := []byte(region.Text(pass.Text()))

	fset := token.NewFileSet()
	file := fset.AddFile(pass.File.Path, fset.Base(), len(src))

	var s scanner.Scanner
	// The scanner recovers from syntax errors, so they are dropped.
	s.Init(file, src, func(token.Position, string) {}, scanner.ScanComments)

	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok != token.COMMENT {
			continue
		}

		base := region.Offset + file.Offset(pos)
		for _, m := range findTags(lit, tags) {
			pass.Report(lint.NewDiagnostic(lint.KindTaskMarker, m.text).
				At(lint.Span{Start: base + m.start, End: base + m.start + len(m.tag)}))
		}
	}
	return nil
}

type tagMatch struct {
	tag   string
	text  string
	start int
}

// findTags locates whole-word tags in a comment and returns each with the
// rest of its line.
func findTags(comment string, tags []string) []tagMatch {
	var out []tagMatch
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		from := 0
		for {
			idx := strings.Index(comment[from:], tag)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(tag)
			from = end

			if start > 0 && isWordChar(comment[start-1]) {
				continue
			}
			if end < len(comment) && isWordChar(comment[end]) {
				continue
			}

			lineEnd := strings.IndexByte(comment[start:], '\n')
			if lineEnd < 0 {
				lineEnd = len(comment) - start
			}
			text := strings.TrimSpace(comment[start : start+lineEnd])
			text = strings.TrimSpace(strings.TrimSuffix(text, "*/"))

			out = append(out, tagMatch{tag: tag, text: text, start: start})
		}
	}
	return out
}

func isWordChar(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}
