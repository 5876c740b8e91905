package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlinks/internal/ui/pretty"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/fsutil"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/textbuf"
)

const formatJSON = "json"

// regionInfo is one region in JSON output.
type regionInfo struct {
	Kind      string `json:"kind"`
	Offset    int    `json:"offset"`
	Length    int    `json:"length"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

func newRegionsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "regions <file>",
		Short: "Show how a file is split into regions",
		Long: `Print the regions a file is partitioned into: prose, code blocks, code
spans, math, HTML, comments and front matter. Links are only checked in
prose regions, so this shows why a link was or was not checked.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions(cmd, args[0], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")

	return cmd
}

func runRegions(cmd *cobra.Command, path, format string) error {
	if format != "text" && format != formatJSON {
		return withExitCode(ExitInvalidUsage, fmt.Errorf("invalid format %q: must be text or json", format))
	}

	cfg, workDir, err := loadConfig(cmd, &config.Config{})
	if err != nil {
		return err
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	content, _, err := fsutil.ReadFile(commandContext(cmd), path)
	if err != nil {
		return withExitCode(ExitInvalidUsage, err)
	}

	engine := lint.NewEngine(lint.DefaultRegistry, cfg, lint.NewOSWorkspace(workDir))
	buf := textbuf.FromBytes(content)
	regions := engine.Partition(engine.NewFile(path), buf.Text())

	out := cmd.OutOrStdout()
	if format == formatJSON {
		infos := make([]regionInfo, 0, len(regions))
		for _, region := range regions {
			infos = append(infos, regionInfo{
				Kind:      region.Kind.String(),
				Offset:    region.Offset,
				Length:    region.Length,
				StartLine: buf.LineOf(region.Offset),
				EndLine:   buf.LineOf(max(region.End()-1, region.Offset)),
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return fmt.Errorf("encoding regions: %w", err)
		}
		return nil
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	fmt.Fprintln(out, styles.FormatFileHeader(relativeTo(path, workDir), 0)+
		styles.Dim.Render(fmt.Sprintf(" (%d regions)", len(regions))))
	for _, region := range regions {
		fmt.Fprint(out, styles.FormatRegion(buf, region))
	}
	return nil
}

// relativeTo shortens path for display when it lies under dir.
func relativeTo(path, dir string) string {
	if dir == "" {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
