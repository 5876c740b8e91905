// Package cli provides the Cobra command structure for mdlinks.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlinks/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root mdlinks command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "mdlinks",
		Short: "Check links and references in Markdown",
		Long: `mdlinks checks the links, anchors and references of Markdown documents.

It splits each document into code, math, HTML, front matter and prose
regions, then validates every link target it finds in prose: local files,
heading anchors in this and other documents, Go package members, URLs and
reference labels. Run it once with 'check' or keep it running with 'watch'.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExitCode(ExitInvalidUsage, err)
	})

	rootCmd.AddCommand(newCheckCommand(info))
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newRegionsCommand())
	rootCmd.AddCommand(newValidatorsCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	NewHelpFormatter(color, os.Stdout).ApplyToCommand(rootCmd)

	return rootCmd
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return withExitCode(ExitInvalidUsage, check(cmd, args))
	}
}
