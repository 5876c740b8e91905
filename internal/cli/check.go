package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/reporter"
	"github.com/yaklabco/mdlinks/pkg/runner"
)

type checkFlags struct {
	format         string
	ignore         []string
	enable         []string
	disable        []string
	strict         bool
	offline        bool
	noContext      bool
	compact        bool
	markdownOnly   bool
	followSymlinks bool
	summary        bool
	jobs           int
}

func newCheckCommand(info BuildInfo) *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check links in Markdown files",
		Long:  checkLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, flags, info)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, sarif")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.enable, "enable", nil, "validators to enable")
	cmd.Flags().StringSliceVar(&flags.disable, "disable", nil, "validators to disable")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on warnings as well as errors")
	cmd.Flags().BoolVar(&flags.offline, "offline", false, "skip every network check")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "minify JSON and SARIF output")
	cmd.Flags().BoolVar(&flags.markdownOnly, "markdown-only", false, "skip diagram and Go source files")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "print a detailed summary block")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")

	return cmd
}

const checkLongDescription = `Check every link, anchor and reference in Markdown files.

By default, checks all Markdown files in the current directory and its
subdirectories, plus diagram sources and Go files whose comments carry
task tags. Specify paths to check specific files or directories.

Examples:
  mdlinks check                      # Check current directory
  mdlinks check docs/                # Check docs directory
  mdlinks check README.md            # Check a single file
  mdlinks check --offline            # Skip URL checks
  mdlinks check --format sarif       # Output SARIF for code scanning
  mdlinks check --strict             # Warnings fail the run`

// cliConfig holds only the values set on the command line.
func (f *checkFlags) cliConfig(cmd *cobra.Command) *config.Config {
	cfg := &config.Config{
		Ignore:  f.ignore,
		Enable:  f.enable,
		Disable: f.disable,
		Strict:  f.strict,
		Offline: f.offline,
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(f.format)
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	cfg.NoContext = f.noContext
	return cfg
}

func runCheck(cmd *cobra.Command, args []string, flags *checkFlags, info BuildInfo) error {
	logger := logging.Default()
	ctx := commandContext(cmd)

	if _, err := reporter.ParseFormat(flags.format); err != nil {
		return withExitCode(ExitInvalidUsage, fmt.Errorf("invalid format: %w", err))
	}

	cfg, workDir, err := loadConfig(cmd, flags.cliConfig(cmd))
	if err != nil {
		return err
	}

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("invalid format: %w", err))
	}

	logger.Debug("configuration loaded",
		logging.FieldJobs, cfg.Jobs,
		logging.FieldOffline, !cfg.NetworkEnabled(),
	)

	engine := lint.NewEngine(lint.DefaultRegistry, cfg, lint.NewOSWorkspace(workDir))

	runOpts := runner.OptionsFromConfig(cfg, args)
	runOpts.WorkingDir = workDir
	runOpts.MarkdownOnly = flags.markdownOnly
	runOpts.FollowSymlinks = flags.followSymlinks
	runOpts.Progress = func(outcome runner.FileOutcome) {
		logger.Debug("checked",
			logging.FieldPath, outcome.Path,
			logging.FieldDiagnostics, len(outcome.Diagnostics()))
	}

	logger.Debug("starting check",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
	)

	result, err := runner.New(engine).Run(ctx, runOpts)
	if err != nil {
		if errors.Is(err, runner.ErrPathNotFound) {
			return withExitCode(ExitInvalidUsage, err)
		}
		return fmt.Errorf("check run failed: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:          cmd.OutOrStdout(),
		ErrorWriter:     cmd.ErrOrStderr(),
		Format:          format,
		Color:           colorMode(cmd),
		ShowContext:     !cfg.NoContext,
		ShowSummary:     true,
		DetailedSummary: flags.summary,
		GroupByFile:     true,
		Compact:         flags.compact,
		WorkingDir:      workDir,
		Registry:        lint.DefaultRegistry,
		ToolVersion:     info.Version,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if code := ExitCodeFromResult(result, cfg.Strict); code != ExitSuccess {
		return withExitCode(code, ErrIssuesFound)
	}
	return nil
}
