package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/internal/metrics"
	"github.com/yaklabco/mdlinks/internal/ui/pretty"
	"github.com/yaklabco/mdlinks/internal/watch"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/fsutil"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/runner"
	"github.com/yaklabco/mdlinks/pkg/schedule"
	"github.com/yaklabco/mdlinks/pkg/textbuf"
)

const (
	defaultBannerWidth = 72
	shutdownTimeout    = 5 * time.Second
)

type watchFlags struct {
	ignore       []string
	debounce     time.Duration
	metricsAddr  string
	offline      bool
	markdownOnly bool
	noInitial    bool
	noContext    bool
}

func newWatchCommand() *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-check Markdown files as they change",
		Long: `Watch directories and re-check every file that changes.

Changes are collected until the debounce period passes without new edits,
then the queued files are checked in the background. A newer edit of a file
being checked interrupts that check and queues the file again. Each checked
file prints its complete, current set of diagnostics.

Examples:
  mdlinks watch                          # Watch current directory
  mdlinks watch docs/ --debounce 500ms   # Shorter quiet period
  mdlinks watch --metrics-addr :9464     # Serve Prometheus metrics`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", 0, "quiet period before checking (default 1s)")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&flags.offline, "offline", false, "skip every network check")
	cmd.Flags().BoolVar(&flags.markdownOnly, "markdown-only", false, "skip diagram and Go source files")
	cmd.Flags().BoolVar(&flags.noInitial, "no-initial", false, "do not check existing files at start-up")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, flags *watchFlags) error {
	logger := logging.Default()
	ctx := commandContext(cmd)

	cfg, workDir, err := loadConfig(cmd, &config.Config{
		Ignore:    flags.ignore,
		Offline:   flags.offline,
		NoContext: flags.noContext,
		Watch: config.WatchConfig{
			Debounce:    flags.debounce,
			MetricsAddr: flags.metricsAddr,
		},
	})
	if err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Watch.MetricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		stop, err := serveMetrics(ctx, cfg.Watch.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer stop()
	}

	out := cmd.OutOrStdout()
	printer := &watchPrinter{
		out:         out,
		styles:      pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out)),
		workDir:     workDir,
		showContext: !cfg.NoContext,
	}

	engine := lint.NewEngine(lint.DefaultRegistry, cfg, lint.NewOSWorkspace(workDir))
	sched := schedule.New(engine, schedule.Options{
		Debounce: cfg.Watch.Debounce,
		Recorder: recorder,
		Logger:   logger,
		OnValidated: func(path string, diags []lint.Diagnostic) {
			source, _ := engine.Workspace.ReadFile(ctx, path)
			printer.print(path, diags, source)
		},
	})
	defer sched.Close()

	watcher, err := watch.New(sched, watch.Options{
		Root:         workDir,
		Extensions:   cfg.Extensions,
		Ignore:       cfg.Ignore,
		MarkdownOnly: flags.markdownOnly,
		Logger:       logger,
	})
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer watcher.Close()

	paths := args
	if len(paths) == 0 {
		paths = []string{workDir}
	}
	if err := watcher.Add(paths...); err != nil {
		return withExitCode(ExitInvalidUsage, err)
	}

	printer.banner(len(watcher.WatchList()), sched.Debounce())

	if !flags.noInitial {
		opts := runner.OptionsFromConfig(cfg, args)
		opts.WorkingDir = workDir
		opts.MarkdownOnly = flags.markdownOnly
		if err := scheduleExisting(ctx, sched, opts); err != nil {
			return err
		}
	}

	if err := watcher.Run(ctx); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	logger.Debug("watch stopped", logging.FieldQueue, sched.Pending())
	return nil
}

// scheduleExisting queues every discovered file for a first check.
func scheduleExisting(ctx context.Context, sched *schedule.Scheduler, opts runner.Options) error {
	files, err := runner.Discover(ctx, opts)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	for _, path := range files {
		content, _, err := fsutil.ReadFile(ctx, path)
		if err != nil {
			logging.Default().Warn("skipping unreadable file",
				logging.FieldPath, path, logging.FieldError, err)
			continue
		}
		if err := sched.Schedule(path, content); err != nil {
			return fmt.Errorf("schedule %s: %w", path, err)
		}
	}
	return nil
}

// serveMetrics starts the metrics endpoint and returns a function that shuts it down.
func serveMetrics(ctx context.Context, addr string, reg *prom.Registry) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	logger := logging.FromContext(ctx)
	logger.Info("serving metrics", logging.FieldAddr, listener.Addr().String())

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", logging.FieldError, err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}, nil
}

// watchPrinter writes fresh diagnostic sets. Calls come from the scheduler
// worker, so output is serialized.
type watchPrinter struct {
	mu          sync.Mutex
	out         io.Writer
	styles      *pretty.Styles
	workDir     string
	showContext bool
}

func (p *watchPrinter) banner(dirs int, debounce time.Duration) {
	width := defaultBannerWidth
	if f, ok := p.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.styles.SummaryTitle.Render(
		fmt.Sprintf("Watching %d %s (debounce %s). Press Ctrl+C to stop.",
			dirs, pluralWord(dirs, "directory", "directories"), debounce)))
	fmt.Fprintln(p.out, p.styles.Dim.Render(strings.Repeat("─", width)))
}

func (p *watchPrinter) print(path string, diags []lint.Diagnostic, source []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	display := relativeTo(path, p.workDir)
	if len(diags) == 0 {
		fmt.Fprintf(p.out, "%s %s\n", p.styles.FilePath.Render(display), p.styles.Success.Render("ok"))
		return
	}

	var buf *textbuf.Buffer
	if p.showContext && source != nil {
		buf = textbuf.FromBytes(source)
	}

	fmt.Fprintln(p.out, p.styles.FormatFileHeader(display, len(diags)))
	for _, diag := range diags {
		var sourceLine string
		if buf != nil && diag.HasPosition() {
			sourceLine = buf.Line(diag.Line)
		}
		diag.File = display
		fmt.Fprint(p.out, p.styles.FormatDiagnostic(&diag, p.showContext, sourceLine))
	}
	fmt.Fprintln(p.out)
}

func pluralWord(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
