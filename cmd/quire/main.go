// Package main is the entry point for quire, a command-line front end to the
// manuscript layout core. It opens a document, lays out one viewport of it
// and prints the visible lines, search matches and analysis reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/quire/internal/app"
	"github.com/dshills/quire/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const analysisTimeout = 10 * time.Second

type options struct {
	configPath string
	logLevel   string
	width      float64
	height     float64
	offset     float64
	find       string
	analyze    bool
	export     bool
	dumpConfig bool
	watch      bool
	version    bool
	file       string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}
	if opts.version {
		fmt.Fprintf(stdout, "quire %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.dumpConfig {
		if err := config.Encode(stdout, cfg); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.Log.Level),
		Output: stderr,
		Prefix: cfg.Log.Prefix,
	})
	doc, err := app.NewDocument(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer doc.Close()

	if opts.file != "" {
		if err := doc.Open(opts.file); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	doc.Viewport().ScrollTo(opts.offset)

	if opts.export {
		out, err := doc.Export()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(out))
		return 0
	}

	if opts.find != "" {
		n, err := doc.Find(opts.find)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "%d matches for %q\n", n, opts.find)
		for _, m := range doc.Finder().Matches() {
			fmt.Fprintf(stdout, "  %s\n", m)
		}
	}

	if err := printView(stdout, doc); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.analyze {
		if err := printAnalysis(stdout, doc); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.watch {
		if err := watch(opts, doc, stdout, logger); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("quire", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.Float64Var(&opts.width, "width", 0, "Viewport width, overrides the configuration")
	fs.Float64Var(&opts.height, "height", 0, "Viewport height, overrides the configuration")
	fs.Float64Var(&opts.offset, "offset", 0, "Scroll offset of the viewport top")
	fs.StringVar(&opts.find, "find", "", "Search for a pattern and list the matches")
	fs.BoolVar(&opts.analyze, "analyze", false, "Print statistics, word frequency and tag reports as JSON")
	fs.BoolVar(&opts.export, "export", false, "Write the document as KML to stdout")
	fs.BoolVar(&opts.dumpConfig, "dump-config", false, "Print the effective configuration as TOML")
	fs.BoolVar(&opts.watch, "watch", false, "Reload the configuration file on change and redraw")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.BoolVar(&opts.version, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "quire - manuscript layout core\n\n")
		fmt.Fprintf(stderr, "Usage: quire [options] [file]\n\n")
		fmt.Fprintf(stderr, "Files ending in .kml, .md or .txt are supported.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  quire draft.kml                    Print the first screen\n")
		fmt.Fprintf(stderr, "  quire -offset 400 draft.kml        Print the screen at offset 400\n")
		fmt.Fprintf(stderr, "  quire -analyze notes.md            Print word statistics\n")
		fmt.Fprintf(stderr, "  quire -c quire.toml -watch a.kml   Redraw when the config changes\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		opts.file = fs.Arg(0)
	default:
		fmt.Fprintf(stderr, "Error: expected at most one file, got %d\n", fs.NArg())
		fs.Usage()
		return opts, errors.New("too many arguments")
	}
	if opts.watch && opts.configPath == "" {
		fmt.Fprintf(stderr, "Error: -watch needs -config\n")
		return opts, errors.New("watch without config")
	}
	return opts, nil
}

func loadConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	applyFlags(&cfg, opts)
	return cfg, cfg.Validate()
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.width > 0 {
		cfg.Viewport.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Viewport.Height = opts.height
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
}

func printView(w io.Writer, doc *app.Document) error {
	lines, err := doc.VisibleLines()
	if err != nil {
		return err
	}
	v := doc.Viewport()
	fmt.Fprintf(w, "viewport %.0fx%.0f at %.1f of %.1f\n", v.Width(), v.Height(), v.ScrollOffset(), v.TotalContentHeight())
	for _, l := range lines {
		fmt.Fprintf(w, "%4d.%-2d %8.1f | %s\n", l.Paragraph, l.Line, l.Top, l.Text)
	}
	return nil
}

func printAnalysis(w io.Writer, doc *app.Document) error {
	n, err := doc.Analyze()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()
	for range n {
		res, err := doc.Wait(ctx)
		if err != nil {
			return err
		}
		data, err := res.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	}
	return nil
}

// watch redraws the viewport every time the configuration file changes,
// until SIGINT or SIGTERM. Command-line overrides survive reloads.
func watch(opts options, doc *app.Document, w io.Writer, logger *app.Logger) error {
	path := opts.configPath
	watcher, err := config.Watch(path)
	if err != nil {
		return err
	}
	defer watcher.Close()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	logger.Info("watching %s", path)
	for {
		select {
		case <-signals:
			return nil
		case u, ok := <-watcher.Updates():
			if !ok {
				return nil
			}
			if u.Err != nil {
				logger.Warn("reload %s: %v", path, u.Err)
				continue
			}
			cfg := u.Config
			applyFlags(&cfg, opts)
			if err := doc.ApplyConfig(cfg); err != nil {
				logger.Warn("apply %s: %v", path, err)
				continue
			}
			if err := printView(w, doc); err != nil {
				return err
			}
		}
	}
}
