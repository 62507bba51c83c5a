package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/gabriel-vasile/mimetype"
	flag "github.com/spf13/pflag"

	"github.com/lumipallolabs/driftwatch/internal/cache"
	"github.com/lumipallolabs/driftwatch/internal/config"
	"github.com/lumipallolabs/driftwatch/internal/logging"
	"github.com/lumipallolabs/driftwatch/internal/stats"
	"github.com/lumipallolabs/driftwatch/internal/ui"
	"github.com/lumipallolabs/driftwatch/internal/watch"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Custom flag set to avoid os.Exit on parse error
	flags := flag.NewFlagSet("driftwatch", flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: driftwatch [flags] PATH...\n\nFlags:\n%s", flags.FlagUsages())
	}

	interval := flags.DurationP("interval", "i", 0, "Polling interval (overrides config)")
	configPath := flags.String("config", "", "YAML config file")
	queueSize := flags.Int("queue-size", 0, "Event queue capacity (overrides config)")
	cacheDir := flags.String("cache-dir", "", "Snapshot cache directory")
	noCache := flags.Bool("no-cache", false, "Disable snapshot persistence")
	tui := flags.Bool("tui", false, "Show the live event feed")
	classify := flags.Bool("classify", false, "Annotate created files with their content type")
	showStats := flags.Bool("stats", false, "Print accumulated per-watch event counters and exit")
	logLevel := flags.String("log-level", "info", "Log level: debug, info, warning, error")
	noColor := flags.Bool("no-color", false, "Disable colored output")
	showVersion := flags.Bool("version", false, "Show version and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}

	if *showVersion {
		fmt.Printf("driftwatch %s\n", version)
		return 0
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
		cfg = loaded
	}

	// Flags win over the config file
	if *interval > 0 {
		cfg.Interval = config.Duration(*interval)
	}
	if *queueSize > 0 {
		cfg.QueueSize = *queueSize
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}

	watches := cfg.Watches
	for _, arg := range flags.Args() {
		watches = append(watches, config.Watch{Path: arg})
	}
	if len(watches) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no paths to watch (give PATH arguments or a config file)")
		flags.Usage()
		return 2
	}

	if *noColor {
		color.NoColor = true
	}

	level, ok := logging.ParseLevel(*logLevel)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown log level %q\n", *logLevel)
		return 2
	}
	// The TUI owns the terminal, so diagnostics go nowhere in that mode
	logger := logging.Nop()
	if !*tui {
		logger = logging.New(os.Stderr, level)
	}

	var store *cache.Store
	if !*noCache && cfg.CacheDir != "none" {
		dir := cfg.CacheDir
		if dir == "" {
			dir = cache.DefaultDir()
		}
		store = cache.New(dir)
	}

	statsMgr := stats.NewManager("")
	if err := statsMgr.Load(); err != nil {
		logger.Warn("stats load failed", map[string]string{"error": err.Error()})
	}
	defer statsMgr.Close()

	if *showStats {
		printStats(statsMgr, watches)
		return 0
	}

	if *tui {
		return runTUI(cfg, watches, store, statsMgr, *classify)
	}
	return runPlain(cfg, watches, store, statsMgr, logger, *classify)
}

// printStats dumps accumulated counters for the given watches.
func printStats(statsMgr *stats.Manager, watches []config.Watch) {
	bold := color.New(color.Bold)
	for _, w := range watches {
		display := displayPath(w.Path)
		ws := statsMgr.Watch(display)
		bold.Printf("%s  %d events\n", display, ws.Total)
		for _, kind := range sortedKinds(ws.Events) {
			fmt.Printf("  %-13s %d\n", kind, ws.Events[kind])
		}
	}
	bold.Printf("total  %d events\n", statsMgr.TotalEvents())
}

func sortedKinds(events map[string]int64) []string {
	kinds := make([]string, 0, len(events))
	for kind := range events {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// runPlain streams events to stdout, one colored line each, until
// SIGINT or SIGTERM.
func runPlain(cfg config.Config, watches []config.Watch, store *cache.Store, statsMgr *stats.Manager, logger *logging.Logger, classify bool) int {
	obs := watch.New(watch.Options{
		Interval:  time.Duration(cfg.Interval),
		QueueSize: cfg.QueueSize,
		Logger:    logger,
		Store:     store,
		OnWatchError: func(path string, err error) {
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", color.RedString("watch error"), path, err)
		},
	})

	for _, w := range watches {
		display := displayPath(w.Path)
		handler := watch.HandlerFunc(func(ev watch.Event) error {
			printEvent(display, ev, classify)
			statsMgr.Record(display, watch.Kind(ev))
			return nil
		})
		if err := obs.AddRuleWithInterval(w.Path, handler, time.Duration(w.Interval)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
		logger.Info("watching", map[string]string{
			"path":     display,
			"interval": time.Duration(cfg.Interval).String(),
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down", nil)
		obs.Stop()
	}()

	if err := obs.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

// runTUI forwards events into a bubbletea program and blocks until the
// user quits.
func runTUI(cfg config.Config, watches []config.Watch, store *cache.Store, statsMgr *stats.Manager, classify bool) int {
	displays := make([]string, len(watches))
	for i, w := range watches {
		displays[i] = displayPath(w.Path)
	}

	p := tea.NewProgram(
		ui.NewApp(displays, classify),
		tea.WithAltScreen(),
	)

	obs := watch.New(watch.Options{
		Interval:  time.Duration(cfg.Interval),
		QueueSize: cfg.QueueSize,
		Store:     store,
		OnWatchError: func(path string, err error) {
			p.Send(ui.WatchErrorMsg{Watch: path, Err: err})
		},
	})

	for i, w := range watches {
		display := displays[i]
		handler := watch.HandlerFunc(func(ev watch.Event) error {
			p.Send(ui.EventMsg{Watch: display, Event: ev, Time: time.Now()})
			statsMgr.Record(display, watch.Kind(ev))
			return nil
		})
		if err := obs.AddRuleWithInterval(w.Path, handler, time.Duration(w.Interval)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- obs.Run()
	}()

	_, err := p.Run()
	obs.Stop()
	<-runErr

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

var (
	createdColor  = color.New(color.FgGreen)
	modifiedColor = color.New(color.FgYellow)
	deletedColor  = color.New(color.FgRed)
	movedColor    = color.New(color.FgBlue)
	timeColor     = color.New(color.FgHiBlack)
)

// printEvent writes one event line to stdout.
func printEvent(watchPath string, ev watch.Event, classify bool) {
	kind := watch.Kind(ev)

	var c *color.Color
	switch {
	case strings.HasSuffix(kind, "created"):
		c = createdColor
	case strings.HasSuffix(kind, "modified"):
		c = modifiedColor
	case strings.HasSuffix(kind, "deleted"):
		c = deletedColor
	default:
		c = movedColor
	}

	detail := watch.EventPath(ev)
	switch typed := ev.(type) {
	case watch.FileMoved:
		detail = typed.OldPath + " -> " + typed.Path
	case watch.DirMoved:
		detail = typed.OldPath + " -> " + typed.Path
	case watch.FileCreated:
		if classify {
			// Best effort; the file may already be gone again
			if mtype, err := mimetype.DetectFile(typed.Path); err == nil {
				detail += " (" + mtype.String() + ")"
			}
		}
	}

	fmt.Printf("%s %s %s [%s]\n",
		timeColor.Sprint(time.Now().Format("15:04:05")),
		c.Sprintf("%-13s", kind),
		detail,
		watchPath)
}

// displayPath is the label shown for a watch in output and stats. It
// uses the observer's rule key, so a stats lookup for a root always
// finds the counters recorded for it, symlinked spellings included.
func displayPath(path string) string {
	canonical, err := watch.CanonicalPath(path)
	if err != nil {
		return path
	}
	return canonical
}
