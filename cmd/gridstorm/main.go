// Package main is the entry point for the gridstorm terminal data grid.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/gridstorm/internal/app"
	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/grid/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: gridstorm needs a terminal on stdout")
		return 1
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	screen, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	application.SetBackend(screen)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Write the log to this file")
	flag.BoolVar(&opts.ReadOnly, "readonly", false, "Never write edits back to the data file")
	flag.BoolVar(&opts.ReadOnly, "R", false, "Never write edits back to the data file (shorthand)")
	flag.BoolVar(&opts.Watch, "watch", true, "Reload columns when the config file changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gridstorm - terminal data grid for JSON datasets\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gridstorm [options] [data.json]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  Up/Down, PgUp/PgDn, Home/End   move (Shift extends)\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+Space, Ctrl+A             toggle, select all\n")
		fmt.Fprintf(os.Stderr, "  Left/Right                     collapse, expand\n")
		fmt.Fprintf(os.Stderr, "  Enter/F2, Esc, Tab             edit, cancel, next cell\n")
		fmt.Fprintf(os.Stderr, "  q, Ctrl+Q                      quit\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("gridstorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.DataPath = flag.Arg(0)
	return opts
}
