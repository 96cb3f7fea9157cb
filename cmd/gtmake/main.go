package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/danferreira/gtmake/internal/config"
	"golang.org/x/term"
)

const version = "0.1.0"

var errUsage = errors.New("usage")

type app struct {
	cfg     *config.Config
	cfgPath string
	stdout  io.Writer
	// interactive is true when a progress bar can be drawn on stderr.
	interactive bool
}

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"create": {"Create a torrent file", runCreate},
	"info":   {"Show information about a torrent file", runInfo},
	"magnet": {"Print the magnet link of a torrent file", runMagnet},
	"xseed":  {"Copy a torrent for cross-seeding", runXseed},
	"abbrs":  {"List, add or remove tracker abbreviations", runAbbrs},
	"verify": {"Check data on disk against a torrent", runVerify},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		if err != errUsage && err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}
	if err != nil {
		slog.Error("gtmake failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("gtmake", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose logging")
	cfgPath := fs.String("config", "", "Path to the config file")
	showVersion := fs.Bool("version", false, "Print the version and exit")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *showVersion {
		fmt.Fprintf(stdout, "gtmake %s\n", version)
		return nil
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(fs.Output(), "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}

	path := *cfgPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	a := &app{
		cfg:         cfg,
		cfgPath:     path,
		stdout:      stdout,
		interactive: term.IsTerminal(int(os.Stderr.Fd())),
	}

	return cmd.run(ctx, a, fs.Args()[1:])
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "Usage: gtmake [flags] <command> [args]\n\nCommands:\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-8s %s\n", name, commands[name].summary)
	}

	fmt.Fprintf(out, "\nFlags:\n")
	fs.PrintDefaults()
}

func defaultCreatedBy() string {
	return "gtmake " + version
}

// orDefault returns *p when set, otherwise def.
func orDefault[T any](p *T, def T) T {
	if p != nil {
		return *p
	}
	return def
}
