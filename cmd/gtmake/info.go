package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/danferreira/gtmake/internal/bitfield"
	"github.com/danferreira/gtmake/internal/metadata"
	"github.com/danferreira/gtmake/internal/storage"
)

var errIncomplete = errors.New("data does not match torrent")

func runInfo(ctx context.Context, a *app, args []string) error {
	defaults := a.cfg.OptionsFor("info")

	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	showFiles := fs.Bool("show-files", orDefault(defaults.ShowFiles, false), "List files in the torrent")
	fs.Usage = subUsage(fs, "info [flags] <file.torrent>", "")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	doc, err := metadata.Read(fs.Arg(0))
	if err != nil {
		return err
	}

	return a.printSummary(doc, fs.Arg(0), *showFiles)
}

func runMagnet(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("magnet", flag.ContinueOnError)
	fs.Usage = subUsage(fs, "magnet <file.torrent>", "")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	doc, err := metadata.Read(fs.Arg(0))
	if err != nil {
		return err
	}

	magnet, err := doc.Magnet(nil)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, magnet)
	return nil
}

func runVerify(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	noProgress := fs.Bool("no-progress", false, "Hide the progress bar")
	fs.Usage = subUsage(fs, "verify [flags] <file.torrent> <data-dir>",
		"data-dir is the directory holding the torrent's file or top-level folder.\n")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errUsage
	}

	m, err := metadata.Parse(fs.Arg(0))
	if err != nil {
		return err
	}

	st, err := storage.Open(fs.Arg(1), m)
	if err != nil {
		return err
	}
	defer st.Close()

	var bf bitfield.Bitfield
	scan := func(ctx context.Context, progress func(n int64)) error {
		var err error
		bf, err = storage.NewManager(st).ScanDisk(ctx, m, progress)
		return err
	}

	if err := a.track(ctx, *noProgress, "Verifying "+m.Info.Name, m.Info.TotalLength(), scan); err != nil {
		return err
	}

	total := len(m.Info.Pieces)
	fmt.Fprintf(a.stdout, "Pieces matched: %d/%d\n", bf.Count(), total)

	if missing := bf.Missing(total); len(missing) > 0 {
		return fmt.Errorf("%w: %d of %d pieces missing or corrupt", errIncomplete, len(missing), total)
	}
	return nil
}
