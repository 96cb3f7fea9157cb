package main

import (
	"context"
	"errors"
	"flag"
	"path/filepath"
	"strings"

	"github.com/danferreira/gtmake/internal/config"
	"github.com/danferreira/gtmake/internal/metadata"
)

func runXseed(ctx context.Context, a *app, args []string) error {
	defaults := a.cfg.OptionsFor("xseed")

	fs := flag.NewFlagSet("xseed", flag.ContinueOnError)
	output := fs.String("o", "", "Name of the torrent file (default: <file>-xseed.torrent)")
	comment := fs.String("c", orDefault(defaults.Comment, ""), "Comment")
	source := fs.String("s", orDefault(defaults.Source, ""), "Source")
	private := fs.Bool("p", false, "Set the private flag")
	public := fs.Bool("P", false, "Clear the private flag")
	createdBy := fs.String("created-by", orDefault(defaults.CreatedBy, defaultCreatedBy()), "Created by")
	showFiles := fs.Bool("show-files", orDefault(defaults.ShowFiles, false), "List files in the summary")
	fs.Usage = subUsage(fs, "xseed [flags] <file.torrent> [tracker-tier...]", trackerHelp)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errUsage
	}
	if *private && *public {
		return errors.New("-p and -P are mutually exclusive")
	}

	privateFlag := defaults.Private
	switch {
	case *private:
		privateFlag = private
	case *public:
		privateFlag = new(bool)
	}

	path := fs.Arg(0)
	src, err := metadata.Read(path)
	if err != nil {
		return err
	}

	doc, err := metadata.CrossSeed(src, metadata.XSeedOptions{
		Trackers:  config.NewResolver(a.cfg, nil).Resolve(fs.Args()[1:]),
		Private:   privateFlag,
		Source:    *source,
		CreatedBy: *createdBy,
		Comment:   *comment,
	})
	if err != nil {
		return err
	}

	out := torrentName(*output, strings.TrimSuffix(filepath.Base(path), ".torrent")+"-xseed")
	if err := metadata.Write(out, doc); err != nil {
		return err
	}

	return a.printSummary(doc, out, *showFiles)
}
