package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/danferreira/gtmake/internal/bencode"
	"github.com/danferreira/gtmake/internal/config"
	"github.com/danferreira/gtmake/internal/fileset"
	"github.com/danferreira/gtmake/internal/hasher"
	"github.com/danferreira/gtmake/internal/metadata"
	"github.com/danferreira/gtmake/internal/ui"
)

const trackerHelp = `Tracker tiers are separated by a space. Trackers on the same tier are
joined with a caret (^). Abbreviations are expanded; "open" adds every
default tracker as its own tier.

Example: 'tracker1^tracker2' tracker3
`

func runCreate(ctx context.Context, a *app, args []string) error {
	defaults := a.cfg.OptionsFor("create")

	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	output := fs.String("o", "", "Name of the torrent file (default: input name)")
	comment := fs.String("c", orDefault(defaults.Comment, ""), "Comment")
	source := fs.String("s", orDefault(defaults.Source, ""), "Source")
	private := fs.Bool("p", orDefault(defaults.Private, false), "Set the private flag")
	createdBy := fs.String("created-by", orDefault(defaults.CreatedBy, defaultCreatedBy()), "Created by")
	pieceSize := fs.String("piece-size", orDefault(defaults.PieceSize, "auto"),
		fmt.Sprintf("Piece size (%s)", strings.Join(hasher.PieceLengthNames(), ", ")))
	md5 := fs.Bool("md5", orDefault(defaults.MD5, false), "Include an MD5 sum per file")
	maxDepth := fs.Int("max-depth", orDefault(defaults.MaxDepth, -1), "Maximum directory depth, -1 for no limit")
	showFiles := fs.Bool("show-files", orDefault(defaults.ShowFiles, false), "List files in the summary")
	noProgress := fs.Bool("no-progress", !orDefault(defaults.ShowProgress, true), "Hide the hashing progress bar")
	fs.Usage = subUsage(fs, "create [flags] <input> [tracker-tier...]", trackerHelp)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errUsage
	}

	input, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return err
	}
	st, err := os.Stat(input)
	if err != nil {
		return &fileset.AccessError{Op: "stat", Path: input, Err: err}
	}

	files, err := fileset.Walk(input, *maxDepth)
	if err != nil {
		return err
	}
	total := fileset.TotalLength(files)

	pieceLength, err := hasher.ParsePieceLength(*pieceSize, total)
	if err != nil {
		return err
	}

	tiers := config.NewResolver(a.cfg, nil).Resolve(fs.Args()[1:])
	isPrivate := *private
	if isPrivate && len(tiers) == 0 {
		slog.Warn("no trackers given, creating a public torrent")
		isPrivate = false
	}

	layout := metadata.Layout{Root: input, Files: files, Single: !st.IsDir()}
	slog.Debug("creating torrent", "input", input, "files", len(files), "size", total, "piece_length", pieceLength)

	var info *bencode.Dict
	build := func(ctx context.Context, progress func(n int64)) error {
		var err error
		info, err = metadata.BuildInfo(ctx, layout, metadata.InfoOptions{
			PieceLength: pieceLength,
			Private:     isPrivate,
			Source:      *source,
			MD5:         *md5,
			Progress:    progress,
		})
		return err
	}

	if err := a.track(ctx, *noProgress, "Hashing "+filepath.Base(input), total, build); err != nil {
		return err
	}

	doc := metadata.NewDocument(info, metadata.DocumentOptions{
		Trackers:  tiers,
		CreatedBy: *createdBy,
		Comment:   *comment,
	})

	out := torrentName(*output, filepath.Base(input))
	if err := metadata.Write(out, doc); err != nil {
		return err
	}

	return a.printSummary(doc, out, *showFiles)
}

// track runs work with a progress bar when stderr is a terminal.
func (a *app) track(ctx context.Context, quiet bool, title string, total int64, work ui.WorkFunc) error {
	if quiet || !a.interactive {
		return work(ctx, nil)
	}
	return ui.RunProgress(ctx, title, total, work)
}

func (a *app) printSummary(doc *metadata.Document, path string, showFiles bool) error {
	summary, err := ui.Summary(doc, ui.SummaryOptions{Path: path, ShowFiles: showFiles})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, summary)
	return nil
}

// torrentName returns name, or fallback when name is empty, with a .torrent
// extension.
func torrentName(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	if !strings.HasSuffix(name, ".torrent") {
		name += ".torrent"
	}
	return name
}

func subUsage(fs *flag.FlagSet, synopsis, extra string) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: gtmake %s\n\n", synopsis)
		if extra != "" {
			fmt.Fprintln(out, extra)
		}
		fs.PrintDefaults()
	}
}
