package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/danferreira/gtmake/internal/bencode"
	"github.com/danferreira/gtmake/internal/fileset"
	"github.com/danferreira/gtmake/internal/hasher"
)

const (
	saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	SaltLength   = 32
)

// SaltFunc returns a fresh salt for the info dictionary.
type SaltFunc func() string

// NewSalt returns 32 random alphanumeric characters. The salt only has to
// make the info-hash unique, so it does not need a cryptographic source.
func NewSalt() string {
	var b strings.Builder
	b.Grow(SaltLength)
	for range SaltLength {
		b.WriteByte(saltAlphabet[rand.IntN(len(saltAlphabet))])
	}
	return b.String()
}

// Layout describes the data a torrent is built from. Root is the input path:
// the file itself for a single-file torrent, or the directory whose base
// name becomes the torrent name.
type Layout struct {
	Root   string
	Files  []fileset.File
	Single bool
}

type InfoOptions struct {
	PieceLength int64
	Private     bool
	Source      string
	MD5         bool
	Progress    func(n int64)
	Salt        SaltFunc
	// HasherOptions are appended to the options derived from the fields above.
	HasherOptions []hasher.Option
}

// BuildInfo hashes the layout's files and assembles the info dictionary.
// The files list keeps the order the files were hashed in.
func BuildInfo(ctx context.Context, layout Layout, opts InfoOptions) (*bencode.Dict, error) {
	if len(layout.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", layout.Root, fileset.ErrNoFiles)
	}
	if layout.Single && len(layout.Files) != 1 {
		return nil, fmt.Errorf("single-file torrent needs exactly one file, got %d", len(layout.Files))
	}

	var hopts []hasher.Option
	if opts.MD5 {
		hopts = append(hopts, hasher.WithMD5())
	}
	if opts.Progress != nil {
		hopts = append(hopts, hasher.WithProgress(opts.Progress))
	}
	hopts = append(hopts, opts.HasherOptions...)

	res, err := hasher.Hash(ctx, layout.Files, opts.PieceLength, hopts...)
	if err != nil {
		return nil, err
	}

	salt := opts.Salt
	if salt == nil {
		salt = NewSalt
	}

	info := bencode.NewDict()
	info.Set(KeyName, bencode.Str(filepath.Base(layout.Root)))
	info.Set(KeyPieceLength, bencode.Int(opts.PieceLength))
	info.Set(KeyPieces, bencode.Bytes(res.Pieces))
	info.Set(KeySalt, bencode.Str(salt()))
	info.Set(KeyPrivate, bencode.Int(boolInt(opts.Private)))
	if opts.Source != "" {
		info.Set(KeySource, bencode.Str(opts.Source))
	}

	if layout.Single {
		info.Set(KeyLength, bencode.Int(res.Lengths[0]))
		if opts.MD5 {
			info.Set(KeyMD5Sum, bencode.Str(res.MD5Sums[0]))
		}
	} else {
		files := make([]bencode.Value, 0, len(layout.Files))
		for i, f := range layout.Files {
			segs, err := fileset.Segments(layout.Root, f.Path)
			if err != nil {
				return nil, err
			}

			fd := bencode.NewDict()
			fd.Set(KeyLength, bencode.Int(res.Lengths[i]))
			fd.Set(KeyPath, bencode.Strings(segs...))
			if opts.MD5 {
				fd.Set(KeyMD5Sum, bencode.Str(res.MD5Sums[i]))
			}
			files = append(files, bencode.DictValue(fd))
		}
		info.Set(KeyFiles, bencode.NewList(files...))
	}

	slog.Info("info dictionary built", "name", filepath.Base(layout.Root), "files", len(layout.Files), "pieces", res.PieceCount())
	return info, nil
}

type DocumentOptions struct {
	Trackers  [][]string
	CreatedBy string
	Comment   string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewDocument wraps info into a full torrent document.
func NewDocument(info *bencode.Dict, opts DocumentOptions) *Document {
	d := bencode.NewDict()
	d.Set(KeyInfo, bencode.DictValue(info))

	doc := &Document{dict: d}
	doc.setTrackers(opts.Trackers)
	doc.stamp(opts.CreatedBy, opts.Comment, opts.Now)
	return doc
}

type XSeedOptions struct {
	Trackers [][]string
	// Private overrides the source's flag when set. Without trackers the
	// result is always public.
	Private *bool
	// Source replaces the source tag; empty removes it.
	Source    string
	CreatedBy string
	Comment   string
	Now       func() time.Time
	Salt      SaltFunc
}

// CrossSeed derives a copy of src for seeding the same data elsewhere. The
// new salt guarantees a different info-hash; src is left untouched.
func CrossSeed(src *Document, opts XSeedOptions) (*Document, error) {
	if src == nil || src.Info() == nil {
		return nil, &InvalidDocumentError{Reason: "missing info dictionary"}
	}

	doc := src.Clone()
	doc.dict.Delete(KeyAnnounceList)
	doc.dict.Delete(KeyComment)

	salt := opts.Salt
	if salt == nil {
		salt = NewSalt
	}

	info := doc.Info()
	info.Set(KeySalt, bencode.Str(salt()))

	trackers := compactTiers(opts.Trackers)
	switch {
	case len(trackers) == 0:
		info.Set(KeyPrivate, bencode.Int(0))
	case opts.Private != nil:
		info.Set(KeyPrivate, bencode.Int(boolInt(*opts.Private)))
	}

	info.Delete(KeySource)
	if opts.Source != "" {
		info.Set(KeySource, bencode.Str(opts.Source))
	}

	doc.setTrackers(trackers)
	doc.stamp(opts.CreatedBy, opts.Comment, opts.Now)
	return doc, nil
}

// setTrackers writes announce as the first tracker and adds announce-list
// only when there is more than one tracker overall.
func (d *Document) setTrackers(tiers [][]string) {
	tiers = compactTiers(tiers)
	if len(tiers) == 0 {
		d.dict.Delete(KeyAnnounce)
		d.dict.Delete(KeyAnnounceList)
		return
	}

	d.dict.Set(KeyAnnounce, bencode.Str(tiers[0][0]))

	if len(tiers) == 1 && len(tiers[0]) == 1 {
		d.dict.Delete(KeyAnnounceList)
		return
	}

	list := make([]bencode.Value, 0, len(tiers))
	for _, tier := range tiers {
		list = append(list, bencode.Strings(tier...))
	}
	d.dict.Set(KeyAnnounceList, bencode.NewList(list...))
}

func (d *Document) stamp(createdBy, comment string, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	if createdBy != "" {
		d.dict.Set(KeyCreatedBy, bencode.Str(createdBy))
	}
	if comment != "" {
		d.dict.Set(KeyComment, bencode.Str(comment))
	}
	d.dict.Set(KeyCreationDate, bencode.Int(now().UTC().Unix()))
	d.dict.Set(KeyEncoding, bencode.Str(Encoding))
}

// compactTiers drops empty trackers and empty tiers.
func compactTiers(tiers [][]string) [][]string {
	var out [][]string
	for _, tier := range tiers {
		var urls []string
		for _, u := range tier {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) > 0 {
			out = append(out, urls)
		}
	}
	return out
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
