package metadata

import (
	"time"

	"github.com/danferreira/gtmake/internal/bencode"
)

// Top-level document keys.
const (
	KeyInfo         = "info"
	KeyAnnounce     = "announce"
	KeyAnnounceList = "announce-list"
	KeyCreationDate = "creation date"
	KeyCreatedBy    = "created by"
	KeyComment      = "comment"
	KeyEncoding     = "encoding"
)

// Info dictionary keys.
const (
	KeyName        = "name"
	KeyPieceLength = "piece length"
	KeyPieces      = "pieces"
	KeyPrivate     = "private"
	KeySalt        = "salt"
	KeySource      = "source"
	KeyLength      = "length"
	KeyMD5Sum      = "md5sum"
	KeyFiles       = "files"
	KeyPath        = "path"
)

const Encoding = "UTF-8"

// Document is a torrent metainfo dictionary. It always holds an info
// dictionary; the accessors return zero values for absent optional keys.
type Document struct {
	dict *bencode.Dict
}

// FromValue checks that v has the shape of a torrent document.
func FromValue(v bencode.Value) (*Document, error) {
	d, ok := v.AsDict()
	if !ok {
		return nil, &InvalidDocumentError{Reason: "top-level value is not a dictionary"}
	}
	if _, ok := d.GetDict(KeyInfo); !ok {
		return nil, &InvalidDocumentError{Reason: "missing info dictionary"}
	}
	return &Document{dict: d}, nil
}

func (d *Document) Value() bencode.Value {
	return bencode.DictValue(d.dict)
}

func (d *Document) Dict() *bencode.Dict {
	return d.dict
}

func (d *Document) Info() *bencode.Dict {
	info, _ := d.dict.GetDict(KeyInfo)
	return info
}

func (d *Document) Clone() *Document {
	return &Document{dict: d.dict.Clone()}
}

func (d *Document) Name() string {
	name, _ := d.Info().GetString(KeyName)
	return name
}

func (d *Document) PieceLength() int64 {
	pl, _ := d.Info().GetInt(KeyPieceLength)
	return pl
}

func (d *Document) PieceCount() int {
	pieces, _ := d.Info().GetString(KeyPieces)
	return len(pieces) / 20
}

func (d *Document) Private() bool {
	p, _ := d.Info().GetInt(KeyPrivate)
	return p == 1
}

func (d *Document) Source() string {
	s, _ := d.Info().GetString(KeySource)
	return s
}

func (d *Document) Announce() string {
	s, _ := d.dict.GetString(KeyAnnounce)
	return s
}

func (d *Document) CreatedBy() string {
	s, _ := d.dict.GetString(KeyCreatedBy)
	return s
}

func (d *Document) Comment() string {
	s, _ := d.dict.GetString(KeyComment)
	return s
}

func (d *Document) CreationDate() (time.Time, bool) {
	ts, ok := d.dict.GetInt(KeyCreationDate)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(ts, 0).UTC(), true
}

// AnnounceList returns the announce-list tiers, without falling back to
// announce.
func (d *Document) AnnounceList() [][]string {
	tiers, ok := d.dict.GetList(KeyAnnounceList)
	if !ok {
		return nil
	}

	var out [][]string
	for _, tier := range tiers {
		items, ok := tier.AsList()
		if !ok {
			continue
		}
		var urls []string
		for _, item := range items {
			if s, ok := item.AsString(); ok {
				urls = append(urls, s)
			}
		}
		if len(urls) > 0 {
			out = append(out, urls)
		}
	}
	return out
}

// Trackers returns the tracker tiers: announce-list when present, otherwise
// a single tier holding announce, otherwise nil.
func (d *Document) Trackers() [][]string {
	if tiers := d.AnnounceList(); len(tiers) > 0 {
		return tiers
	}
	if a := d.Announce(); a != "" {
		return [][]string{{a}}
	}
	return nil
}

type FileEntry struct {
	Path   []string
	Length int64
	MD5Sum string
}

// Files lists the files in torrent order. A single-file torrent yields one
// entry whose path is the torrent name.
func (d *Document) Files() []FileEntry {
	info := d.Info()

	list, ok := info.GetList(KeyFiles)
	if !ok {
		length, _ := info.GetInt(KeyLength)
		sum, _ := info.GetString(KeyMD5Sum)
		return []FileEntry{{Path: []string{d.Name()}, Length: length, MD5Sum: sum}}
	}

	files := make([]FileEntry, 0, len(list))
	for _, item := range list {
		fd, ok := item.AsDict()
		if !ok {
			continue
		}

		var entry FileEntry
		entry.Length, _ = fd.GetInt(KeyLength)
		entry.MD5Sum, _ = fd.GetString(KeyMD5Sum)
		segs, _ := fd.GetList(KeyPath)
		for _, s := range segs {
			if str, ok := s.AsString(); ok {
				entry.Path = append(entry.Path, str)
			}
		}
		files = append(files, entry)
	}
	return files
}

func (d *Document) TotalLength() int64 {
	var total int64
	for _, f := range d.Files() {
		total += f.Length
	}
	return total
}
