package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/danferreira/gtmake/internal/fileset"
	"github.com/danferreira/gtmake/internal/hasher"
	"github.com/jackpal/bencode-go"
)

// Metadata is a flat, typed view of a torrent file.
type Metadata struct {
	Announce     string
	AnnounceList [][]string
	CreatedBy    string
	Comment      string
	CreationDate int64
	Info         Info
}

type Info struct {
	Name        string
	Pieces      [][20]byte
	PieceLength int64
	Files       []FileInfo
	Private     bool
	Source      string
	InfoHash    [20]byte
}

// FileInfo.Path is relative to the directory the torrent is stored in:
// the torrent name for a single file, name/seg/... otherwise.
type FileInfo struct {
	Path   string
	Length int64
}

type torrentFile struct {
	Announce     string          `bencode:"announce"`
	AnnounceList [][]string      `bencode:"announce-list"`
	CreatedBy    string          `bencode:"created by"`
	Comment      string          `bencode:"comment"`
	CreationDate int64           `bencode:"creation date"`
	Info         torrentFileInfo `bencode:"info"`
}

type torrentFileInfo struct {
	Name        string                `bencode:"name"`
	Pieces      string                `bencode:"pieces"`
	PieceLength int64                 `bencode:"piece length"`
	Length      int64                 `bencode:"length"`
	Private     int64                 `bencode:"private"`
	Source      string                `bencode:"source"`
	Files       []torrentFileInfoFile `bencode:"files"`
}

type torrentFileInfoFile struct {
	Path   []string `bencode:"path"`
	Length int64    `bencode:"length"`
}

// Parse reads a torrent file into a Metadata. The info-hash is computed from
// the canonical encoding of the info dictionary as it appears in the file.
func Parse(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &fileset.AccessError{Op: "read", Path: path, Err: err}
	}

	doc, err := decodeDocument(path, data)
	if err != nil {
		return nil, err
	}
	hash, err := InfoHashBytes(doc.Info())
	if err != nil {
		return nil, err
	}

	tf := torrentFile{}
	if err = bencode.Unmarshal(bytes.NewReader(data), &tf); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	if len(tf.Info.Pieces)%20 != 0 {
		return nil, &InvalidDocumentError{Path: path, Reason: "pieces length is not a multiple of 20"}
	}
	if tf.Info.PieceLength <= 0 {
		return nil, &InvalidDocumentError{Path: path, Reason: "piece length must be positive"}
	}
	if !validSegment(tf.Info.Name) {
		return nil, &InvalidDocumentError{Path: path, Reason: fmt.Sprintf("invalid name %q", tf.Info.Name)}
	}

	var files []FileInfo

	if len(tf.Info.Files) > 0 {
		for _, file := range tf.Info.Files {
			if len(file.Path) == 0 {
				return nil, &InvalidDocumentError{Path: path, Reason: "file with empty path"}
			}
			for _, seg := range file.Path {
				if !validSegment(seg) {
					return nil, &InvalidDocumentError{Path: path, Reason: fmt.Sprintf("invalid path segment %q", seg)}
				}
			}
			files = append(files, FileInfo{
				Path:   filepath.Join(append([]string{tf.Info.Name}, file.Path...)...),
				Length: file.Length,
			})
		}
	} else {
		files = append(files, FileInfo{
			Path:   tf.Info.Name,
			Length: tf.Info.Length,
		})
	}

	var total int64
	for _, f := range files {
		if f.Length < 0 {
			return nil, &InvalidDocumentError{Path: path, Reason: "negative file length"}
		}
		total += f.Length
	}
	if want := hasher.PieceCount(total, tf.Info.PieceLength); int64(len(tf.Info.Pieces)/20) != want {
		return nil, &InvalidDocumentError{
			Path:   path,
			Reason: fmt.Sprintf("%d pieces for %d bytes, want %d", len(tf.Info.Pieces)/20, total, want),
		}
	}

	chunks := slices.Collect(slices.Chunk([]byte(tf.Info.Pieces), 20))
	pieces := make([][20]byte, 0, len(chunks))

	for _, chunk := range chunks {
		var arr [20]byte
		copy(arr[:], chunk)
		pieces = append(pieces, arr)
	}

	return &Metadata{
		Announce:     tf.Announce,
		AnnounceList: tf.AnnounceList,
		CreatedBy:    tf.CreatedBy,
		Comment:      tf.Comment,
		CreationDate: tf.CreationDate,
		Info: Info{
			Name:        tf.Info.Name,
			Pieces:      pieces,
			PieceLength: tf.Info.PieceLength,
			Files:       files,
			Private:     tf.Info.Private == 1,
			Source:      tf.Info.Source,
			InfoHash:    hash,
		},
	}, nil
}

// validSegment reports whether s can be used as one path component below a
// data directory.
func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	if strings.ContainsAny(s, `/\`) || filepath.IsAbs(s) {
		return false
	}
	return filepath.IsLocal(s)
}

func (t *Info) TotalLength() int64 {
	var total int64
	for _, file := range t.Files {
		total += file.Length
	}

	return total
}

// PieceSize returns the length of piece index; only the last piece may be
// shorter than PieceLength.
func (t *Info) PieceSize(index int) int64 {
	begin := int64(index) * t.PieceLength
	end := min(begin+t.PieceLength, t.TotalLength())
	return end - begin
}
