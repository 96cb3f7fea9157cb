// Package storage reads a torrent's data back from disk so it can be checked
// against the piece hashes.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/danferreira/gtmake/internal/fileset"
	"github.com/danferreira/gtmake/internal/metadata"
)

// File is one data file. File is nil when the file is not on disk.
type File struct {
	File   *os.File
	Path   string
	Length int64
}

// Storage presents the files of a torrent as one contiguous, read-only byte
// range, in torrent order.
type Storage struct {
	Files []File
}

// Open opens the torrent's files below root. Missing files are not an error:
// reads that touch them fail, so their pieces count as missing.
func Open(root string, m *metadata.Metadata) (*Storage, error) {
	s := &Storage{}

	for _, f := range m.Info.Files {
		path := filepath.Join(root, f.Path)

		file, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("data file missing", "path", path)
			file = nil
		} else if err != nil {
			s.Close()
			return nil, &fileset.AccessError{Op: "open", Path: path, Err: err}
		}

		s.Files = append(s.Files, File{
			File:   file,
			Path:   path,
			Length: f.Length,
		})
	}

	return s, nil
}

func (s *Storage) ReadAt(buf []byte, start int64) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	var offset int64
	var n int
	end := start + int64(len(buf))

	for _, file := range s.Files {
		nextOffset := offset + file.Length
		if start >= nextOffset {
			offset = nextOffset
			continue
		}

		actualStart := max(start-offset, 0)
		actualEnd := min(end, nextOffset) - offset

		amount := actualEnd - actualStart
		if amount <= 0 {
			offset = nextOffset
			continue
		}

		if file.File == nil {
			return n, &fileset.AccessError{Op: "read", Path: file.Path, Err: fs.ErrNotExist}
		}

		m, err := file.File.ReadAt(buf[n:n+int(amount)], actualStart)
		n += m
		if int64(m) < amount {
			if err == nil || errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return n, &fileset.AccessError{Op: "read", Path: file.Path, Err: err}
		}

		if n == len(buf) {
			return n, nil
		}

		offset = nextOffset
	}

	return n, io.EOF
}

func (s *Storage) Close() error {
	var err error
	for _, sf := range s.Files {
		if sf.File == nil {
			continue
		}
		if e := sf.File.Close(); e != nil && err == nil {
			err = fmt.Errorf("close %s: %w", sf.Path, e)
		}
	}
	return err
}
