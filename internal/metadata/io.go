package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/danferreira/gtmake/internal/bencode"
	"github.com/danferreira/gtmake/internal/fileset"
)

// Read loads and validates a .torrent file. A missing or unreadable file
// yields a *fileset.AccessError, undecodable content a *ReadError, and a
// decodable value that is not a torrent an *InvalidDocumentError.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &fileset.AccessError{Op: "read", Path: path, Err: err}
	}
	return decodeDocument(path, data)
}

func decodeDocument(path string, data []byte) (*Document, error) {
	v, err := bencode.Decode(data)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	doc, err := FromValue(v)
	if err != nil {
		var invalid *InvalidDocumentError
		if errors.As(err, &invalid) {
			invalid.Path = path
		}
		return nil, err
	}

	return doc, nil
}

// Write encodes doc in full and then replaces path with the result in one
// step. A failure at any point leaves an existing file at path untouched.
func Write(path string, doc *Document) (err error) {
	data, err := bencode.Encode(doc.Value())
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &fileset.AccessError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return &fileset.AccessError{Op: "write", Path: path, Err: err}
	}
	if err = tmp.Chmod(0644); err != nil && !errors.Is(err, fs.ErrPermission) {
		return &fileset.AccessError{Op: "chmod", Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &fileset.AccessError{Op: "write", Path: path, Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &fileset.AccessError{Op: "rename", Path: path, Err: err}
	}

	slog.Debug("torrent written", "path", path, "bytes", len(data))
	return nil
}
