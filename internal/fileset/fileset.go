// Package fileset collects the ordered list of files that make up a torrent.
// The order returned by Walk is the order the hasher reads the files in, and
// so the order of the torrent's file list.
package fileset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrNoFiles = errors.New("no files found")

type File struct {
	Path   string
	Length int64
}

// AccessError reports a file that could not be opened, read or written.
type AccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

func TotalLength(files []File) int64 {
	var total int64
	for _, f := range files {
		total += f.Length
	}
	return total
}

// Walk lists the regular files under root in lexical order. A root that is a
// file yields just that file. maxDepth limits how many directory levels
// below root are entered; a negative maxDepth means no limit.
func Walk(root string, maxDepth int) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &AccessError{Op: "stat", Path: root, Err: err}
	}

	if !info.IsDir() {
		return []File{{Path: root, Length: info.Size()}}, nil
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &AccessError{Op: "walk", Path: path, Err: err}
		}

		if d.IsDir() {
			if path != root && maxDepth >= 0 && depth(root, path) > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		// Follow symlinks to regular files; skip devices, sockets and
		// links to directories.
		fi, err := os.Stat(path)
		if err != nil {
			return &AccessError{Op: "stat", Path: path, Err: err}
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		files = append(files, File{Path: path, Length: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoFiles)
	}

	return files, nil
}

func depth(root, dir string) int {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// Segments splits path, relative to root, into its components.
func Segments(root, path string) ([]string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil, err
	}
	if rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return nil, fmt.Errorf("%s is not below %s", path, root)
	}
	return strings.Split(filepath.ToSlash(rel), "/"), nil
}
