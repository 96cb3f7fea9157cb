// Package hasher computes the piece digests of a torrent.
//
// Files are read in the order given and treated as one concatenated stream,
// so a piece may begin in one file and end in the next.
package hasher

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"

	"github.com/danferreira/gtmake/internal/fileset"
)

const HashSize = sha1.Size

// readSize bounds a single read so progress is reported at a steady pace
// even for large pieces.
const readSize = 256 << 10

var ErrInvalidPieceLength = errors.New("piece length must be positive")

type Result struct {
	Pieces  []byte
	Lengths []int64
	// MD5Sums holds one hex digest per file when WithMD5 was given.
	MD5Sums []string
}

func (r *Result) PieceCount() int {
	return len(r.Pieces) / HashSize
}

func (r *Result) TotalLength() int64 {
	var total int64
	for _, l := range r.Lengths {
		total += l
	}
	return total
}

type Opener func(path string) (io.ReadCloser, error)

type options struct {
	md5      bool
	progress func(n int64)
	open     Opener
}

type Option func(*options)

func WithMD5() Option {
	return func(o *options) { o.md5 = true }
}

// WithProgress registers a sink that receives the number of bytes consumed
// after every read.
func WithProgress(fn func(n int64)) Option {
	return func(o *options) { o.progress = fn }
}

// WithOpener replaces os.Open, mainly for tests.
func WithOpener(open Opener) Option {
	return func(o *options) { o.open = open }
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Hash streams files through a single piece buffer. Every time the buffer
// fills it is hashed with SHA-1; a partial buffer left after the last file is
// hashed as the final, shorter piece. Any open or read failure aborts the
// whole run.
func Hash(ctx context.Context, files []fileset.File, pieceLength int64, opts ...Option) (*Result, error) {
	if pieceLength <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPieceLength, pieceLength)
	}

	o := options{open: openFile}
	for _, opt := range opts {
		opt(&o)
	}

	h := &pieceHasher{
		opts: o,
		buf:  make([]byte, pieceLength),
	}

	res := &Result{Lengths: make([]int64, 0, len(files))}
	if o.md5 {
		res.MD5Sums = make([]string, 0, len(files))
	}

	for _, f := range files {
		length, sum, err := h.consume(ctx, f)
		if err != nil {
			return nil, err
		}

		if length != f.Length {
			slog.Warn("file size changed since it was listed", "path", f.Path, "listed", f.Length, "read", length)
		}

		res.Lengths = append(res.Lengths, length)
		if o.md5 {
			res.MD5Sums = append(res.MD5Sums, sum)
		}
	}

	if h.fill > 0 {
		h.emit()
	}
	res.Pieces = h.pieces

	slog.Debug("hashing finished", "files", len(files), "pieces", res.PieceCount())
	return res, nil
}

type pieceHasher struct {
	opts   options
	buf    []byte
	fill   int
	pieces []byte
}

func (h *pieceHasher) emit() {
	sum := sha1.Sum(h.buf[:h.fill])
	h.pieces = append(h.pieces, sum[:]...)
	h.fill = 0
}

// consume appends one file to the stream and returns how many bytes it had
// and, if requested, its MD5.
func (h *pieceHasher) consume(ctx context.Context, f fileset.File) (int64, string, error) {
	slog.Debug("hashing file", "path", f.Path, "length", f.Length)

	rc, err := h.opts.open(f.Path)
	if err != nil {
		return 0, "", &fileset.AccessError{Op: "open", Path: f.Path, Err: err}
	}
	defer rc.Close()

	var r io.Reader = rc
	var sum hash.Hash
	if h.opts.md5 {
		sum = md5.New()
		r = io.TeeReader(rc, sum)
	}

	var length int64
	for {
		if err := ctx.Err(); err != nil {
			return 0, "", err
		}

		end := min(h.fill+readSize, len(h.buf))
		n, err := io.ReadFull(r, h.buf[h.fill:end])
		h.fill += n
		length += int64(n)

		if n > 0 && h.opts.progress != nil {
			h.opts.progress(int64(n))
		}
		if h.fill == len(h.buf) {
			h.emit()
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return 0, "", &fileset.AccessError{Op: "read", Path: f.Path, Err: err}
		}
	}

	if sum == nil {
		return length, "", nil
	}
	return length, hex.EncodeToString(sum.Sum(nil)), nil
}
