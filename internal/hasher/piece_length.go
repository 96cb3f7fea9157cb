package hasher

import (
	"fmt"
	"strings"
)

const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
)

// maxAutoPieces is the piece count auto selection tries to stay under.
const maxAutoPieces = 2000

var pieceLengths = []int64{
	16 * KiB, 32 * KiB, 64 * KiB, 128 * KiB, 256 * KiB, 512 * KiB,
	1 * MiB, 2 * MiB, 4 * MiB, 8 * MiB, 16 * MiB, 32 * MiB,
}

var pieceLengthNames = []string{
	"16k", "32k", "64k", "128k", "256k", "512k",
	"1m", "2m", "4m", "8m", "16m", "32m",
}

// PieceLengthNames lists the values ParsePieceLength accepts.
func PieceLengthNames() []string {
	return append(append([]string{}, pieceLengthNames...), "auto")
}

// AutoPieceLength returns the smallest standard piece length that keeps the
// torrent under 2000 pieces, capped at 32 MiB.
func AutoPieceLength(total int64) int64 {
	for _, pl := range pieceLengths {
		if total < maxAutoPieces*pl {
			return pl
		}
	}
	return pieceLengths[len(pieceLengths)-1]
}

func ParsePieceLength(s string, total int64) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "auto" {
		return AutoPieceLength(total), nil
	}

	for i, name := range pieceLengthNames {
		if name == s {
			return pieceLengths[i], nil
		}
	}

	return 0, fmt.Errorf("invalid piece size %q (choose from %s)", s, strings.Join(PieceLengthNames(), ", "))
}

// PieceCount is the number of pieces total bytes split into.
func PieceCount(total, pieceLength int64) int64 {
	if total <= 0 || pieceLength <= 0 {
		return 0
	}
	return (total + pieceLength - 1) / pieceLength
}
