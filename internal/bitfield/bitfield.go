// Package bitfield tracks which pieces of a torrent are present, one bit per
// piece with the high bit of the first byte standing for piece 0.
package bitfield

import "math/bits"

type Bitfield []byte

// New returns an empty bitfield large enough for n pieces.
func New(n int) Bitfield {
	return make(Bitfield, (n+7)/8)
}

func (bf Bitfield) HasPiece(index int) bool {
	byteIndex := index / 8
	if index < 0 || byteIndex >= len(bf) {
		return false
	}

	bitOffset := 7 - (index % 8)
	return bf[byteIndex]&(1<<bitOffset) != 0
}

func (bf Bitfield) SetPiece(index int) {
	byteIndex := index / 8

	if index < 0 || byteIndex >= len(bf) {
		return
	}

	bitOffset := 7 - (index % 8)
	bf[byteIndex] |= (1 << bitOffset)
}

// Count returns the number of pieces set.
func (bf Bitfield) Count() int {
	var n int
	for _, b := range bf {
		n += bits.OnesCount8(b)
	}
	return n
}

// Missing lists the indexes below n that are not set.
func (bf Bitfield) Missing(n int) []int {
	var missing []int
	for i := range n {
		if !bf.HasPiece(i) {
			missing = append(missing, i)
		}
	}
	return missing
}
