package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"log/slog"

	"github.com/danferreira/gtmake/internal/bitfield"
	"github.com/danferreira/gtmake/internal/metadata"
)

type Manager struct {
	storage io.ReaderAt
}

func NewManager(storage io.ReaderAt) *Manager {
	return &Manager{
		storage: storage,
	}
}

// ScanDisk hashes every piece and sets the bit of each one that matches.
// Pieces that cannot be read count as missing. progress, when not nil, is
// called with the size of each piece checked.
func (mgr *Manager) ScanDisk(ctx context.Context, m *metadata.Metadata, progress func(n int64)) (bitfield.Bitfield, error) {
	pieceHashes := m.Info.Pieces
	bf := bitfield.New(len(pieceHashes))
	if m.Info.PieceLength <= 0 {
		return nil, fmt.Errorf("invalid piece length %d", m.Info.PieceLength)
	}
	buf := make([]byte, min(m.Info.PieceLength, m.Info.TotalLength()))

	for index, ph := range pieceHashes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		size := m.Info.PieceSize(index)
		if size <= 0 {
			continue
		}
		piece := buf[:size]

		_, err := mgr.storage.ReadAt(piece, int64(index)*m.Info.PieceLength)
		if err != nil {
			slog.Debug("piece unreadable", "index", index, "error", err)
		} else if checkIntegrity(ph, piece) {
			bf.SetPiece(index)
		}

		if progress != nil {
			progress(size)
		}
	}

	slog.Info("scan finished", "name", m.Info.Name, "pieces", len(pieceHashes), "matched", bf.Count())
	return bf, nil
}

func checkIntegrity(expectedHash [20]byte, data []byte) bool {
	hash := sha1.Sum(data)
	return bytes.Equal(hash[:], expectedHash[:])
}
