package metadata

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/danferreira/gtmake/internal/bencode"
	"github.com/danferreira/gtmake/internal/fileset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleFileTorrent(t *testing.T) {
	root := writeTree(t, map[string]string{"file_1.txt": "0123456789abcdefXYZ"})
	path := filepath.Join(root, "file_1.txt")
	files, err := fileset.Walk(path, -1)
	require.NoError(t, err)

	info, err := BuildInfo(context.Background(), Layout{Root: path, Files: files, Single: true}, InfoOptions{
		PieceLength: 16,
		Private:     true,
		Source:      "SRC",
	})
	require.NoError(t, err)
	doc := NewDocument(info, DocumentOptions{Trackers: [][]string{{"http://localhost:8000/announce"}}, Now: fixedNow})

	out := filepath.Join(t.TempDir(), "single_file.torrent")
	require.NoError(t, Write(out, doc))

	metadata, err := Parse(out)

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/announce", metadata.Announce)
	assert.Nil(t, metadata.AnnounceList)
	assert.Equal(t, "file_1.txt", metadata.Info.Name)
	assert.Equal(t, 1, len(metadata.Info.Files))
	assert.Equal(t, 2, len(metadata.Info.Pieces))
	assert.EqualValues(t, 16, metadata.Info.PieceLength)
	assert.Equal(t, "file_1.txt", metadata.Info.Files[0].Path)
	assert.EqualValues(t, 19, metadata.Info.TotalLength())
	assert.True(t, metadata.Info.Private)
	assert.Equal(t, "SRC", metadata.Info.Source)
	assert.Equal(t, fixedNow().Unix(), metadata.CreationDate)

	expectedHash, err := doc.InfoHash()
	require.NoError(t, err)
	assert.Equal(t, expectedHash, hex.EncodeToString(metadata.Info.InfoHash[:]))
}

func TestParseMultiFileTorrent(t *testing.T) {
	doc := sourceDocument(t)
	out := filepath.Join(t.TempDir(), "multi_files.torrent")
	require.NoError(t, Write(out, doc))

	metadata, err := Parse(out)

	require.NoError(t, err)
	assert.Equal(t, "http://a", metadata.Announce)
	assert.Equal(t, [][]string{{"http://a"}, {"http://b"}}, metadata.AnnounceList)
	assert.Equal(t, "root", metadata.Info.Name)
	assert.Equal(t, 2, len(metadata.Info.Files))
	assert.Equal(t, 3, len(metadata.Info.Pieces))
	assert.EqualValues(t, 4, metadata.Info.PieceLength)
	assert.Equal(t, filepath.Join("root", "a.txt"), metadata.Info.Files[0].Path)
	assert.Equal(t, filepath.Join("root", "sub", "b.txt"), metadata.Info.Files[1].Path)
	assert.Equal(t, "someone", metadata.CreatedBy)
	assert.Equal(t, "original comment", metadata.Comment)

	expectedHash, err := doc.InfoHash()
	require.NoError(t, err)
	assert.Equal(t, expectedHash, hex.EncodeToString(metadata.Info.InfoHash[:]))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.torrent"))
	var accessErr *fileset.AccessError
	assert.ErrorAs(t, err, &accessErr)

	bad := filepath.Join(t.TempDir(), "bad.torrent")
	require.NoError(t, os.WriteFile(bad, []byte("d4:infod6:pieces3:abcee"), 0644))
	_, err = Parse(bad)
	var invalid *InvalidDocumentError
	assert.ErrorAs(t, err, &invalid)
}

// fileEntries replaces the files list of info with one entry per path,
// keeping the lengths of the source layout.
func fileEntries(info *bencode.Dict, paths ...[]string) {
	lengths := []int64{6, 5}
	var list []bencode.Value
	for i, p := range paths {
		entry := bencode.NewDict()
		entry.Set(KeyLength, bencode.Int(lengths[i%len(lengths)]))
		entry.Set(KeyPath, bencode.Strings(p...))
		list = append(list, bencode.DictValue(entry))
	}
	info.Set(KeyFiles, bencode.NewList(list...))
}

func TestParseInvalidDocuments(t *testing.T) {
	tests := map[string]func(info *bencode.Dict){
		"negative piece length": func(info *bencode.Dict) { info.Set(KeyPieceLength, bencode.Int(-16384)) },
		"zero piece length":     func(info *bencode.Dict) { info.Set(KeyPieceLength, bencode.Int(0)) },
		"too many pieces":       func(info *bencode.Dict) { info.Set(KeyPieceLength, bencode.Int(1<<20)) },
		"too few pieces":        func(info *bencode.Dict) { info.Set(KeyPieces, bencode.Bytes(make([]byte, 20))) },
		"negative file length": func(info *bencode.Dict) {
			entry := bencode.NewDict()
			entry.Set(KeyLength, bencode.Int(-1))
			entry.Set(KeyPath, bencode.Strings("a.txt"))
			info.Set(KeyFiles, bencode.NewList(bencode.DictValue(entry)))
		},
		"parent segments": func(info *bencode.Dict) {
			info.Set(KeyName, bencode.Str("data"))
			fileEntries(info, []string{"..", "..", "secret.txt"}, []string{"b.txt"})
		},
		"current segment":    func(info *bencode.Dict) { fileEntries(info, []string{".", "a.txt"}, []string{"b.txt"}) },
		"empty segment":      func(info *bencode.Dict) { fileEntries(info, []string{"", "a.txt"}, []string{"b.txt"}) },
		"absolute segment":   func(info *bencode.Dict) { fileEntries(info, []string{"/etc/passwd"}, []string{"b.txt"}) },
		"embedded separator": func(info *bencode.Dict) { fileEntries(info, []string{"sub/../../x"}, []string{"b.txt"}) },
		"backslash":          func(info *bencode.Dict) { fileEntries(info, []string{`..\x`}, []string{"b.txt"}) },
		"empty path":         func(info *bencode.Dict) { fileEntries(info, []string{}, []string{"b.txt"}) },
		"parent name":        func(info *bencode.Dict) { info.Set(KeyName, bencode.Str("..")) },
		"empty name":         func(info *bencode.Dict) { info.Set(KeyName, bencode.Str("")) },
		"absolute name":      func(info *bencode.Dict) { info.Set(KeyName, bencode.Str("/tmp/root")) },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			doc := sourceDocument(t)
			mutate(doc.Info())
			path := filepath.Join(t.TempDir(), "bad.torrent")
			require.NoError(t, Write(path, doc))

			m, err := Parse(path)

			var invalid *InvalidDocumentError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, path, invalid.Path)
			assert.Nil(t, m)
		})
	}
}

func TestParseAcceptsRenamedSegments(t *testing.T) {
	doc := sourceDocument(t)
	fileEntries(doc.Info(), []string{"..a", "b.."}, []string{"sub", ".hidden"})
	path := filepath.Join(t.TempDir(), "ok.torrent")
	require.NoError(t, Write(path, doc))

	m, err := Parse(path)

	require.NoError(t, err)
	require.Len(t, m.Info.Files, 2)
	assert.Equal(t, filepath.Join("root", "..a", "b.."), m.Info.Files[0].Path)
	assert.Equal(t, filepath.Join("root", "sub", ".hidden"), m.Info.Files[1].Path)
}

func TestTotalLength(t *testing.T) {
	metadata := Metadata{
		Info: Info{
			Files: []FileInfo{
				{
					Length: 1024000,
				},
				{
					Length: 512000,
				},
			},
		},
	}

	assert.EqualValues(t, 1536000, metadata.Info.TotalLength())
}

func TestPieceSize(t *testing.T) {
	info := Info{PieceLength: 4, Files: []FileInfo{{Length: 6}, {Length: 5}}}

	assert.EqualValues(t, 4, info.PieceSize(0))
	assert.EqualValues(t, 4, info.PieceSize(1))
	assert.EqualValues(t, 3, info.PieceSize(2))
}
