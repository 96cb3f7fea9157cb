package fileset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
}

func TestWalk(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "b.txt"), 2)
	writeFile(t, filepath.Join(tmp, "a", "z.txt"), 3)
	writeFile(t, filepath.Join(tmp, "a", "deep", "x.txt"), 4)
	writeFile(t, filepath.Join(tmp, "a.txt"), 1)

	tests := map[string]struct {
		maxDepth int
		expected []File
	}{
		"unlimited": {-1, []File{
			{filepath.Join(tmp, "a", "deep", "x.txt"), 4},
			{filepath.Join(tmp, "a", "z.txt"), 3},
			{filepath.Join(tmp, "a.txt"), 1},
			{filepath.Join(tmp, "b.txt"), 2},
		}},
		"top level only": {0, []File{
			{filepath.Join(tmp, "a.txt"), 1},
			{filepath.Join(tmp, "b.txt"), 2},
		}},
		"one level": {1, []File{
			{filepath.Join(tmp, "a", "z.txt"), 3},
			{filepath.Join(tmp, "a.txt"), 1},
			{filepath.Join(tmp, "b.txt"), 2},
		}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			files, err := Walk(tmp, tt.maxDepth)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, files)
		})
	}
}

func TestWalkSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.mkv")
	writeFile(t, path, 10)

	files, err := Walk(path, -1)
	require.NoError(t, err)
	assert.Equal(t, []File{{Path: path, Length: 10}}, files)
	assert.EqualValues(t, 10, TotalLength(files))
}

func TestWalkErrors(t *testing.T) {
	tmp := t.TempDir()

	_, err := Walk(filepath.Join(tmp, "missing"), -1)
	var accessErr *AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, filepath.Join(tmp, "missing"), accessErr.Path)

	_, err = Walk(tmp, -1)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestSegments(t *testing.T) {
	root := filepath.Join("data", "album")

	segs, err := Segments(root, filepath.Join(root, "cd1", "01.flac"))
	require.NoError(t, err)
	assert.Equal(t, []string{"cd1", "01.flac"}, segs)

	_, err = Segments(root, filepath.Join("data", "other.txt"))
	assert.Error(t, err)
}
