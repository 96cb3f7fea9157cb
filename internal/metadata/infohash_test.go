package metadata

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/danferreira/gtmake/internal/bencode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoHashCanonical(t *testing.T) {
	info := bencode.NewDict()
	info.Set(KeyPieces, bencode.Str(""))
	info.Set(KeyName, bencode.Str("a"))
	info.Set(KeyPieceLength, bencode.Int(16))
	info.Set(KeyLength, bencode.Int(1))

	sum := sha1.Sum([]byte("d6:lengthi1e4:name1:a12:piece lengthi16e6:pieces0:e"))

	hash, err := InfoHash(info)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), hash)
	assert.Equal(t, strings.ToLower(hash), hash)

	again, err := InfoHash(info.Clone())
	require.NoError(t, err)
	assert.Equal(t, hash, again)
}

func TestInfoHashSensitivity(t *testing.T) {
	doc := sourceDocument(t)
	base, err := doc.InfoHash()
	require.NoError(t, err)

	tests := map[string]func(info *bencode.Dict){
		"pieces byte": func(info *bencode.Dict) {
			p, _ := info.GetString(KeyPieces)
			b := []byte(p)
			b[7] ^= 1
			info.Set(KeyPieces, bencode.Bytes(b))
		},
		"name":    func(info *bencode.Dict) { info.Set(KeyName, bencode.Str("Root")) },
		"private": func(info *bencode.Dict) { info.Set(KeyPrivate, bencode.Int(0)) },
		"salt":    func(info *bencode.Dict) { info.Set(KeySalt, bencode.Str("originaL")) },
		"extra":   func(info *bencode.Dict) { info.Set("x", bencode.Int(0)) },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := doc.Clone()
			mutate(c.Info())

			hash, err := c.InfoHash()
			require.NoError(t, err)
			assert.NotEqual(t, base, hash)
		})
	}

	// Keys outside info do not count.
	c := doc.Clone()
	c.Dict().Set(KeyComment, bencode.Str("different"))
	hash, err := c.InfoHash()
	require.NoError(t, err)
	assert.Equal(t, base, hash)
}

func TestMagnet(t *testing.T) {
	last := func(n int) int { return n - 1 }

	tests := map[string]struct {
		trackers [][]string
		suffix   string
	}{
		"no trackers":   {nil, ""},
		"announce only": {[][]string{{"http://a"}}, "&tr=http://a"},
		"tiers":         {[][]string{{"http://a", "http://b"}, {"udp://c"}}, "&tr=http://b&tr=udp://c"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc := sourceDocument(t)
			doc.setTrackers(tt.trackers)

			hash, err := doc.InfoHash()
			require.NoError(t, err)

			magnet, err := doc.Magnet(last)
			require.NoError(t, err)
			assert.Equal(t, "magnet:?dn=root&xt=urn:btih:"+hash+"&xl=11"+tt.suffix, magnet)
		})
	}
}

func TestMagnetRandomPick(t *testing.T) {
	doc := sourceDocument(t)
	doc.setTrackers([][]string{{"http://a", "http://b", "http://c"}})

	for range 20 {
		magnet, err := doc.Magnet(nil)
		require.NoError(t, err)

		i := strings.Index(magnet, "&tr=")
		require.NotEqual(t, -1, i)
		assert.Contains(t, []string{"http://a", "http://b", "http://c"}, magnet[i+len("&tr="):])
	}
}
