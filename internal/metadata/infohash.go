package metadata

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/danferreira/gtmake/internal/bencode"
)

// InfoHashBytes returns the SHA-1 of the canonical encoding of info.
func InfoHashBytes(info *bencode.Dict) ([20]byte, error) {
	data, err := bencode.Encode(bencode.DictValue(info))
	if err != nil {
		return [20]byte{}, fmt.Errorf("encode info: %w", err)
	}
	return sha1.Sum(data), nil
}

// InfoHash returns the torrent identity as lower-case hex.
func InfoHash(info *bencode.Dict) (string, error) {
	sum, err := InfoHashBytes(info)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}

func (d *Document) InfoHash() (string, error) {
	return InfoHash(d.Info())
}

// Picker returns an index in [0, n).
type Picker func(n int) int

// Magnet builds a magnet link for d. One tracker per tier is chosen with
// pick, so repeated calls may name different trackers. A nil pick draws
// from math/rand/v2.
//
// Values are written as they are, without URL escaping.
func (d *Document) Magnet(pick Picker) (string, error) {
	hash, err := d.InfoHash()
	if err != nil {
		return "", err
	}
	if pick == nil {
		pick = rand.IntN
	}

	var b strings.Builder
	fmt.Fprintf(&b, "magnet:?dn=%s&xt=urn:btih:%s&xl=%d", d.Name(), hash, d.TotalLength())

	if tiers := d.AnnounceList(); len(tiers) > 0 {
		for _, tier := range tiers {
			b.WriteString("&tr=")
			b.WriteString(tier[pick(len(tier))])
		}
	} else if a := d.Announce(); a != "" {
		b.WriteString("&tr=")
		b.WriteString(a)
	}

	return b.String(), nil
}
