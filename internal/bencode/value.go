// Package bencode implements the bencoding used by .torrent files.
//
// Values form a closed tree of four kinds: integers, byte strings, lists and
// dictionaries. Dictionaries keep insertion order in memory; the encoder
// always writes keys sorted by raw byte value, which is what makes the
// encoding canonical.
package bencode

import (
	"math/big"
)

type Kind uint8

const (
	Invalid Kind = iota
	Integer
	String
	List
	Dictionary
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case String:
		return "string"
	case List:
		return "list"
	case Dictionary:
		return "dictionary"
	}

	return "invalid"
}

// Value is one node of a bencode tree. The zero Value is Invalid and cannot
// be encoded.
type Value struct {
	kind Kind
	num  *big.Int
	str  string
	list []Value
	dict *Dict
}

func Int(n int64) Value {
	return Value{kind: Integer, num: big.NewInt(n)}
}

// BigInt copies n. A nil n yields an Integer that fails to encode.
func BigInt(n *big.Int) Value {
	if n == nil {
		return Value{kind: Integer}
	}
	return Value{kind: Integer, num: new(big.Int).Set(n)}
}

// Str builds a byte string from s. Go strings are byte sequences, so s does
// not have to be valid UTF-8.
func Str(s string) Value {
	return Value{kind: String, str: s}
}

func Bytes(b []byte) Value {
	return Value{kind: String, str: string(b)}
}

func NewList(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: List, list: items}
}

// Strings builds a list of byte strings.
func Strings(items ...string) Value {
	list := make([]Value, 0, len(items))
	for _, s := range items {
		list = append(list, Str(s))
	}
	return Value{kind: List, list: list}
}

func DictValue(d *Dict) Value {
	return Value{kind: Dictionary, dict: d}
}

func (v Value) Kind() Kind {
	return v.kind
}

// AsInt returns the integer if v is an Integer that fits in an int64.
func (v Value) AsInt() (int64, bool) {
	if v.kind != Integer || v.num == nil || !v.num.IsInt64() {
		return 0, false
	}
	return v.num.Int64(), true
}

func (v Value) AsBigInt() (*big.Int, bool) {
	if v.kind != Integer || v.num == nil {
		return nil, false
	}
	return new(big.Int).Set(v.num), true
}

// AsString returns the raw bytes of a String as a Go string.
func (v Value) AsString() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.str, true
}

func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != String {
		return nil, false
	}
	return []byte(v.str), true
}

func (v Value) AsList() ([]Value, bool) {
	if v.kind != List {
		return nil, false
	}
	return v.list, true
}

func (v Value) AsDict() (*Dict, bool) {
	if v.kind != Dictionary || v.dict == nil {
		return nil, false
	}
	return v.dict, true
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case Integer:
		return BigInt(v.num)
	case List:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.Clone()
		}
		return Value{kind: List, list: items}
	case Dictionary:
		if v.dict == nil {
			return v
		}
		return DictValue(v.dict.Clone())
	}

	return v
}

// Equal reports whether a and b hold the same tree. Dictionary insertion
// order is ignored.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case Integer:
		if a.num == nil || b.num == nil {
			return a.num == b.num
		}
		return a.num.Cmp(b.num) == 0
	case String:
		return a.str == b.str
	case List:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case Dictionary:
		if a.dict == nil || b.dict == nil {
			return a.dict == b.dict
		}
		if a.dict.Len() != b.dict.Len() {
			return false
		}
		for _, k := range a.dict.keys {
			bv, ok := b.dict.Get(k)
			if !ok || !Equal(a.dict.values[k], bv) {
				return false
			}
		}
		return true
	}

	return true
}
