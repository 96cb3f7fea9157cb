package bencode

import (
	"bytes"
	"io"
	"slices"
	"strconv"
)

// Encode returns the canonical encoding of v: dictionary keys are written in
// ascending raw byte order regardless of insertion order.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo encodes v completely before writing it to w in one call, so w never
// sees a partial encoding.
func EncodeTo(w io.Writer, v Value) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case Integer:
		if v.num == nil {
			return &EncodeError{Kind: Integer, Reason: "nil integer"}
		}
		buf.WriteByte('i')
		buf.WriteString(v.num.String())
		buf.WriteByte('e')
	case String:
		encodeString(buf, v.str)
	case List:
		buf.WriteByte('l')
		for _, item := range v.list {
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('e')
	case Dictionary:
		if v.dict == nil {
			return &EncodeError{Kind: Dictionary, Reason: "nil dictionary"}
		}
		return encodeDict(buf, v.dict)
	default:
		return &EncodeError{Kind: v.kind, Reason: "unsupported kind"}
	}

	return nil
}

func encodeString(buf *bytes.Buffer, s string) {
	buf.WriteString(strconv.Itoa(len(s)))
	buf.WriteByte(':')
	buf.WriteString(s)
}

func encodeDict(buf *bytes.Buffer, d *Dict) error {
	// Go compares strings bytewise, which is the order the format requires.
	keys := slices.Clone(d.keys)
	slices.Sort(keys)

	buf.WriteByte('d')
	for _, k := range keys {
		encodeString(buf, k)
		if err := encodeValue(buf, d.values[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('e')

	return nil
}
