package bencode

import (
	"bytes"
	"math/big"
	"strconv"
)

// Decode parses exactly one value from data. Malformed input is never
// truncated silently: any defect, including bytes left over after the value,
// yields a *DecodeError.
func Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return Value{}, &DecodeError{Offset: 0, Err: ErrEmpty}
	}

	d := decoder{data: data}
	v, err := d.value()
	if err != nil {
		return Value{}, err
	}

	if d.pos != len(d.data) {
		return Value{}, d.fail(ErrTrailingData)
	}

	return v, nil
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) fail(err error) error {
	return &DecodeError{Offset: d.pos, Err: err}
}

func (d *decoder) value() (Value, error) {
	if d.pos >= len(d.data) {
		return Value{}, d.fail(ErrUnexpectedEOF)
	}

	switch c := d.data[d.pos]; {
	case c == 'i':
		n, err := d.integer()
		if err != nil {
			return Value{}, err
		}
		return Value{kind: Integer, num: n}, nil
	case c == 'l':
		return d.list()
	case c == 'd':
		return d.dict()
	case c >= '0' && c <= '9':
		s, err := d.string()
		if err != nil {
			return Value{}, err
		}
		return Str(s), nil
	}

	return Value{}, d.fail(ErrUnknownMarker)
}

func (d *decoder) integer() (*big.Int, error) {
	start := d.pos
	d.pos++

	end := bytes.IndexByte(d.data[d.pos:], 'e')
	if end < 0 {
		d.pos = len(d.data)
		return nil, d.fail(ErrUnexpectedEOF)
	}

	digits := d.data[d.pos : d.pos+end]
	if !validInteger(digits) {
		return nil, &DecodeError{Offset: start, Err: ErrInvalidInteger}
	}

	n, ok := new(big.Int).SetString(string(digits), 10)
	if !ok {
		return nil, &DecodeError{Offset: start, Err: ErrInvalidInteger}
	}

	d.pos += end + 1
	return n, nil
}

// validInteger rejects empty numbers, stray characters, leading zeros and -0.
func validInteger(b []byte) bool {
	if len(b) > 0 && b[0] == '-' {
		b = b[1:]
		if len(b) > 0 && b[0] == '0' {
			return false
		}
	}
	if len(b) == 0 {
		return false
	}
	if b[0] == '0' && len(b) > 1 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (d *decoder) string() (string, error) {
	start := d.pos

	colon := -1
	for i := d.pos; i < len(d.data); i++ {
		c := d.data[i]
		if c == ':' {
			colon = i
			break
		}
		if c < '0' || c > '9' {
			d.pos = i
			return "", d.fail(ErrInvalidLength)
		}
	}
	if colon < 0 {
		d.pos = len(d.data)
		return "", d.fail(ErrUnexpectedEOF)
	}

	prefix := d.data[start:colon]
	if len(prefix) > 1 && prefix[0] == '0' {
		return "", &DecodeError{Offset: start, Err: ErrInvalidLength}
	}

	n, err := strconv.ParseUint(string(prefix), 10, 63)
	if err != nil {
		return "", &DecodeError{Offset: start, Err: ErrInvalidLength}
	}

	d.pos = colon + 1
	if n > uint64(len(d.data)-d.pos) {
		d.pos = len(d.data)
		return "", d.fail(ErrUnexpectedEOF)
	}

	s := string(d.data[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

func (d *decoder) list() (Value, error) {
	d.pos++

	items := []Value{}
	for {
		if d.pos >= len(d.data) {
			return Value{}, d.fail(ErrUnexpectedEOF)
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			return Value{kind: List, list: items}, nil
		}

		item, err := d.value()
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
}

func (d *decoder) dict() (Value, error) {
	d.pos++

	dict := NewDict()
	for {
		if d.pos >= len(d.data) {
			return Value{}, d.fail(ErrUnexpectedEOF)
		}

		c := d.data[d.pos]
		if c == 'e' {
			d.pos++
			return DictValue(dict), nil
		}
		if c < '0' || c > '9' {
			return Value{}, d.fail(ErrInvalidKey)
		}

		keyStart := d.pos
		key, err := d.string()
		if err != nil {
			return Value{}, err
		}
		if dict.Has(key) {
			return Value{}, &DecodeError{Offset: keyStart, Err: ErrDuplicateKey}
		}

		v, err := d.value()
		if err != nil {
			return Value{}, err
		}
		dict.Set(key, v)
	}
}
