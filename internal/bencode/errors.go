package bencode

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty          = errors.New("empty data")
	ErrUnexpectedEOF  = errors.New("unexpected end of input")
	ErrInvalidLength  = errors.New("malformed string length prefix")
	ErrInvalidInteger = errors.New("malformed integer")
	ErrUnknownMarker  = errors.New("unrecognized type marker")
	ErrInvalidKey     = errors.New("dictionary key is not a string")
	ErrDuplicateKey   = errors.New("duplicate dictionary key")
	ErrTrailingData   = errors.New("trailing data after value")
)

// DecodeError reports where in the input decoding failed. Err is one of the
// sentinel errors above.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bencode: %v at offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError is returned for values that are not one of the four kinds, or
// that were built with a nil payload.
type EncodeError struct {
	Kind   Kind
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("bencode: cannot encode %s value: %s", e.Kind, e.Reason)
}
