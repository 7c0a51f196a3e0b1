package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the demo decoding packages. Callers distinguish
// failure modes with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("protocol: unsupported format")
	ErrUnknownTag        = errors.New("protocol: unknown tag")
	ErrMalformed         = errors.New("protocol: malformed data")
)

// DecodeError records which field was being decoded, and at which bit
// offset, when decoding failed. It wraps the underlying cause.
type DecodeError struct {
	Field  string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("protocol: decode %s at bit %d: %v", e.Field, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
