// Package codec defines the contract between the canonical text form of a
// document and its structured in-memory representation. A codec is a pure
// function pair: Decode derives structured state from text, Encode
// serializes it back. Both directions either succeed completely or fail
// with an *Error; partial results are never returned.
package codec

import "fmt"

// Codec converts between canonical text and a structured state S.
// Implementations must be stateless and deterministic: the same input
// always produces the same output, so diffs and tests stay stable.
type Codec[S any] interface {
	Decode(text string) (S, error)
	Encode(state S) (string, error)
}

// Op identifies which direction of a codec failed.
type Op string

const (
	// OpDecode marks a text-to-structured-state failure
	OpDecode Op = "decode"
	// OpEncode marks a structured-state-to-text failure
	OpEncode Op = "encode"
)

// Error reports canonical text that cannot be decoded or structured state
// that cannot be serialized, e.g. a metadata block that is opened but
// never closed.
type Error struct {
	Op     Op
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DecodeError constructs an *Error for the decode direction
func DecodeError(reason string, err error) *Error {
	return &Error{Op: OpDecode, Reason: reason, Err: err}
}

// EncodeError constructs an *Error for the encode direction
func EncodeError(reason string, err error) *Error {
	return &Error{Op: OpEncode, Reason: reason, Err: err}
}
