package wire

import (
	"fmt"

	"github.com/pkg/errors"
)

// DecodeErrorKind classifies decode failures.
type DecodeErrorKind int

const (
	// KindEndOfInput means the source was exhausted before a complete
	// item header or payload was read.
	KindEndOfInput DecodeErrorKind = iota
	// KindReservedIndicator means a header carried one of the reserved
	// additional-information values 28, 29 or 30.
	KindReservedIndicator
	// KindInvalidUTF8 means a text string payload was not valid UTF-8.
	KindInvalidUTF8
	// KindTypeMismatch means the item's major type did not match what
	// the caller required.
	KindTypeMismatch
	// KindLengthOverflow means a declared length or nesting depth
	// exceeded the decoder's configured limits.
	KindLengthOverflow
	// KindMalformedIndefinite means a break marker appeared where none
	// was expected, or an indefinite-length string contained a chunk of
	// the wrong major type.
	KindMalformedIndefinite
	// KindSource wraps a failure reported by the byte source itself.
	KindSource
)

func (k DecodeErrorKind) String() string {
	switch k {
	case KindEndOfInput:
		return "end of input"
	case KindReservedIndicator:
		return "reserved indicator"
	case KindInvalidUTF8:
		return "invalid UTF-8"
	case KindTypeMismatch:
		return "type mismatch"
	case KindLengthOverflow:
		return "length overflow"
	case KindMalformedIndefinite:
		return "malformed indefinite item"
	case KindSource:
		return "source error"
	default:
		return "unknown"
	}
}

// DecodeError is the failure type returned by every decode operation.
// Offset is the number of bytes consumed before the failure.
type DecodeError struct {
	Kind   DecodeErrorKind
	Offset int64
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("cwire: %s at offset %d", e.Kind, e.Offset)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError builds a DecodeError for layers above the codec engine
// that need to surface failures in the same taxonomy, such as a bridge
// reporting a type mismatch against the caller's target type.
func NewDecodeError(kind DecodeErrorKind, offset int64, detail string) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Detail: detail}
}

// DecodeKind extracts the DecodeErrorKind from err, unwrapping any
// annotation layers first. ok is false when err is not a DecodeError.
func DecodeKind(err error) (kind DecodeErrorKind, ok bool) {
	de, ok := errors.Cause(err).(*DecodeError)
	if !ok {
		return 0, false
	}
	return de.Kind, true
}

// IsEndOfInput reports whether err is a DecodeError of kind KindEndOfInput.
func IsEndOfInput(err error) bool {
	k, ok := DecodeKind(err)
	return ok && k == KindEndOfInput
}

// IsTypeMismatch reports whether err is a DecodeError of kind
// KindTypeMismatch.
func IsTypeMismatch(err error) bool {
	k, ok := DecodeKind(err)
	return ok && k == KindTypeMismatch
}

// EncodeErrorKind classifies encode failures.
type EncodeErrorKind int

const (
	// KindSink wraps a write failure reported by the byte sink.
	KindSink EncodeErrorKind = iota
	// KindUnrepresentable means the value cannot be expressed on the
	// wire as requested. The codec engine itself never produces it; it
	// exists for bridge-level policies such as refusing an oversized
	// integer without an explicit bignum tag.
	KindUnrepresentable
)

func (k EncodeErrorKind) String() string {
	switch k {
	case KindSink:
		return "sink error"
	case KindUnrepresentable:
		return "unrepresentable value"
	default:
		return "unknown"
	}
}

// EncodeError is the failure type returned by every encode operation.
type EncodeError struct {
	Kind   EncodeErrorKind
	Detail string
	Err    error
}

func (e *EncodeError) Error() string {
	msg := "cwire: " + e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// NewEncodeError builds an EncodeError for layers above the codec engine.
func NewEncodeError(kind EncodeErrorKind, detail string) *EncodeError {
	return &EncodeError{Kind: kind, Detail: detail}
}

// EncodeKind extracts the EncodeErrorKind from err, unwrapping any
// annotation layers first. ok is false when err is not an EncodeError.
func EncodeKind(err error) (kind EncodeErrorKind, ok bool) {
	ee, ok := errors.Cause(err).(*EncodeError)
	if !ok {
		return 0, false
	}
	return ee.Kind, true
}
