package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/x448/float16"
)

// Encoder writes CBOR data items to an io.Writer. Each method emits one
// complete header (plus payload where applicable) using the smallest
// header width that can represent its argument. The only failure mode is
// a sink write error; no value passed to an Encoder is unrepresentable.
type Encoder struct {
	w       io.Writer
	scratch [9]byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) write(b []byte) error {
	if _, err := e.w.Write(b); err != nil {
		return &EncodeError{Kind: KindSink, Err: err}
	}
	return nil
}

func (e *Encoder) writeHeader(m Major, arg uint64) error {
	s := e.scratch[:]
	hb := byte(m) << 5
	switch {
	case arg < 24:
		s[0] = hb | byte(arg)
		return e.write(s[:1])
	case arg <= math.MaxUint8:
		s[0] = hb | 24
		s[1] = byte(arg)
		return e.write(s[:2])
	case arg <= math.MaxUint16:
		s[0] = hb | 25
		binary.BigEndian.PutUint16(s[1:], uint16(arg))
		return e.write(s[:3])
	case arg <= math.MaxUint32:
		s[0] = hb | 26
		binary.BigEndian.PutUint32(s[1:], uint32(arg))
		return e.write(s[:5])
	default:
		s[0] = hb | 27
		binary.BigEndian.PutUint64(s[1:], arg)
		return e.write(s[:9])
	}
}

func (e *Encoder) writeByte(b byte) error {
	e.scratch[0] = b
	return e.write(e.scratch[:1])
}

// Uint encodes an unsigned integer.
func (e *Encoder) Uint(v uint64) error {
	return e.writeHeader(MajorUint, v)
}

// NegUint encodes the negative integer -1-v, covering the full range down
// to -2^64.
func (e *Encoder) NegUint(v uint64) error {
	return e.writeHeader(MajorNegInt, v)
}

// Int encodes a signed integer using the unsigned or negative major type
// as appropriate.
func (e *Encoder) Int(v int64) error {
	if v >= 0 {
		return e.writeHeader(MajorUint, uint64(v))
	}
	return e.writeHeader(MajorNegInt, uint64(-(v + 1)))
}

// Bytes encodes a definite-length byte string.
func (e *Encoder) Bytes(b []byte) error {
	if err := e.writeHeader(MajorBytes, uint64(len(b))); err != nil {
		return err
	}
	return e.write(b)
}

// Text encodes a definite-length text string. The string must be valid
// UTF-8; the encoder does not re-validate what Go guarantees for string
// literals and leaves hostile callers to their peers' decoders.
func (e *Encoder) Text(s string) error {
	if err := e.writeHeader(MajorText, uint64(len(s))); err != nil {
		return err
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		return &EncodeError{Kind: KindSink, Err: err}
	}
	return nil
}

// Array encodes a definite-length array header for n elements. The caller
// encodes the elements afterwards.
func (e *Encoder) Array(n int) error {
	return e.writeHeader(MajorArray, uint64(n))
}

// Map encodes a definite-length map header for n key/value pairs. The
// caller encodes alternating keys and values afterwards.
func (e *Encoder) Map(n int) error {
	return e.writeHeader(MajorMap, uint64(n))
}

// BeginArray opens an indefinite-length array. Close it with Break.
func (e *Encoder) BeginArray() error {
	return e.writeByte(byte(MajorArray)<<5 | infoIndefinite)
}

// BeginMap opens an indefinite-length map. Close it with Break.
func (e *Encoder) BeginMap() error {
	return e.writeByte(byte(MajorMap)<<5 | infoIndefinite)
}

// BeginBytes opens an indefinite-length byte string. Each chunk is written
// with Bytes; close with Break.
func (e *Encoder) BeginBytes() error {
	return e.writeByte(byte(MajorBytes)<<5 | infoIndefinite)
}

// BeginText opens an indefinite-length text string. Each chunk is written
// with Text; close with Break.
func (e *Encoder) BeginText() error {
	return e.writeByte(byte(MajorText)<<5 | infoIndefinite)
}

// Break closes the innermost open indefinite-length item.
func (e *Encoder) Break() error {
	return e.writeByte(breakByte)
}

// Tag encodes a tag header. The caller encodes the tagged item afterwards.
func (e *Encoder) Tag(num uint64) error {
	return e.writeHeader(MajorTag, num)
}

func (e *Encoder) Bool(v bool) error {
	if v {
		return e.writeByte(byte(MajorSimple)<<5 | simpleTrue)
	}
	return e.writeByte(byte(MajorSimple)<<5 | simpleFalse)
}

func (e *Encoder) Null() error {
	return e.writeByte(byte(MajorSimple)<<5 | simpleNull)
}

func (e *Encoder) Undefined() error {
	return e.writeByte(byte(MajorSimple)<<5 | simpleUndefined)
}

// Simple encodes an unassigned simple value. Values 24 through 31 have no
// valid two-byte form and are rejected.
func (e *Encoder) Simple(v uint8) error {
	if v < 24 {
		return e.writeByte(byte(MajorSimple)<<5 | v)
	}
	if v < 32 {
		return &EncodeError{Kind: KindUnrepresentable, Detail: "simple values 24-31 are reserved"}
	}
	e.scratch[0] = byte(MajorSimple)<<5 | 24
	e.scratch[1] = v
	return e.write(e.scratch[:2])
}

// Float16 encodes a half-precision float. The encoder never narrows or
// widens on its own; precision choice belongs to the caller.
func (e *Encoder) Float16(v float16.Float16) error {
	e.scratch[0] = byte(MajorSimple)<<5 | 25
	binary.BigEndian.PutUint16(e.scratch[1:], v.Bits())
	return e.write(e.scratch[:3])
}

// Float32 encodes a single-precision float.
func (e *Encoder) Float32(v float32) error {
	e.scratch[0] = byte(MajorSimple)<<5 | 26
	binary.BigEndian.PutUint32(e.scratch[1:], math.Float32bits(v))
	return e.write(e.scratch[:5])
}

// Float64 encodes a double-precision float.
func (e *Encoder) Float64(v float64) error {
	e.scratch[0] = byte(MajorSimple)<<5 | 27
	binary.BigEndian.PutUint64(e.scratch[1:], math.Float64bits(v))
	return e.write(e.scratch[:9])
}
