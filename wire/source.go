package wire

import (
	"io"
)

// Ref classifies how long the bytes returned by a Fill call remain valid.
type Ref int

const (
	// RefShort bytes are valid only until the next call on the Source.
	// Callers must copy them before issuing another Fill or Advance.
	RefShort Ref = iota
	// RefLong bytes stay valid for the lifetime of the whole input and
	// may be retained without copying.
	RefLong
)

// Source supplies lookahead bytes to a Decoder without mandating a
// buffering strategy.
type Source interface {
	// Fill returns at least one unconsumed byte. It may return fewer
	// than want bytes, in which case the caller should consume what it
	// was given and ask again. Fill returns io.EOF once the input is
	// exhausted, and must never return a zero-length slice alongside a
	// nil error.
	Fill(want int) ([]byte, Ref, error)

	// Advance commits consumption of n bytes previously returned by
	// Fill. Advancing past bytes that were never returned is a caller
	// bug, not a data error.
	Advance(n int)
}

// SliceSource reads from a byte slice held entirely in memory. All bytes
// it returns alias the original slice and are classified RefLong, which
// lets the Decoder hand out zero-copy string payloads.
type SliceSource struct {
	buf []byte
	off int
}

var _ Source = (*SliceSource)(nil)

func NewSliceSource(b []byte) *SliceSource {
	return &SliceSource{buf: b}
}

func (s *SliceSource) Fill(want int) ([]byte, Ref, error) {
	if s.off >= len(s.buf) {
		return nil, RefLong, io.EOF
	}
	return s.buf[s.off:], RefLong, nil
}

func (s *SliceSource) Advance(n int) {
	s.off += n
}

const readerSourceBufLen = 4096

// ReaderSource adapts an io.Reader. Bytes it returns live in an internal
// buffer that is reused across calls, so they are classified RefShort and
// the Decoder copies any payload it needs to retain.
type ReaderSource struct {
	r          io.Reader
	buf        []byte
	start, end int
}

var _ Source = (*ReaderSource)(nil)

func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{
		r:   r,
		buf: make([]byte, readerSourceBufLen),
	}
}

func (s *ReaderSource) Fill(want int) ([]byte, Ref, error) {
	if s.end-s.start >= want && s.end > s.start {
		return s.buf[s.start:s.end], RefShort, nil
	}
	if s.start > 0 {
		copy(s.buf, s.buf[s.start:s.end])
		s.end -= s.start
		s.start = 0
	}
	for s.end < len(s.buf) {
		n, err := s.r.Read(s.buf[s.end:])
		s.end += n
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, RefShort, err
		}
		if s.end >= want {
			break
		}
	}
	if s.end == 0 {
		return nil, RefShort, io.EOF
	}
	return s.buf[:s.end], RefShort, nil
}

func (s *ReaderSource) Advance(n int) {
	s.start += n
	if s.start == s.end {
		s.start = 0
		s.end = 0
	}
}
