package wire

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/x448/float16"
)

// Default decode limits. They guard allocation against hostile declared
// lengths and runaway nesting; inputs that genuinely need more can raise
// them on the Decoder before the first read.
const (
	DefaultMaxBytesLen     = 16 * 1024 * 1024
	DefaultMaxContainerLen = 1024 * 1024
	DefaultMaxDepth        = 512
)

// Decoder parses CBOR data items from a Source, one header at a time.
// It holds no state between top-level items beyond the consumed-byte
// offset, so a single Decoder can read a whole CBOR sequence.
type Decoder struct {
	// MaxBytesLen caps the declared length of a single byte or text
	// string payload.
	MaxBytesLen uint64

	// MaxContainerLen caps the declared element count of a definite-
	// length array and the entry count of a definite-length map.
	MaxContainerLen uint64

	// MaxDepth caps nesting when the Decoder itself recurses, as in
	// Skip. Caller-driven iteration is not subject to it.
	MaxDepth int

	src     Source
	off     int64
	scratch [8]byte
}

func NewDecoder(src Source) *Decoder {
	return &Decoder{
		MaxBytesLen:     DefaultMaxBytesLen,
		MaxContainerLen: DefaultMaxContainerLen,
		MaxDepth:        DefaultMaxDepth,
		src:             src,
	}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.off
}

func (d *Decoder) errf(kind DecodeErrorKind, format string, args ...interface{}) error {
	return &DecodeError{Kind: kind, Offset: d.off, Detail: fmt.Sprintf(format, args...)}
}

func (d *Decoder) fill(want int) ([]byte, Ref, error) {
	b, ref, err := d.src.Fill(want)
	if err != nil {
		if err == io.EOF {
			return nil, ref, &DecodeError{Kind: KindEndOfInput, Offset: d.off}
		}
		return nil, ref, &DecodeError{Kind: KindSource, Offset: d.off, Err: err}
	}
	if len(b) == 0 {
		return nil, ref, d.errf(KindSource, "source returned no bytes without error")
	}
	return b, ref, nil
}

func (d *Decoder) advance(n int) {
	d.src.Advance(n)
	d.off += int64(n)
}

func (d *Decoder) readByte() (byte, error) {
	b, _, err := d.fill(1)
	if err != nil {
		return 0, err
	}
	c := b[0]
	d.advance(1)
	return c, nil
}

func (d *Decoder) readFull(dst []byte) error {
	for len(dst) > 0 {
		b, _, err := d.fill(len(dst))
		if err != nil {
			return err
		}
		n := copy(dst, b)
		d.advance(n)
		dst = dst[n:]
	}
	return nil
}

// Peek returns the next item's initial byte without consuming it.
func (d *Decoder) Peek() (byte, error) {
	b, _, err := d.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// PeekMajor returns the next item's major type without consuming it.
// The break marker reports MajorSimple.
func (d *Decoder) PeekMajor() (Major, error) {
	b, err := d.Peek()
	if err != nil {
		return 0, err
	}
	return Major(b >> 5), nil
}

type header struct {
	major Major
	info  byte
	arg   uint64
}

func (h header) indefinite() bool {
	return h.info == infoIndefinite
}

func (d *Decoder) readHeader() (header, error) {
	c, err := d.readByte()
	if err != nil {
		return header{}, err
	}
	h := header{major: Major(c >> 5), info: c & 0x1f}
	switch {
	case h.info < 24:
		h.arg = uint64(h.info)
	case h.info <= 27:
		buf := d.scratch[:1<<(h.info-24)]
		if err := d.readFull(buf); err != nil {
			return header{}, err
		}
		for _, c := range buf {
			h.arg = h.arg<<8 | uint64(c)
		}
	case h.info < 31:
		return header{}, d.errf(KindReservedIndicator, "additional-information value %d is reserved", h.info)
	default:
		switch h.major {
		case MajorBytes, MajorText, MajorArray, MajorMap, MajorSimple:
		default:
			return header{}, d.errf(KindMalformedIndefinite, "indefinite length is not valid for %s", h.major)
		}
	}
	return h, nil
}

func (d *Decoder) typeErr(want string, h header) error {
	if h.major == MajorSimple && h.indefinite() {
		return d.errf(KindMalformedIndefinite, "unexpected break marker")
	}
	return d.errf(KindTypeMismatch, "expected %s, found %s", want, h.major)
}

// ReadUint reads an unsigned integer item.
func (d *Decoder) ReadUint() (uint64, error) {
	h, err := d.readHeader()
	if err != nil {
		return 0, err
	}
	if h.major != MajorUint {
		return 0, d.typeErr("unsigned integer", h)
	}
	return h.arg, nil
}

// ReadInteger reads either integer major type, returning the magnitude and
// a sign flag. A negative result represents the value -1-mag.
func (d *Decoder) ReadInteger() (mag uint64, neg bool, err error) {
	h, err := d.readHeader()
	if err != nil {
		return 0, false, err
	}
	switch h.major {
	case MajorUint:
		return h.arg, false, nil
	case MajorNegInt:
		return h.arg, true, nil
	default:
		return 0, false, d.typeErr("integer", h)
	}
}

// ReadInt reads either integer major type into an int64.
func (d *Decoder) ReadInt() (int64, error) {
	mag, neg, err := d.ReadInteger()
	if err != nil {
		return 0, err
	}
	if neg {
		if mag > math.MaxInt64 {
			return 0, d.errf(KindTypeMismatch, "integer -1-%d overflows int64", mag)
		}
		return -1 - int64(mag), nil
	}
	if mag > math.MaxInt64 {
		return 0, d.errf(KindTypeMismatch, "integer %d overflows int64", mag)
	}
	return int64(mag), nil
}

// ReadTag reads a tag header. The caller decodes the tagged item
// afterwards.
func (d *Decoder) ReadTag() (uint64, error) {
	h, err := d.readHeader()
	if err != nil {
		return 0, err
	}
	if h.major != MajorTag {
		return 0, d.typeErr("tag", h)
	}
	return h.arg, nil
}

func (d *Decoder) ReadBool() (bool, error) {
	h, err := d.readHeader()
	if err != nil {
		return false, err
	}
	if h.major != MajorSimple || (h.info != simpleFalse && h.info != simpleTrue) {
		return false, d.typeErr("bool", h)
	}
	return h.info == simpleTrue, nil
}

func (d *Decoder) ReadNull() error {
	h, err := d.readHeader()
	if err != nil {
		return err
	}
	if h.major != MajorSimple || h.info != simpleNull {
		return d.typeErr("null", h)
	}
	return nil
}

func (d *Decoder) ReadUndefined() error {
	h, err := d.readHeader()
	if err != nil {
		return err
	}
	if h.major != MajorSimple || h.info != simpleUndefined {
		return d.typeErr("undefined", h)
	}
	return nil
}

// ReadFloat reads a half, single or double precision float item, widened
// to float64.
func (d *Decoder) ReadFloat() (float64, error) {
	h, err := d.readHeader()
	if err != nil {
		return 0, err
	}
	if h.major != MajorSimple {
		return 0, d.typeErr("float", h)
	}
	switch h.info {
	case 25:
		return float64(float16.Frombits(uint16(h.arg)).Float32()), nil
	case 26:
		return float64(math.Float32frombits(uint32(h.arg))), nil
	case 27:
		return math.Float64frombits(h.arg), nil
	default:
		return 0, d.typeErr("float", h)
	}
}

// ReadBytes reads a byte string. shared reports that the returned slice
// aliases the input buffer; it can only be true for a definite-length
// string read from a RefLong source. Indefinite-length strings are
// concatenated into an owned buffer.
func (d *Decoder) ReadBytes() ([]byte, bool, error) {
	return d.readString(MajorBytes)
}

// ReadTextBytes reads a text string as raw bytes, validating UTF-8.
// The shared flag has the same meaning as for ReadBytes.
func (d *Decoder) ReadTextBytes() ([]byte, bool, error) {
	b, shared, err := d.readString(MajorText)
	if err != nil {
		return nil, false, err
	}
	if !utf8.Valid(b) {
		return nil, false, d.errf(KindInvalidUTF8, "text string is not valid UTF-8")
	}
	return b, shared, nil
}

// ReadText reads a text string into an owned Go string.
func (d *Decoder) ReadText() (string, error) {
	b, _, err := d.ReadTextBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Decoder) readString(want Major) ([]byte, bool, error) {
	h, err := d.readHeader()
	if err != nil {
		return nil, false, err
	}
	if h.major != want {
		return nil, false, d.typeErr(want.String(), h)
	}
	if !h.indefinite() {
		return d.readSegment(h.arg)
	}
	out := []byte{}
	for {
		more, err := d.More()
		if err != nil {
			return nil, false, err
		}
		if !more {
			return out, false, nil
		}
		ch, err := d.readHeader()
		if err != nil {
			return nil, false, err
		}
		if ch.major != want {
			return nil, false, d.errf(KindMalformedIndefinite, "indefinite %s contains a %s chunk", want, ch.major)
		}
		if ch.indefinite() {
			return nil, false, d.errf(KindMalformedIndefinite, "indefinite %s chunk inside indefinite %s", want, want)
		}
		seg, _, err := d.readSegment(ch.arg)
		if err != nil {
			return nil, false, err
		}
		// Each text chunk must be valid UTF-8 by itself, so a rune may
		// not straddle a chunk boundary.
		if want == MajorText && !utf8.Valid(seg) {
			return nil, false, d.errf(KindInvalidUTF8, "text chunk is not valid UTF-8")
		}
		out = append(out, seg...)
	}
}

func (d *Decoder) readSegment(n uint64) ([]byte, bool, error) {
	if n > d.MaxBytesLen {
		return nil, false, d.errf(KindLengthOverflow, "string length %d exceeds limit %d", n, d.MaxBytesLen)
	}
	if n == 0 {
		return []byte{}, false, nil
	}
	b, ref, err := d.fill(int(n))
	if err != nil {
		return nil, false, err
	}
	if ref == RefLong && uint64(len(b)) >= n {
		seg := b[:n:n]
		d.advance(int(n))
		return seg, true, nil
	}
	out := make([]byte, n)
	got := copy(out, b)
	d.advance(got)
	if err := d.readFull(out[got:]); err != nil {
		return nil, false, err
	}
	return out, false, nil
}

// ReadArrayHeader reads an array header. For a definite-length array it
// returns the element count; for an indefinite-length array it returns
// indefinite=true and the caller iterates with More.
func (d *Decoder) ReadArrayHeader() (n int, indefinite bool, err error) {
	return d.readContainerHeader(MajorArray)
}

// ReadMapHeader reads a map header. For a definite-length map it returns
// the entry count; for an indefinite-length map it returns indefinite=true
// and the caller iterates with More, reading a key and a value per entry.
func (d *Decoder) ReadMapHeader() (n int, indefinite bool, err error) {
	return d.readContainerHeader(MajorMap)
}

func (d *Decoder) readContainerHeader(want Major) (int, bool, error) {
	h, err := d.readHeader()
	if err != nil {
		return 0, false, err
	}
	if h.major != want {
		return 0, false, d.typeErr(want.String(), h)
	}
	if h.indefinite() {
		return 0, true, nil
	}
	if h.arg > d.MaxContainerLen {
		return 0, false, d.errf(KindLengthOverflow, "%s length %d exceeds limit %d", want, h.arg, d.MaxContainerLen)
	}
	return int(h.arg), false, nil
}

// More reports whether another element follows inside an indefinite-length
// item, consuming the break marker when it finds one instead.
func (d *Decoder) More() (bool, error) {
	b, _, err := d.fill(1)
	if err != nil {
		return false, err
	}
	if b[0] == breakByte {
		d.advance(1)
		return false, nil
	}
	return true, nil
}

// Skip consumes one complete data item, including all nested content.
func (d *Decoder) Skip() error {
	return d.skip(0)
}

func (d *Decoder) skip(depth int) error {
	if depth > d.MaxDepth {
		return d.errf(KindLengthOverflow, "nesting depth exceeds limit %d", d.MaxDepth)
	}
	h, err := d.readHeader()
	if err != nil {
		return err
	}
	switch h.major {
	case MajorUint, MajorNegInt:
		return nil
	case MajorBytes, MajorText:
		if !h.indefinite() {
			return d.discard(h.arg)
		}
		for {
			more, err := d.More()
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
			ch, err := d.readHeader()
			if err != nil {
				return err
			}
			if ch.major != h.major || ch.indefinite() {
				return d.errf(KindMalformedIndefinite, "indefinite %s contains a %s chunk", h.major, ch.major)
			}
			if err := d.discard(ch.arg); err != nil {
				return err
			}
		}
	case MajorArray, MajorMap:
		per := 1
		if h.major == MajorMap {
			per = 2
		}
		if h.indefinite() {
			for {
				more, err := d.More()
				if err != nil {
					return err
				}
				if !more {
					return nil
				}
				for i := 0; i < per; i++ {
					if err := d.skip(depth + 1); err != nil {
						return err
					}
				}
			}
		}
		for i := uint64(0); i < h.arg; i++ {
			for j := 0; j < per; j++ {
				if err := d.skip(depth + 1); err != nil {
					return err
				}
			}
		}
		return nil
	case MajorTag:
		return d.skip(depth + 1)
	default:
		if h.indefinite() {
			return d.errf(KindMalformedIndefinite, "unexpected break marker")
		}
		return nil
	}
}

func (d *Decoder) discard(n uint64) error {
	for n > 0 {
		want := n
		if want > math.MaxInt32 {
			want = math.MaxInt32
		}
		b, _, err := d.fill(int(want))
		if err != nil {
			return err
		}
		got := uint64(len(b))
		if got > n {
			got = n
		}
		d.advance(int(got))
		n -= got
	}
	return nil
}
