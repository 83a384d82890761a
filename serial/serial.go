package serial

import (
	"bytes"
	"io"
	"reflect"

	"github.com/pkg/errors"

	"cwire/wire"
)

// Marshaler is implemented by types that encode themselves as one data
// item.
type Marshaler interface {
	MarshalCWire(enc *wire.Encoder) error
}

// Unmarshaler is implemented by types that decode themselves from one
// data item.
type Unmarshaler interface {
	UnmarshalCWire(dec *wire.Decoder) error
}

// Char is a single Unicode scalar value. It travels as a one-rune text
// string rather than as the integer a plain rune would encode to.
type Char rune

// Config carries the tunable policies of the bridge. The zero value of
// each field selects its default, so &Config{RejectDuplicateKeys: true}
// is a complete configuration.
type Config struct {
	// MaxBytesLen, MaxContainerLen and MaxDepth configure the limits of
	// the decoders this Config builds; zero selects the wire package
	// defaults.
	MaxBytesLen     uint64
	MaxContainerLen uint64
	MaxDepth        int

	// RejectDuplicateKeys makes decoding fail when a wire map holds the
	// same key twice. The default tolerates duplicates: the last
	// occurrence wins for map and struct targets.
	RejectDuplicateKeys bool

	// VariantByIndex encodes enum variant identifiers as their
	// registration index instead of their name. Decoding accepts both
	// forms regardless.
	VariantByIndex bool
}

var defaultConfig = &Config{}

// Marshal encodes v as exactly one data item written to w using the
// default Config.
func Marshal(w io.Writer, v interface{}) error {
	return defaultConfig.Marshal(w, v)
}

// MarshalBytes encodes v as exactly one data item into a fresh buffer
// using the default Config.
func MarshalBytes(v interface{}) ([]byte, error) {
	return defaultConfig.MarshalBytes(v)
}

// Unmarshal decodes one data item from src into v, which must be a
// non-nil pointer, using the default Config.
func Unmarshal(src wire.Source, v interface{}) error {
	return defaultConfig.Unmarshal(src, v)
}

// UnmarshalBytes decodes one data item from data into v using the default
// Config. Byte-slice targets may alias data; callers that mutate data
// afterwards should copy first.
func UnmarshalBytes(data []byte, v interface{}) error {
	return defaultConfig.UnmarshalBytes(data, v)
}

// Encode writes v as one data item on an existing Encoder. It is the
// building block Marshaler implementations compose with.
func Encode(enc *wire.Encoder, v interface{}) error {
	return defaultConfig.Encode(enc, v)
}

// Decode reads one data item from an existing Decoder into v. It is the
// building block Unmarshaler implementations compose with.
func Decode(dec *wire.Decoder, v interface{}) error {
	return defaultConfig.Decode(dec, v)
}

func (c *Config) Marshal(w io.Writer, v interface{}) error {
	return c.Encode(wire.NewEncoder(w), v)
}

func (c *Config) MarshalBytes(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Marshal(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Config) Unmarshal(src wire.Source, v interface{}) error {
	return c.Decode(c.newDecoder(src), v)
}

func (c *Config) UnmarshalBytes(data []byte, v interface{}) error {
	return c.Unmarshal(wire.NewSliceSource(data), v)
}

func (c *Config) Encode(enc *wire.Encoder, v interface{}) error {
	return c.encodeReflect(enc, reflect.ValueOf(v))
}

func (c *Config) Decode(dec *wire.Decoder, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Errorf("cwire/serial: decode target must be a non-nil pointer, got %T", v)
	}
	return c.decodeReflect(dec, rv.Elem())
}

func (c *Config) newDecoder(src wire.Source) *wire.Decoder {
	dec := wire.NewDecoder(src)
	if c.MaxBytesLen != 0 {
		dec.MaxBytesLen = c.MaxBytesLen
	}
	if c.MaxContainerLen != 0 {
		dec.MaxContainerLen = c.MaxContainerLen
	}
	if c.MaxDepth != 0 {
		dec.MaxDepth = c.MaxDepth
	}
	return dec
}
