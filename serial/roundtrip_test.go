package serial

import (
	"bytes"
	"encoding/hex"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"cwire/value"
	"cwire/wire"
)

func u32p(v uint32) *uint32 {
	return &v
}

func roundTrip(t *testing.T, in, out interface{}) {
	t.Helper()
	raw, err := MarshalBytes(in)
	require.NoError(t, err)
	require.NoError(t, UnmarshalBytes(raw, out))
}

type fileMeta struct {
	Created  uint64 `cwire:"created"`
	Modified uint64 `cwire:"modified"`
	Size     uint64 `cwire:"size"`
}

type manifest struct {
	Name    string            `cwire:"name"`
	Index   uint32            `cwire:"index"`
	Tags    []string          `cwire:"tags"`
	Attrs   map[string]string `cwire:"attrs"`
	Meta    *fileMeta         `cwire:"meta"`
	Missing *fileMeta         `cwire:"missing"`
	Body    []byte            `cwire:"body"`
	Ratio   float64           `cwire:"ratio"`
	Hot     bool              `cwire:"hot"`
}

func TestStructRoundTrip(t *testing.T) {
	in := &manifest{
		Name:  "kernel.img",
		Index: 42,
		Tags:  []string{"boot", "signed"},
		Attrs: map[string]string{"arch": "arm64"},
		Meta: &fileMeta{
			Created:  1000,
			Modified: 2000,
			Size:     1 << 20,
		},
		Body:  []byte{0xde, 0xad, 0xbe, 0xef},
		Ratio: 0.75,
		Hot:   true,
	}
	var out manifest
	roundTrip(t, in, &out)
	require.Equal(t, *in, out)
	require.Nil(t, out.Missing)
}

func TestStructWireShape(t *testing.T) {
	type pair struct {
		A uint8  `cwire:"a"`
		B string `cwire:"b"`
	}
	raw, err := MarshalBytes(&pair{A: 1, B: "x"})
	require.NoError(t, err)
	// Definite map of two text keys in declaration order.
	require.Equal(t, "a261610161626178", hex.EncodeToString(raw))

	tree, err := value.DecodeBytes(raw)
	require.NoError(t, err)
	require.Equal(t, `{"a": 1, "b": "x"}`, tree.String())
}

func TestOptionalPointers(t *testing.T) {
	in := []*uint32{u32p(0x99), nil, u32p(0x33)}
	raw, err := MarshalBytes(in)
	require.NoError(t, err)
	require.Equal(t, "831899f61833", hex.EncodeToString(raw))

	var out []*uint32
	require.NoError(t, UnmarshalBytes(raw, &out))
	require.Len(t, out, 3)
	require.Equal(t, uint32(0x99), *out[0])
	require.Nil(t, out[1])
	require.Equal(t, uint32(0x33), *out[2])
}

func TestIntegerWidths(t *testing.T) {
	var u8 uint8
	require.NoError(t, UnmarshalBytes([]byte{0x18, 0xff}, &u8))
	require.Equal(t, uint8(255), u8)

	err := UnmarshalBytes([]byte{0x19, 0x01, 0x00}, &u8)
	require.Error(t, err)
	kind, ok := wire.DecodeKind(err)
	require.True(t, ok)
	require.Equal(t, wire.KindTypeMismatch, kind)

	var i8 int8
	require.NoError(t, UnmarshalBytes([]byte{0x38, 0x7f}, &i8))
	require.Equal(t, int8(-128), i8)
	require.Error(t, UnmarshalBytes([]byte{0x38, 0x80}, &i8))
}

func TestBigIntRoundTrip(t *testing.T) {
	// Values that fit the native integer majors stay native.
	small := big.NewInt(1000)
	raw, err := MarshalBytes(small)
	require.NoError(t, err)
	require.Equal(t, "1903e8", hex.EncodeToString(raw))

	negSmall := big.NewInt(-1000)
	raw, err = MarshalBytes(negSmall)
	require.NoError(t, err)
	require.Equal(t, "3903e7", hex.EncodeToString(raw))

	// Values past the 64-bit majors take the bignum tags.
	huge := new(big.Int).Lsh(big.NewInt(1), 64)
	raw, err = MarshalBytes(huge)
	require.NoError(t, err)
	require.Equal(t, "c249010000000000000000", hex.EncodeToString(raw))

	out := new(big.Int)
	require.NoError(t, UnmarshalBytes(raw, out))
	require.Zero(t, huge.Cmp(out))

	negHuge := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 100))
	raw, err = MarshalBytes(negHuge)
	require.NoError(t, err)
	out = new(big.Int)
	require.NoError(t, UnmarshalBytes(raw, out))
	require.Zero(t, negHuge.Cmp(out))

	// A native negative integer decodes into a big.Int target too.
	out = new(big.Int)
	require.NoError(t, UnmarshalBytes([]byte{0x39, 0x03, 0xe7}, out))
	require.Zero(t, big.NewInt(-1000).Cmp(out))
}

func TestChar(t *testing.T) {
	raw, err := MarshalBytes(Char('金'))
	require.NoError(t, err)
	require.Equal(t, "63e98791", hex.EncodeToString(raw))

	var c Char
	require.NoError(t, UnmarshalBytes(raw, &c))
	require.Equal(t, Char('金'), c)

	// Multi-rune text does not fit a single char.
	raw, err = MarshalBytes("ab")
	require.NoError(t, err)
	require.Error(t, UnmarshalBytes(raw, &c))
}

func TestFloats(t *testing.T) {
	var f32 float32 = 1.5
	raw, err := MarshalBytes(f32)
	require.NoError(t, err)
	require.Equal(t, "fa3fc00000", hex.EncodeToString(raw))
	var f32out float32
	require.NoError(t, UnmarshalBytes(raw, &f32out))
	require.Equal(t, f32, f32out)

	raw, err = MarshalBytes(math.Pi)
	require.NoError(t, err)
	var f64out float64
	require.NoError(t, UnmarshalBytes(raw, &f64out))
	require.Equal(t, math.Pi, f64out)

	// Half-precision input widens losslessly.
	require.NoError(t, UnmarshalBytes(mustHexBytes(t, "f93c00"), &f64out))
	require.Equal(t, 1.0, f64out)
}

func mustHexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestValueInterfaceTargets(t *testing.T) {
	// value.Value fields pass through both directions untouched.
	type holder struct {
		Extra value.Value `cwire:"extra"`
	}
	in := &holder{Extra: value.Array{value.Uint(1), value.Text("x")}}
	var out holder
	roundTrip(t, in, &out)
	require.True(t, value.Equal(in.Extra, out.Extra))

	// interface{} targets decode to a tree as well.
	var anything interface{}
	require.NoError(t, UnmarshalBytes(mustHexBytes(t, "820102"), &anything))
	tree, ok := anything.(value.Value)
	require.True(t, ok)
	require.True(t, value.Equal(value.Array{value.Uint(1), value.Uint(2)}, tree))
}

type checksummed struct {
	payload []byte
}

func (c *checksummed) MarshalCWire(enc *wire.Encoder) error {
	sum := byte(0)
	for _, b := range c.payload {
		sum += b
	}
	if err := enc.Array(2); err != nil {
		return err
	}
	if err := enc.Bytes(c.payload); err != nil {
		return err
	}
	return enc.Uint(uint64(sum))
}

func (c *checksummed) UnmarshalCWire(dec *wire.Decoder) error {
	n, _, err := dec.ReadArrayHeader()
	if err != nil {
		return err
	}
	if n != 2 {
		return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "checksummed payload needs two elements")
	}
	payload, _, err := dec.ReadBytes()
	if err != nil {
		return err
	}
	sum, err := dec.ReadUint()
	if err != nil {
		return err
	}
	var actual byte
	for _, b := range payload {
		actual += b
	}
	if uint64(actual) != sum {
		return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "checksum mismatch")
	}
	c.payload = append([]byte(nil), payload...)
	return nil
}

func TestCustomMarshaler(t *testing.T) {
	in := &checksummed{payload: []byte{1, 2, 3}}
	raw, err := MarshalBytes(in)
	require.NoError(t, err)
	require.Equal(t, "824301020306", hex.EncodeToString(raw))

	var out checksummed
	require.NoError(t, UnmarshalBytes(raw, &out))
	require.Equal(t, in.payload, out.payload)

	raw[5] = 0x07
	require.Error(t, UnmarshalBytes(raw, &out))
}

func TestReaderRoundTrip(t *testing.T) {
	in := &manifest{
		Name:  "r",
		Index: 1,
		Tags:  []string{"t"},
		Attrs: map[string]string{"k": "v"},
		Body:  []byte{9},
	}
	var buf bytes.Buffer
	require.NoError(t, Marshal(&buf, in))

	var out manifest
	require.NoError(t, Unmarshal(wire.NewReaderSource(&buf), &out))
	require.Equal(t, *in, out)
}
