package value

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"cwire/wire"
)

func encodeBytes(t *testing.T, v Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, v.Encode(wire.NewEncoder(&buf)))
	return buf.Bytes()
}

func decodeHex(t *testing.T, s string) Value {
	t.Helper()
	raw, err := hex.DecodeString(s)
	require.NoError(t, err)
	v, err := DecodeBytes(raw)
	require.NoError(t, err)
	return v
}

func TestRoundTrip(t *testing.T) {
	trees := []Value{
		Uint(0),
		Uint(1000000),
		NegInt(99),
		BigInt{Int: new(big.Int).Lsh(big.NewInt(1), 64)},
		BigInt{Int: big.NewInt(7)},
		BigInt{Int: big.NewInt(-12345678901)},
		Bytes{1, 2, 3},
		Bytes{},
		Text("hello"),
		Text(""),
		Bool(true),
		Bool(false),
		Null{},
		Undefined{},
		Float(1.1),
		Float(-0.5),
		Array{Uint(1), Text("two"), Array{Bool(false)}},
		Map{
			{Key: Text("a"), Value: Uint(1)},
			{Key: Uint(2), Value: Null{}},
		},
		Tag{Number: 1, Inner: Uint(1363896240)},
	}
	for _, tree := range trees {
		raw := encodeBytes(t, tree)
		got, err := DecodeBytes(raw)
		require.NoError(t, err)
		require.True(t, Equal(tree, got), "round trip changed %s into %s", tree, got)
		require.Equal(t, raw, encodeBytes(t, got))
	}
}

func TestBignumEncoding(t *testing.T) {
	pos := BigInt{Int: new(big.Int).Lsh(big.NewInt(1), 64)}
	require.Equal(t, "c249010000000000000000", hex.EncodeToString(encodeBytes(t, pos)))

	neg := new(big.Int).Lsh(big.NewInt(1), 64)
	neg.Add(neg, big.NewInt(1))
	neg.Neg(neg)
	require.Equal(t, "c349010000000000000000", hex.EncodeToString(encodeBytes(t, BigInt{Int: neg})))

	// Small magnitudes keep the tagged form so trees re-encode to the
	// same bytes they decoded from.
	small := BigInt{Int: big.NewInt(7)}
	require.Equal(t, "c24107", hex.EncodeToString(encodeBytes(t, small)))

	got := decodeHex(t, "c249010000000000000000")
	require.True(t, Equal(pos, got))
	got = decodeHex(t, "c349010000000000000000")
	require.True(t, Equal(BigInt{Int: neg}, got))
}

func TestIndefiniteDecodesToDefinite(t *testing.T) {
	// Indefinite and definite spellings of the same data decode to
	// equal trees, and both re-encode with definite lengths.
	indef := decodeHex(t, "9f0102ff")
	def := decodeHex(t, "820102")
	require.True(t, Equal(indef, def))
	require.Equal(t, "820102", hex.EncodeToString(encodeBytes(t, indef)))

	text := decodeHex(t, "7f6261626163ff")
	require.True(t, Equal(Text("abc"), text))
	require.Equal(t, "63616263", hex.EncodeToString(encodeBytes(t, text)))

	m := decodeHex(t, "bf61610102820304ff")
	want := Map{
		{Key: Text("a"), Value: Uint(1)},
		{Key: Uint(2), Value: Array{Uint(3), Uint(4)}},
	}
	require.True(t, Equal(want, m))
	require.Equal(t, "a261610102820304", hex.EncodeToString(encodeBytes(t, m)))
}

func TestDuplicateKeysPreserved(t *testing.T) {
	m := decodeHex(t, "a2616101616102")
	pairs, ok := m.(Map)
	require.True(t, ok)
	require.Len(t, pairs, 2)
	require.True(t, Equal(Text("a"), pairs[0].Key))
	require.True(t, Equal(Text("a"), pairs[1].Key))
	require.True(t, Equal(Uint(1), pairs[0].Value))
	require.True(t, Equal(Uint(2), pairs[1].Value))
	require.Equal(t, "a2616101616102", hex.EncodeToString(encodeBytes(t, m)))
}

func TestSharedPayloadsAreCopied(t *testing.T) {
	raw, err := hex.DecodeString("4401020304")
	require.NoError(t, err)
	v, err := DecodeBytes(raw)
	require.NoError(t, err)
	b, ok := v.(Bytes)
	require.True(t, ok)
	raw[1] = 0xaa
	require.Equal(t, Bytes{1, 2, 3, 4}, b)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		input string
		kind  wire.DecodeErrorKind
	}{
		{"ff", wire.KindMalformedIndefinite},
		{"f0", wire.KindTypeMismatch}, // unassigned simple value
		{"f820", wire.KindTypeMismatch},
		{"1c", wire.KindReservedIndicator},
		{"82", wire.KindEndOfInput},
		{"5f6161ff", wire.KindMalformedIndefinite},
		{"62fffe", wire.KindInvalidUTF8},
	}
	for _, tt := range cases {
		raw, err := hex.DecodeString(tt.input)
		require.NoError(t, err)
		_, err = DecodeBytes(raw)
		require.Error(t, err, "input %s", tt.input)
		kind, ok := wire.DecodeKind(err)
		require.True(t, ok)
		require.Equal(t, tt.kind, kind, "input %s", tt.input)
	}
}

func TestDepthLimit(t *testing.T) {
	raw := bytes.Repeat([]byte{0x81}, 64)
	raw = append(raw, 0x01)
	dec := wire.NewDecoder(wire.NewSliceSource(raw))
	dec.MaxDepth = 8
	_, err := Decode(dec)
	require.Error(t, err)
	kind, ok := wire.DecodeKind(err)
	require.True(t, ok)
	require.Equal(t, wire.KindLengthOverflow, kind)
}

func TestDiagnosticStrings(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{Uint(42), "42"},
		{NegInt(99), "-100"},
		{Bytes{0x01, 0xab}, "h'01ab'"},
		{Text("hi"), `"hi"`},
		{Array{Uint(1), Text("two")}, `[1, "two"]`},
		{Map{{Key: Text("a"), Value: Bool(true)}}, `{"a": true}`},
		{Tag{Number: 1, Inner: Uint(5)}, "1(5)"},
		{Null{}, "null"},
		{Undefined{}, "undefined"},
		{Float(1.5), "1.5"},
		{Float(2), "2.0"},
		{BigInt{Int: new(big.Int).Lsh(big.NewInt(1), 64)}, "18446744073709551616"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.value.String())
	}
}

func TestEqual(t *testing.T) {
	require.True(t, Equal(Uint(1), Uint(1)))
	require.False(t, Equal(Uint(1), Uint(2)))
	require.False(t, Equal(Uint(1), NegInt(0)))
	require.True(t, Equal(nil, nil))
	require.False(t, Equal(Uint(1), nil))

	a := Map{{Key: Text("a"), Value: Uint(1)}, {Key: Text("b"), Value: Uint(2)}}
	b := Map{{Key: Text("b"), Value: Uint(2)}, {Key: Text("a"), Value: Uint(1)}}
	require.False(t, Equal(a, b), "maps compare in entry order")

	require.False(t, Equal(Float(1), Uint(1)))
	nan := Float(0)
	nan = Float(float64(nan) / float64(nan))
	require.False(t, Equal(nan, nan))
}
