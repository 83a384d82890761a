package serial

import (
	"encoding/hex"
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"cwire/wire"
)

func typeOf(v interface{}) reflect.Type {
	return reflect.TypeOf(v)
}

type shape interface {
	isShape()
}

type point struct{}

type label string

type segment struct {
	X int32
	Y int32
}

type circle struct {
	Radius uint32 `cwire:"radius"`
}

func (point) isShape()   {}
func (label) isShape()   {}
func (segment) isShape() {}
func (circle) isShape()  {}

type scalar interface {
	isScalar()
}

type intScalar int32

type strScalar string

type pairScalar struct {
	A uint8 `cwire:"a"`
}

func (intScalar) isScalar()  {}
func (strScalar) isScalar()  {}
func (pairScalar) isScalar() {}

func init() {
	RegisterEnum((*shape)(nil),
		Variant{Name: "Point", Shape: UnitVariant, Type: typeOf(point{})},
		Variant{Name: "Label", Shape: NewtypeVariant, Type: typeOf(label(""))},
		Variant{Name: "Segment", Shape: TupleVariant, Type: typeOf(segment{})},
		Variant{Name: "Circle", Shape: StructVariant, Type: typeOf(circle{})},
	)
	RegisterUntagged((*scalar)(nil), intScalar(0), strScalar(""), pairScalar{})
}

func marshalShape(t *testing.T, s shape) []byte {
	t.Helper()
	var v shape = s
	raw, err := MarshalBytes(&v)
	require.NoError(t, err)
	return raw
}

func unmarshalShape(t *testing.T, raw []byte) shape {
	t.Helper()
	var v shape
	require.NoError(t, UnmarshalBytes(raw, &v))
	return v
}

func TestEnumShapes(t *testing.T) {
	raw := marshalShape(t, point{})
	require.Equal(t, "65506f696e74", hex.EncodeToString(raw))
	require.Equal(t, point{}, unmarshalShape(t, raw))

	raw = marshalShape(t, label("hi"))
	require.Equal(t, "a1654c6162656c626869", hex.EncodeToString(raw))
	require.Equal(t, label("hi"), unmarshalShape(t, raw))

	raw = marshalShape(t, segment{X: 3, Y: -4})
	require.Equal(t, "a1675365676d656e74820323", hex.EncodeToString(raw))
	require.Equal(t, segment{X: 3, Y: -4}, unmarshalShape(t, raw))

	raw = marshalShape(t, circle{Radius: 5})
	require.Equal(t, "a166436972636c65a16672616469757305", hex.EncodeToString(raw))
	require.Equal(t, circle{Radius: 5}, unmarshalShape(t, raw))
}

func TestEnumByIndex(t *testing.T) {
	cfg := &Config{VariantByIndex: true}

	var v shape = point{}
	raw, err := cfg.MarshalBytes(&v)
	require.NoError(t, err)
	require.Equal(t, "00", hex.EncodeToString(raw))

	v = label("hi")
	raw, err = cfg.MarshalBytes(&v)
	require.NoError(t, err)
	require.Equal(t, "a101626869", hex.EncodeToString(raw))

	var out shape
	require.NoError(t, cfg.UnmarshalBytes(raw, &out))
	require.Equal(t, label("hi"), out)

	// Name and index identifiers are both accepted on decode,
	// whichever the config prefers for encode.
	require.NoError(t, UnmarshalBytes(raw, &out))
	require.Equal(t, label("hi"), out)
}

func TestEnumInStructField(t *testing.T) {
	type drawing struct {
		Outline shape   `cwire:"outline"`
		Extras  []shape `cwire:"extras"`
	}
	in := &drawing{
		Outline: circle{Radius: 9},
		Extras:  []shape{point{}, segment{X: 1, Y: 2}},
	}
	var out drawing
	roundTrip(t, in, &out)
	require.Equal(t, *in, out)
}

func TestEnumErrors(t *testing.T) {
	// Unknown variant name.
	var v shape
	err := UnmarshalBytes(mustHexBytes(t, "66537068657265"), &v)
	require.Error(t, err)

	// Two entries in the variant map.
	err = UnmarshalBytes(mustHexBytes(t, "a2654c6162656c626869654c6162656c626869"), &v)
	require.Error(t, err)

	// Unit variant with a payload map.
	err = UnmarshalBytes(mustHexBytes(t, "a165506f696e7400"), &v)
	require.Error(t, err)

	// Payload missing for a newtype variant.
	err = UnmarshalBytes(mustHexBytes(t, "654c6162656c"), &v)
	require.Error(t, err)

	// Tuple arity mismatch.
	err = UnmarshalBytes(mustHexBytes(t, "a1675365676d656e748101"), &v)
	require.Error(t, err)
	kind, ok := wire.DecodeKind(err)
	require.True(t, ok)
	require.Equal(t, wire.KindTypeMismatch, kind)
}

func TestEnumIndefiniteMap(t *testing.T) {
	var v shape
	require.NoError(t, UnmarshalBytes(mustHexBytes(t, "bf654c6162656c626869ff"), &v))
	require.Equal(t, label("hi"), v)

	// A second entry after the payload is rejected.
	err := UnmarshalBytes(mustHexBytes(t, "bf654c6162656c626869654c6162656c626869ff"), &v)
	require.Error(t, err)
}

func TestUntaggedOrder(t *testing.T) {
	var v scalar
	require.NoError(t, UnmarshalBytes(mustHexBytes(t, "05"), &v))
	require.Equal(t, intScalar(5), v)

	require.NoError(t, UnmarshalBytes(mustHexBytes(t, "20"), &v))
	require.Equal(t, intScalar(-1), v)

	require.NoError(t, UnmarshalBytes(mustHexBytes(t, "626869"), &v))
	require.Equal(t, strScalar("hi"), v)

	require.NoError(t, UnmarshalBytes(mustHexBytes(t, "a1616107"), &v))
	require.Equal(t, pairScalar{A: 7}, v)
}

func TestUntaggedNoMatch(t *testing.T) {
	var v scalar
	err := UnmarshalBytes(mustHexBytes(t, "4401020304"), &v)
	require.Error(t, err)
	require.Equal(t, ErrNoVariantMatch, errors.Cause(err))
}

func TestUntaggedCarriesNoIdentifier(t *testing.T) {
	var v scalar = strScalar("hi")
	raw, err := MarshalBytes(&v)
	require.NoError(t, err)
	require.Equal(t, "626869", hex.EncodeToString(raw))
}

func TestUntaggedInsideArray(t *testing.T) {
	in := []scalar{intScalar(1), strScalar("two"), pairScalar{A: 3}}
	raw, err := MarshalBytes(in)
	require.NoError(t, err)

	var out []scalar
	require.NoError(t, UnmarshalBytes(raw, &out))
	require.Equal(t, in, out)
}
