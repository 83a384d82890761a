/*
Package value provides an owned, in-memory tree covering every CBOR wire
shape. Decoding into it always succeeds for any well-formed item, which
makes it both a standalone dynamic decode target and the buffer the serial
bridge materializes ambiguous items into before retrying typed decoding.

The tree owns all of its data; nothing in it aliases a decode source.
*/
package value

import (
	"math/big"
	"strconv"
	"strings"

	"cwire/wire"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindUint Kind = iota
	KindNegInt
	KindBigInt
	KindBytes
	KindText
	KindArray
	KindMap
	KindTag
	KindBool
	KindNull
	KindUndefined
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "unsigned integer"
	case KindNegInt:
		return "negative integer"
	case KindBigInt:
		return "bignum"
	case KindBytes:
		return "byte string"
	case KindText:
		return "text string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindTag:
		return "tag"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Value is the closed set of CBOR shapes. The following types implement
// it: Uint, NegInt, BigInt, Bytes, Text, Array, Map, Tag, Bool, Null,
// Undefined and Float.
type Value interface {
	Kind() Kind

	// Encode re-emits the value on the wire.
	Encode(enc *wire.Encoder) error

	// String renders the value in RFC 8949 extended diagnostic
	// notation.
	String() string

	isValue()
}

// Uint holds a non-negative integer.
type Uint uint64

// NegInt holds the negative integer -1-n.
type NegInt uint64

// BigInt holds an integer outside the 64-bit range of the native integer
// major types. It always travels as a tagged bignum byte string on the
// wire, even when its magnitude would fit a native header, so that a tree
// re-encodes to the shape it was decoded from.
type BigInt struct {
	Int *big.Int
}

// Bytes holds an owned byte string.
type Bytes []byte

// Text holds a text string.
type Text string

// Array holds an ordered sequence of values.
type Array []Value

// Pair is one map entry.
type Pair struct {
	Key   Value
	Value Value
}

// Map holds key/value pairs in insertion order. Duplicate keys are legal
// at the wire level and preserved here; policy belongs to the consumer.
type Map []Pair

// Tag holds a numeric tag and the item it decorates.
type Tag struct {
	Number uint64
	Inner  Value
}

type Bool bool

type Null struct{}

type Undefined struct{}

// Float holds any float width, widened to float64.
type Float float64

func (Uint) Kind() Kind      { return KindUint }
func (NegInt) Kind() Kind    { return KindNegInt }
func (BigInt) Kind() Kind    { return KindBigInt }
func (Bytes) Kind() Kind     { return KindBytes }
func (Text) Kind() Kind      { return KindText }
func (Array) Kind() Kind     { return KindArray }
func (Map) Kind() Kind       { return KindMap }
func (Tag) Kind() Kind       { return KindTag }
func (Bool) Kind() Kind      { return KindBool }
func (Null) Kind() Kind      { return KindNull }
func (Undefined) Kind() Kind { return KindUndefined }
func (Float) Kind() Kind     { return KindFloat }

func (Uint) isValue()      {}
func (NegInt) isValue()    {}
func (BigInt) isValue()    {}
func (Bytes) isValue()     {}
func (Text) isValue()      {}
func (Array) isValue()     {}
func (Map) isValue()       {}
func (Tag) isValue()       {}
func (Bool) isValue()      {}
func (Null) isValue()      {}
func (Undefined) isValue() {}
func (Float) isValue()     {}

func (v Uint) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

func (v NegInt) String() string {
	m := new(big.Int).SetUint64(uint64(v))
	m.Add(m, big.NewInt(1))
	return "-" + m.String()
}

func (v BigInt) String() string {
	if v.Int == nil {
		return "0"
	}
	return v.Int.String()
}

func (v Bytes) String() string {
	const hexdigits = "0123456789abcdef"
	var sb strings.Builder
	sb.WriteString("h'")
	for _, c := range v {
		sb.WriteByte(hexdigits[c>>4])
		sb.WriteByte(hexdigits[c&0xf])
	}
	sb.WriteByte('\'')
	return sb.String()
}

func (v Text) String() string {
	return strconv.Quote(string(v))
}

func (v Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, el := range v {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(el.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (v Map) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, p := range v {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Key.String())
		sb.WriteString(": ")
		sb.WriteString(p.Value.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (v Tag) String() string {
	return strconv.FormatUint(v.Number, 10) + "(" + v.Inner.String() + ")"
}

func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}

func (Null) String() string {
	return "null"
}

func (Undefined) String() string {
	return "undefined"
}

func (v Float) String() string {
	f := float64(v)
	switch {
	case f != f:
		return "NaN"
	case f > 0 && f*2 == f:
		return "Infinity"
	case f < 0 && f*2 == f:
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Equal reports deep equality of two trees. Map entries compare in order;
// two maps holding the same pairs in different order are not equal. Floats
// compare with ==, so NaN is unequal to itself.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Uint:
		return av == b.(Uint)
	case NegInt:
		return av == b.(NegInt)
	case BigInt:
		return av.Int.Cmp(b.(BigInt).Int) == 0
	case Bytes:
		bv := b.(Bytes)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case Text:
		return av == b.(Text)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i].Key, bv[i].Key) || !Equal(av[i].Value, bv[i].Value) {
				return false
			}
		}
		return true
	case Tag:
		bv := b.(Tag)
		return av.Number == bv.Number && Equal(av.Inner, bv.Inner)
	case Bool:
		return av == b.(Bool)
	case Null, Undefined:
		return true
	case Float:
		return av == b.(Float)
	default:
		return false
	}
}
