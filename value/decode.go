package value

import (
	"math/big"

	"cwire/wire"
)

// Decode reads one complete data item into an owned tree. It is the
// catch-all target: any well-formed item with assigned semantics decodes
// successfully. Bignum tags 2 and 3 decode to BigInt; other tags are
// preserved as Tag nodes. Unassigned simple values are the one well-formed
// shape with no variant here and fail with a type mismatch.
func Decode(dec *wire.Decoder) (Value, error) {
	return decode(dec, 0)
}

func decode(dec *wire.Decoder, depth int) (Value, error) {
	if depth > dec.MaxDepth {
		return nil, wire.NewDecodeError(wire.KindLengthOverflow, dec.Offset(), "nesting depth exceeds limit")
	}
	b, err := dec.Peek()
	if err != nil {
		return nil, err
	}
	switch wire.Major(b >> 5) {
	case wire.MajorUint:
		u, err := dec.ReadUint()
		if err != nil {
			return nil, err
		}
		return Uint(u), nil
	case wire.MajorNegInt:
		mag, _, err := dec.ReadInteger()
		if err != nil {
			return nil, err
		}
		return NegInt(mag), nil
	case wire.MajorBytes:
		bs, shared, err := dec.ReadBytes()
		if err != nil {
			return nil, err
		}
		if shared {
			bs = append([]byte(nil), bs...)
		}
		return Bytes(bs), nil
	case wire.MajorText:
		s, err := dec.ReadText()
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	case wire.MajorArray:
		return decodeArray(dec, depth)
	case wire.MajorMap:
		return decodeMap(dec, depth)
	case wire.MajorTag:
		return decodeTag(dec, depth)
	default:
		return decodeSimple(dec, b)
	}
}

func decodeArray(dec *wire.Decoder, depth int) (Value, error) {
	n, indefinite, err := dec.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	if indefinite {
		arr := Array{}
		for {
			more, err := dec.More()
			if err != nil {
				return nil, err
			}
			if !more {
				return arr, nil
			}
			el, err := decode(dec, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, el)
		}
	}
	arr := make(Array, 0, n)
	for i := 0; i < n; i++ {
		el, err := decode(dec, depth+1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, el)
	}
	return arr, nil
}

func decodeMap(dec *wire.Decoder, depth int) (Value, error) {
	n, indefinite, err := dec.ReadMapHeader()
	if err != nil {
		return nil, err
	}
	readPair := func() (Pair, error) {
		k, err := decode(dec, depth+1)
		if err != nil {
			return Pair{}, err
		}
		v, err := decode(dec, depth+1)
		if err != nil {
			return Pair{}, err
		}
		return Pair{Key: k, Value: v}, nil
	}
	if indefinite {
		m := Map{}
		for {
			more, err := dec.More()
			if err != nil {
				return nil, err
			}
			if !more {
				return m, nil
			}
			p, err := readPair()
			if err != nil {
				return nil, err
			}
			m = append(m, p)
		}
	}
	m := make(Map, 0, n)
	for i := 0; i < n; i++ {
		p, err := readPair()
		if err != nil {
			return nil, err
		}
		m = append(m, p)
	}
	return m, nil
}

func decodeTag(dec *wire.Decoder, depth int) (Value, error) {
	num, err := dec.ReadTag()
	if err != nil {
		return nil, err
	}
	if num == wire.TagPosBignum || num == wire.TagNegBignum {
		mag, _, err := dec.ReadBytes()
		if err != nil {
			return nil, err
		}
		i := new(big.Int).SetBytes(mag)
		if num == wire.TagNegBignum {
			i.Add(i, big.NewInt(1))
			i.Neg(i)
		}
		return BigInt{Int: i}, nil
	}
	inner, err := decode(dec, depth+1)
	if err != nil {
		return nil, err
	}
	return Tag{Number: num, Inner: inner}, nil
}

func decodeSimple(dec *wire.Decoder, b byte) (Value, error) {
	switch b & 0x1f {
	case 20, 21:
		v, err := dec.ReadBool()
		if err != nil {
			return nil, err
		}
		return Bool(v), nil
	case 22:
		if err := dec.ReadNull(); err != nil {
			return nil, err
		}
		return Null{}, nil
	case 23:
		if err := dec.ReadUndefined(); err != nil {
			return nil, err
		}
		return Undefined{}, nil
	case 25, 26, 27:
		f, err := dec.ReadFloat()
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case 31:
		return nil, wire.NewDecodeError(wire.KindMalformedIndefinite, dec.Offset(), "unexpected break marker")
	default:
		return nil, wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "unassigned simple value")
	}
}

// DecodeBytes decodes a single item from an in-memory buffer.
func DecodeBytes(data []byte) (Value, error) {
	return Decode(wire.NewDecoder(wire.NewSliceSource(data)))
}
