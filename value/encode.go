package value

import (
	"math/big"

	"cwire/wire"
)

// Encode re-emits the tree on the wire. Containers and strings are always
// written with definite lengths and floats always at double precision, so
// a tree encodes deterministically and decodes back to an equal tree.

func (v Uint) Encode(enc *wire.Encoder) error {
	return enc.Uint(uint64(v))
}

func (v NegInt) Encode(enc *wire.Encoder) error {
	return enc.NegUint(uint64(v))
}

func (v BigInt) Encode(enc *wire.Encoder) error {
	i := v.Int
	if i == nil {
		i = new(big.Int)
	}
	if i.Sign() >= 0 {
		if err := enc.Tag(wire.TagPosBignum); err != nil {
			return err
		}
		return enc.Bytes(i.Bytes())
	}
	mag := new(big.Int).Neg(i)
	mag.Sub(mag, big.NewInt(1))
	if err := enc.Tag(wire.TagNegBignum); err != nil {
		return err
	}
	return enc.Bytes(mag.Bytes())
}

func (v Bytes) Encode(enc *wire.Encoder) error {
	return enc.Bytes(v)
}

func (v Text) Encode(enc *wire.Encoder) error {
	return enc.Text(string(v))
}

func (v Array) Encode(enc *wire.Encoder) error {
	if err := enc.Array(len(v)); err != nil {
		return err
	}
	for _, el := range v {
		if err := el.Encode(enc); err != nil {
			return err
		}
	}
	return nil
}

func (v Map) Encode(enc *wire.Encoder) error {
	if err := enc.Map(len(v)); err != nil {
		return err
	}
	for _, p := range v {
		if err := p.Key.Encode(enc); err != nil {
			return err
		}
		if err := p.Value.Encode(enc); err != nil {
			return err
		}
	}
	return nil
}

func (v Tag) Encode(enc *wire.Encoder) error {
	if err := enc.Tag(v.Number); err != nil {
		return err
	}
	return v.Inner.Encode(enc)
}

func (v Bool) Encode(enc *wire.Encoder) error {
	return enc.Bool(bool(v))
}

func (Null) Encode(enc *wire.Encoder) error {
	return enc.Null()
}

func (Undefined) Encode(enc *wire.Encoder) error {
	return enc.Undefined()
}

func (v Float) Encode(enc *wire.Encoder) error {
	return enc.Float64(float64(v))
}
