package serial

import (
	"math"
	"math/big"
	"reflect"

	"github.com/pkg/errors"

	"cwire/value"
	"cwire/wire"
)

const nullByte = 0xf6

func (c *Config) decodeReflect(dec *wire.Decoder, rv reflect.Value) error {
	if rv.CanAddr() && rv.Addr().CanInterface() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalCWire(dec)
		}
	}

	t := rv.Type()
	switch t {
	case bigIntPtrType:
		i, err := decodeBigInt(dec)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(i))
		return nil
	case bigIntType:
		i, err := decodeBigInt(dec)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(*i))
		return nil
	case charType:
		s, err := dec.ReadText()
		if err != nil {
			return err
		}
		r := []rune(s)
		if len(r) != 1 {
			return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "char requires a one-rune text string")
		}
		rv.SetInt(int64(r[0]))
		return nil
	}

	if rv.Kind() == reflect.Interface {
		if t == valueType {
			v, err := value.Decode(dec)
			if err != nil {
				return err
			}
			rv.Set(reflect.ValueOf(v))
			return nil
		}
		if def := enumFor(t); def != nil {
			if def.untagged {
				tree, err := value.Decode(dec)
				if err != nil {
					return err
				}
				return c.assignUntagged(tree, def, rv)
			}
			return c.decodeVariant(dec, def, rv)
		}
		if t.NumMethod() == 0 {
			v, err := value.Decode(dec)
			if err != nil {
				return err
			}
			rv.Set(reflect.ValueOf(v))
			return nil
		}
		return errors.Errorf("cwire/serial: cannot decode into unregistered interface %s", t)
	}

	switch rv.Kind() {
	case reflect.Bool:
		v, err := dec.ReadBool()
		if err != nil {
			return err
		}
		rv.SetBool(v)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		mag, neg, err := dec.ReadInteger()
		if err != nil {
			return err
		}
		i, err := signedFromParts(dec.Offset(), mag, neg)
		if err != nil {
			return err
		}
		if rv.OverflowInt(i) {
			return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "integer overflows "+t.String())
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		mag, neg, err := dec.ReadInteger()
		if err != nil {
			return err
		}
		if neg {
			return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "negative integer into "+t.String())
		}
		if rv.OverflowUint(mag) {
			return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "integer overflows "+t.String())
		}
		rv.SetUint(mag)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := dec.ReadFloat()
		if err != nil {
			return err
		}
		rv.SetFloat(f)
		return nil
	case reflect.String:
		s, err := dec.ReadText()
		if err != nil {
			return err
		}
		rv.SetString(s)
		return nil
	case reflect.Slice:
		return c.decodeSlice(dec, rv)
	case reflect.Array:
		return c.decodeArray(dec, rv)
	case reflect.Map:
		return c.decodeMap(dec, rv)
	case reflect.Ptr:
		b, err := dec.Peek()
		if err != nil {
			return err
		}
		if b == nullByte {
			if err := dec.ReadNull(); err != nil {
				return err
			}
			rv.Set(reflect.Zero(t))
			return nil
		}
		pv := reflect.New(t.Elem())
		if err := c.decodeReflect(dec, pv.Elem()); err != nil {
			return err
		}
		rv.Set(pv)
		return nil
	case reflect.Struct:
		return c.decodeStruct(dec, rv)
	default:
		return errors.Errorf("cwire/serial: cannot decode into %s", t)
	}
}

func signedFromParts(off int64, mag uint64, neg bool) (int64, error) {
	if neg {
		if mag > math.MaxInt64 {
			return 0, wire.NewDecodeError(wire.KindTypeMismatch, off, "integer overflows int64")
		}
		return -1 - int64(mag), nil
	}
	if mag > math.MaxInt64 {
		return 0, wire.NewDecodeError(wire.KindTypeMismatch, off, "integer overflows int64")
	}
	return int64(mag), nil
}

func decodeBigInt(dec *wire.Decoder) (*big.Int, error) {
	maj, err := dec.PeekMajor()
	if err != nil {
		return nil, err
	}
	switch maj {
	case wire.MajorUint, wire.MajorNegInt:
		mag, neg, err := dec.ReadInteger()
		if err != nil {
			return nil, err
		}
		i := new(big.Int).SetUint64(mag)
		if neg {
			i.Add(i, big.NewInt(1))
			i.Neg(i)
		}
		return i, nil
	case wire.MajorTag:
		num, err := dec.ReadTag()
		if err != nil {
			return nil, err
		}
		if num != wire.TagPosBignum && num != wire.TagNegBignum {
			return nil, wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "expected bignum tag")
		}
		mag, _, err := dec.ReadBytes()
		if err != nil {
			return nil, err
		}
		i := new(big.Int).SetBytes(mag)
		if num == wire.TagNegBignum {
			i.Add(i, big.NewInt(1))
			i.Neg(i)
		}
		return i, nil
	default:
		return nil, wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "expected integer or bignum, found "+maj.String())
	}
}

func (c *Config) decodeSlice(dec *wire.Decoder, rv reflect.Value) error {
	t := rv.Type()
	b, err := dec.Peek()
	if err != nil {
		return err
	}
	if b == nullByte {
		if err := dec.ReadNull(); err != nil {
			return err
		}
		rv.Set(reflect.Zero(t))
		return nil
	}
	if t.Elem().Kind() == reflect.Uint8 {
		// Byte-slice targets take the borrow when the source offers
		// one; the slice then aliases the caller's input buffer.
		data, _, err := dec.ReadBytes()
		if err != nil {
			return err
		}
		rv.SetBytes(data)
		return nil
	}
	n, indefinite, err := dec.ReadArrayHeader()
	if err != nil {
		return err
	}
	if indefinite {
		out := reflect.MakeSlice(t, 0, 0)
		for {
			more, err := dec.More()
			if err != nil {
				return err
			}
			if !more {
				rv.Set(out)
				return nil
			}
			ev := reflect.New(t.Elem()).Elem()
			if err := c.decodeReflect(dec, ev); err != nil {
				return err
			}
			out = reflect.Append(out, ev)
		}
	}
	out := reflect.MakeSlice(t, n, n)
	for i := 0; i < n; i++ {
		if err := c.decodeReflect(dec, out.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (c *Config) decodeArray(dec *wire.Decoder, rv reflect.Value) error {
	t := rv.Type()
	if t.Elem().Kind() == reflect.Uint8 {
		data, _, err := dec.ReadBytes()
		if err != nil {
			return err
		}
		if len(data) != rv.Len() {
			return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "byte string length does not match "+t.String())
		}
		reflect.Copy(rv, reflect.ValueOf(data))
		return nil
	}
	n, indefinite, err := dec.ReadArrayHeader()
	if err != nil {
		return err
	}
	if indefinite {
		for i := 0; ; i++ {
			more, err := dec.More()
			if err != nil {
				return err
			}
			if !more {
				if i != rv.Len() {
					return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "array length does not match "+t.String())
				}
				return nil
			}
			if i >= rv.Len() {
				return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "array length does not match "+t.String())
			}
			if err := c.decodeReflect(dec, rv.Index(i)); err != nil {
				return err
			}
		}
	}
	if n != rv.Len() {
		return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "array length does not match "+t.String())
	}
	for i := 0; i < n; i++ {
		if err := c.decodeReflect(dec, rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) decodeMap(dec *wire.Decoder, rv reflect.Value) error {
	t := rv.Type()
	b, err := dec.Peek()
	if err != nil {
		return err
	}
	if b == nullByte {
		if err := dec.ReadNull(); err != nil {
			return err
		}
		rv.Set(reflect.Zero(t))
		return nil
	}
	n, indefinite, err := dec.ReadMapHeader()
	if err != nil {
		return err
	}
	out := reflect.MakeMapWithSize(t, n)
	entry := func() error {
		kv := reflect.New(t.Key()).Elem()
		if err := c.decodeReflect(dec, kv); err != nil {
			return err
		}
		if c.RejectDuplicateKeys && out.MapIndex(kv).IsValid() {
			return errors.Errorf("cwire/serial: duplicate map key %v", kv.Interface())
		}
		vv := reflect.New(t.Elem()).Elem()
		if err := c.decodeReflect(dec, vv); err != nil {
			return err
		}
		out.SetMapIndex(kv, vv)
		return nil
	}
	if indefinite {
		for {
			more, err := dec.More()
			if err != nil {
				return err
			}
			if !more {
				break
			}
			if err := entry(); err != nil {
				return err
			}
		}
	} else {
		for i := 0; i < n; i++ {
			if err := entry(); err != nil {
				return err
			}
		}
	}
	rv.Set(out)
	return nil
}

func (c *Config) decodeStruct(dec *wire.Decoder, rv reflect.Value) error {
	info := infoOf(rv.Type())
	if info.hasFlatten() {
		// Ambiguous key routing: the whole map is buffered once, then
		// outer fields consume their keys and the rest fold into the
		// flattened fields.
		tree, err := value.Decode(dec)
		if err != nil {
			return err
		}
		m, ok := tree.(value.Map)
		if !ok {
			return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "expected map for "+rv.Type().String())
		}
		return c.assignStructFromMap(m, rv, info)
	}
	n, indefinite, err := dec.ReadMapHeader()
	if err != nil {
		return err
	}
	var seen map[string]bool
	if c.RejectDuplicateKeys {
		seen = make(map[string]bool)
	}
	entry := func() error {
		maj, err := dec.PeekMajor()
		if err != nil {
			return err
		}
		if maj != wire.MajorText {
			// Non-text keys can never match a field name.
			if err := dec.Skip(); err != nil {
				return err
			}
			return dec.Skip()
		}
		key, err := dec.ReadText()
		if err != nil {
			return err
		}
		if seen != nil {
			if seen[key] {
				return errors.Errorf("cwire/serial: duplicate map key %q", key)
			}
			seen[key] = true
		}
		f := info.byName[key]
		if f == nil || f.skipDecode {
			return dec.Skip()
		}
		return c.decodeReflect(dec, rv.Field(f.index))
	}
	if indefinite {
		for {
			more, err := dec.More()
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
			if err := entry(); err != nil {
				return err
			}
		}
	}
	for i := 0; i < n; i++ {
		if err := entry(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) decodeVariant(dec *wire.Decoder, def *enumDef, rv reflect.Value) error {
	b, err := dec.Peek()
	if err != nil {
		return err
	}
	switch wire.Major(b >> 5) {
	case wire.MajorText:
		name, err := dec.ReadText()
		if err != nil {
			return err
		}
		idx, ok := def.byName[name]
		if !ok {
			return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "unknown enum variant "+name)
		}
		return assignUnitVariant(dec.Offset(), def, idx, rv)
	case wire.MajorUint:
		idx, err := dec.ReadUint()
		if err != nil {
			return err
		}
		if idx >= uint64(len(def.variants)) {
			return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "enum variant index out of range")
		}
		return assignUnitVariant(dec.Offset(), def, int(idx), rv)
	case wire.MajorMap:
		n, indefinite, err := dec.ReadMapHeader()
		if err != nil {
			return err
		}
		if !indefinite && n != 1 {
			return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "enum map must contain exactly one entry")
		}
		if indefinite {
			more, err := dec.More()
			if err != nil {
				return err
			}
			if !more {
				return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "enum map must contain exactly one entry")
			}
		}
		idx, err := c.readVariantKey(dec, def)
		if err != nil {
			return err
		}
		v := def.variants[idx]
		payload := reflect.New(v.Type).Elem()
		switch v.Shape {
		case UnitVariant:
			return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "unit variant "+v.Name+" takes no payload")
		case TupleVariant:
			if err := c.decodeTupleInto(dec, payload); err != nil {
				return err
			}
		default:
			if err := c.decodeReflect(dec, payload); err != nil {
				return err
			}
		}
		if indefinite {
			more, err := dec.More()
			if err != nil {
				return err
			}
			if more {
				return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "enum map must contain exactly one entry")
			}
		}
		rv.Set(payload)
		return nil
	default:
		return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "expected enum variant for "+rv.Type().String())
	}
}

func assignUnitVariant(off int64, def *enumDef, idx int, rv reflect.Value) error {
	v := def.variants[idx]
	if v.Shape != UnitVariant {
		return wire.NewDecodeError(wire.KindTypeMismatch, off, "variant "+v.Name+" requires a payload")
	}
	rv.Set(reflect.Zero(v.Type))
	return nil
}

func (c *Config) readVariantKey(dec *wire.Decoder, def *enumDef) (int, error) {
	maj, err := dec.PeekMajor()
	if err != nil {
		return 0, err
	}
	switch maj {
	case wire.MajorText:
		name, err := dec.ReadText()
		if err != nil {
			return 0, err
		}
		idx, ok := def.byName[name]
		if !ok {
			return 0, wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "unknown enum variant "+name)
		}
		return idx, nil
	case wire.MajorUint:
		idx, err := dec.ReadUint()
		if err != nil {
			return 0, err
		}
		if idx >= uint64(len(def.variants)) {
			return 0, wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "enum variant index out of range")
		}
		return int(idx), nil
	default:
		return 0, wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "expected enum variant identifier, found "+maj.String())
	}
}

func (c *Config) decodeTupleInto(dec *wire.Decoder, rv reflect.Value) error {
	info := infoOf(rv.Type())
	n, indefinite, err := dec.ReadArrayHeader()
	if err != nil {
		return err
	}
	if indefinite {
		for i := 0; ; i++ {
			more, err := dec.More()
			if err != nil {
				return err
			}
			if !more {
				if i != len(info.fields) {
					return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "tuple variant arity mismatch")
				}
				return nil
			}
			if i >= len(info.fields) {
				return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "tuple variant arity mismatch")
			}
			if err := c.decodeReflect(dec, rv.Field(info.fields[i].index)); err != nil {
				return err
			}
		}
	}
	if n != len(info.fields) {
		return wire.NewDecodeError(wire.KindTypeMismatch, dec.Offset(), "tuple variant arity mismatch")
	}
	for i := 0; i < n; i++ {
		if err := c.decodeReflect(dec, rv.Field(info.fields[i].index)); err != nil {
			return err
		}
	}
	return nil
}
