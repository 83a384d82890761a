package serial

import (
	"math/big"
	"reflect"

	"cwire/value"
	"cwire/wire"
)

var (
	bigIntType    = reflect.TypeOf(big.Int{})
	bigIntPtrType = reflect.TypeOf((*big.Int)(nil))
	charType      = reflect.TypeOf(Char(0))
	valueType     = reflect.TypeOf((*value.Value)(nil)).Elem()
)

func (c *Config) encodeReflect(enc *wire.Encoder, rv reflect.Value) error {
	if !rv.IsValid() {
		return enc.Null()
	}
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return enc.Null()
		}
		if def := enumFor(rv.Type()); def != nil {
			return c.encodeVariant(enc, def, rv.Elem())
		}
		return c.encodeReflect(enc, rv.Elem())
	}

	switch rv.Type() {
	case bigIntPtrType:
		if rv.IsNil() {
			return enc.Null()
		}
		return encodeBigInt(enc, rv.Interface().(*big.Int))
	case bigIntType:
		i := rv.Interface().(big.Int)
		return encodeBigInt(enc, &i)
	case charType:
		return enc.Text(string(rune(rv.Int())))
	}

	if rv.CanInterface() {
		switch v := rv.Interface().(type) {
		case Marshaler:
			return v.MarshalCWire(enc)
		case value.Value:
			return v.Encode(enc)
		}
	}
	if rv.CanAddr() && rv.Addr().CanInterface() {
		if m, ok := rv.Addr().Interface().(Marshaler); ok {
			return m.MarshalCWire(enc)
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return enc.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return enc.Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return enc.Uint(rv.Uint())
	case reflect.Float32:
		return enc.Float32(float32(rv.Float()))
	case reflect.Float64:
		return enc.Float64(rv.Float())
	case reflect.String:
		return enc.Text(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return enc.Bytes(rv.Bytes())
		}
		if err := enc.Array(rv.Len()); err != nil {
			return err
		}
		for i := 0; i < rv.Len(); i++ {
			if err := c.encodeReflect(enc, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return enc.Bytes(b)
		}
		if err := enc.Array(rv.Len()); err != nil {
			return err
		}
		for i := 0; i < rv.Len(); i++ {
			if err := c.encodeReflect(enc, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if err := enc.Map(rv.Len()); err != nil {
			return err
		}
		iter := rv.MapRange()
		for iter.Next() {
			if err := c.encodeReflect(enc, iter.Key()); err != nil {
				return err
			}
			if err := c.encodeReflect(enc, iter.Value()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Ptr:
		if rv.IsNil() {
			return enc.Null()
		}
		return c.encodeReflect(enc, rv.Elem())
	case reflect.Struct:
		return c.encodeStruct(enc, rv)
	default:
		return wire.NewEncodeError(wire.KindUnrepresentable, "cannot encode "+rv.Type().String())
	}
}

func (c *Config) encodeStruct(enc *wire.Encoder, rv reflect.Value) error {
	info := infoOf(rv.Type())
	if info.hasFlatten() {
		// Flattened siblings make the final entry count unknowable
		// without a pre-pass, so the map goes out indefinite-length.
		if err := enc.BeginMap(); err != nil {
			return err
		}
		if err := c.encodeStructFields(enc, rv, info); err != nil {
			return err
		}
		return enc.Break()
	}
	if err := enc.Map(len(info.fields)); err != nil {
		return err
	}
	return c.encodeStructFields(enc, rv, info)
}

func (c *Config) encodeStructFields(enc *wire.Encoder, rv reflect.Value, info *structInfo) error {
	for i := range info.fields {
		f := &info.fields[i]
		fv := rv.Field(f.index)
		if f.flatten {
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() != reflect.Struct {
				return wire.NewEncodeError(wire.KindUnrepresentable, "flatten field "+f.name+" is not a struct")
			}
			if err := c.encodeStructFields(enc, fv, infoOf(fv.Type())); err != nil {
				return err
			}
			continue
		}
		if err := enc.Text(f.name); err != nil {
			return err
		}
		if err := c.encodeReflect(enc, fv); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) encodeVariant(enc *wire.Encoder, def *enumDef, rv reflect.Value) error {
	idx, ok := def.byType[rv.Type()]
	if !ok {
		return wire.NewEncodeError(wire.KindUnrepresentable, "unregistered enum variant "+rv.Type().String())
	}
	if def.untagged {
		return c.encodeReflect(enc, rv)
	}
	v := def.variants[idx]
	if v.Shape == UnitVariant {
		return c.encodeVariantKey(enc, idx, v)
	}
	if err := enc.Map(1); err != nil {
		return err
	}
	if err := c.encodeVariantKey(enc, idx, v); err != nil {
		return err
	}
	switch v.Shape {
	case NewtypeVariant, StructVariant:
		return c.encodeReflect(enc, rv)
	default: // TupleVariant
		info := infoOf(rv.Type())
		if err := enc.Array(len(info.fields)); err != nil {
			return err
		}
		for i := range info.fields {
			if err := c.encodeReflect(enc, rv.Field(info.fields[i].index)); err != nil {
				return err
			}
		}
		return nil
	}
}

func (c *Config) encodeVariantKey(enc *wire.Encoder, idx int, v Variant) error {
	if c.VariantByIndex {
		return enc.Uint(uint64(idx))
	}
	return enc.Text(v.Name)
}

func encodeBigInt(enc *wire.Encoder, i *big.Int) error {
	if i.Sign() >= 0 {
		if i.IsUint64() {
			return enc.Uint(i.Uint64())
		}
		if err := enc.Tag(wire.TagPosBignum); err != nil {
			return err
		}
		return enc.Bytes(i.Bytes())
	}
	mag := new(big.Int).Neg(i)
	mag.Sub(mag, big.NewInt(1))
	if mag.IsUint64() {
		return enc.NegUint(mag.Uint64())
	}
	if err := enc.Tag(wire.TagNegBignum); err != nil {
		return err
	}
	return enc.Bytes(mag.Bytes())
}
