package serial

import (
	"bytes"
	"math"
	"math/big"
	"reflect"

	"github.com/pkg/errors"

	"cwire/value"
	"cwire/wire"
)

// decodeFromValue is the second half of content buffering: typed
// deserialization replayed against an owned value tree instead of the
// byte source. Untagged enum resolution and flatten run through here,
// possibly several times per tree. Everything it produces is owned.
func (c *Config) decodeFromValue(v value.Value, rv reflect.Value) error {
	if rv.CanAddr() && rv.Addr().CanInterface() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			// Custom decoders speak the wire protocol, so replay the
			// tree through a scratch encode. The original byte source
			// is never touched again.
			var buf bytes.Buffer
			if err := v.Encode(wire.NewEncoder(&buf)); err != nil {
				return err
			}
			return u.UnmarshalCWire(wire.NewDecoder(wire.NewSliceSource(buf.Bytes())))
		}
	}

	t := rv.Type()
	switch t {
	case bigIntPtrType:
		i, err := bigIntFromValue(v)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(i))
		return nil
	case bigIntType:
		i, err := bigIntFromValue(v)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(*i))
		return nil
	case charType:
		s, ok := v.(value.Text)
		if !ok {
			return treeErr("char requires a text string, found " + v.Kind().String())
		}
		r := []rune(string(s))
		if len(r) != 1 {
			return treeErr("char requires a one-rune text string")
		}
		rv.SetInt(int64(r[0]))
		return nil
	}

	if rv.Kind() == reflect.Interface {
		if t == valueType {
			rv.Set(reflect.ValueOf(v))
			return nil
		}
		if def := enumFor(t); def != nil {
			if def.untagged {
				return c.assignUntagged(v, def, rv)
			}
			return c.variantFromValue(v, def, rv)
		}
		if t.NumMethod() == 0 {
			rv.Set(reflect.ValueOf(v))
			return nil
		}
		return errors.Errorf("cwire/serial: cannot decode into unregistered interface %s", t)
	}

	switch rv.Kind() {
	case reflect.Bool:
		b, ok := v.(value.Bool)
		if !ok {
			return treeErr("expected bool, found " + v.Kind().String())
		}
		rv.SetBool(bool(b))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := signedFromValue(v)
		if err != nil {
			return err
		}
		if rv.OverflowInt(i) {
			return treeErr("integer overflows " + t.String())
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, ok := v.(value.Uint)
		if !ok {
			return treeErr("expected unsigned integer, found " + v.Kind().String())
		}
		if rv.OverflowUint(uint64(u)) {
			return treeErr("integer overflows " + t.String())
		}
		rv.SetUint(uint64(u))
		return nil
	case reflect.Float32, reflect.Float64:
		f, ok := v.(value.Float)
		if !ok {
			return treeErr("expected float, found " + v.Kind().String())
		}
		rv.SetFloat(float64(f))
		return nil
	case reflect.String:
		s, ok := v.(value.Text)
		if !ok {
			return treeErr("expected text string, found " + v.Kind().String())
		}
		rv.SetString(string(s))
		return nil
	case reflect.Slice:
		if _, isNull := v.(value.Null); isNull {
			rv.Set(reflect.Zero(t))
			return nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			b, ok := v.(value.Bytes)
			if !ok {
				return treeErr("expected byte string, found " + v.Kind().String())
			}
			rv.SetBytes([]byte(b))
			return nil
		}
		arr, ok := v.(value.Array)
		if !ok {
			return treeErr("expected array, found " + v.Kind().String())
		}
		out := reflect.MakeSlice(t, len(arr), len(arr))
		for i, el := range arr {
			if err := c.decodeFromValue(el, out.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			b, ok := v.(value.Bytes)
			if !ok {
				return treeErr("expected byte string, found " + v.Kind().String())
			}
			if len(b) != rv.Len() {
				return treeErr("byte string length does not match " + t.String())
			}
			reflect.Copy(rv, reflect.ValueOf([]byte(b)))
			return nil
		}
		arr, ok := v.(value.Array)
		if !ok {
			return treeErr("expected array, found " + v.Kind().String())
		}
		if len(arr) != rv.Len() {
			return treeErr("array length does not match " + t.String())
		}
		for i, el := range arr {
			if err := c.decodeFromValue(el, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if _, isNull := v.(value.Null); isNull {
			rv.Set(reflect.Zero(t))
			return nil
		}
		m, ok := v.(value.Map)
		if !ok {
			return treeErr("expected map, found " + v.Kind().String())
		}
		out := reflect.MakeMapWithSize(t, len(m))
		for _, p := range m {
			kv := reflect.New(t.Key()).Elem()
			if err := c.decodeFromValue(p.Key, kv); err != nil {
				return err
			}
			if c.RejectDuplicateKeys && out.MapIndex(kv).IsValid() {
				return errors.Errorf("cwire/serial: duplicate map key %v", kv.Interface())
			}
			vv := reflect.New(t.Elem()).Elem()
			if err := c.decodeFromValue(p.Value, vv); err != nil {
				return err
			}
			out.SetMapIndex(kv, vv)
		}
		rv.Set(out)
		return nil
	case reflect.Ptr:
		if _, isNull := v.(value.Null); isNull {
			rv.Set(reflect.Zero(t))
			return nil
		}
		pv := reflect.New(t.Elem())
		if err := c.decodeFromValue(v, pv.Elem()); err != nil {
			return err
		}
		rv.Set(pv)
		return nil
	case reflect.Struct:
		m, ok := v.(value.Map)
		if !ok {
			return treeErr("expected map for " + t.String() + ", found " + v.Kind().String())
		}
		return c.assignStructFromMap(m, rv, infoOf(t))
	default:
		return errors.Errorf("cwire/serial: cannot decode into %s", t)
	}
}

// assignStructFromMap fills a struct from a buffered map. Keys matching
// outer fields are consumed; with flatten involved, the unconsumed
// remainder is handed to each flattened field instead of being discarded.
func (c *Config) assignStructFromMap(m value.Map, rv reflect.Value, info *structInfo) error {
	flatten := info.hasFlatten()
	var residual value.Map
	var seen map[string]bool
	if c.RejectDuplicateKeys {
		seen = make(map[string]bool)
	}
	for _, p := range m {
		key, ok := p.Key.(value.Text)
		if !ok {
			if flatten {
				residual = append(residual, p)
			}
			continue
		}
		if seen != nil {
			if seen[string(key)] {
				return errors.Errorf("cwire/serial: duplicate map key %q", string(key))
			}
			seen[string(key)] = true
		}
		f := info.byName[string(key)]
		if f == nil {
			if flatten {
				residual = append(residual, p)
			}
			continue
		}
		if f.skipDecode {
			continue
		}
		if err := c.decodeFromValue(p.Value, rv.Field(f.index)); err != nil {
			return err
		}
	}
	for i := range info.fields {
		f := &info.fields[i]
		if !f.flatten {
			continue
		}
		fv := rv.Field(f.index)
		if fv.Kind() == reflect.Ptr {
			// A nil pointer writes no keys, so an untouched residual
			// decodes back to nil rather than a zero struct.
			if !residualTouches(residual, fv.Type().Elem()) {
				continue
			}
			pv := reflect.New(fv.Type().Elem())
			if err := c.decodeFromValue(residual, pv.Elem()); err != nil {
				return err
			}
			fv.Set(pv)
			continue
		}
		if err := c.decodeFromValue(residual, fv); err != nil {
			return err
		}
	}
	return nil
}

// residualTouches reports whether any leftover key would land in a field
// of t. Types whose key set is open-ended count any non-empty residual.
func residualTouches(m value.Map, t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return len(m) > 0
	}
	info := infoOf(t)
	if info.hasFlatten() {
		return len(m) > 0
	}
	for _, p := range m {
		key, ok := p.Key.(value.Text)
		if !ok {
			continue
		}
		if info.byName[string(key)] != nil {
			return true
		}
	}
	return false
}

func (c *Config) assignUntagged(tree value.Value, def *enumDef, rv reflect.Value) error {
	for _, v := range def.variants {
		pv := reflect.New(v.Type).Elem()
		if err := c.decodeFromValue(tree, pv); err == nil {
			rv.Set(pv)
			return nil
		}
	}
	return errors.Wrapf(ErrNoVariantMatch, "decoding into %s", rv.Type())
}

func (c *Config) variantFromValue(v value.Value, def *enumDef, rv reflect.Value) error {
	switch vv := v.(type) {
	case value.Text:
		idx, ok := def.byName[string(vv)]
		if !ok {
			return treeErr("unknown enum variant " + string(vv))
		}
		return assignUnitVariant(0, def, idx, rv)
	case value.Uint:
		if uint64(vv) >= uint64(len(def.variants)) {
			return treeErr("enum variant index out of range")
		}
		return assignUnitVariant(0, def, int(vv), rv)
	case value.Map:
		if len(vv) != 1 {
			return treeErr("enum map must contain exactly one entry")
		}
		idx, err := variantKeyFromValue(vv[0].Key, def)
		if err != nil {
			return err
		}
		variant := def.variants[idx]
		payload := reflect.New(variant.Type).Elem()
		switch variant.Shape {
		case UnitVariant:
			return treeErr("unit variant " + variant.Name + " takes no payload")
		case TupleVariant:
			arr, ok := vv[0].Value.(value.Array)
			if !ok {
				return treeErr("tuple variant payload must be an array")
			}
			tinfo := infoOf(variant.Type)
			if len(arr) != len(tinfo.fields) {
				return treeErr("tuple variant arity mismatch")
			}
			for i, el := range arr {
				if err := c.decodeFromValue(el, payload.Field(tinfo.fields[i].index)); err != nil {
					return err
				}
			}
		default:
			if err := c.decodeFromValue(vv[0].Value, payload); err != nil {
				return err
			}
		}
		rv.Set(payload)
		return nil
	default:
		return treeErr("expected enum variant, found " + v.Kind().String())
	}
}

func variantKeyFromValue(k value.Value, def *enumDef) (int, error) {
	switch kv := k.(type) {
	case value.Text:
		idx, ok := def.byName[string(kv)]
		if !ok {
			return 0, treeErr("unknown enum variant " + string(kv))
		}
		return idx, nil
	case value.Uint:
		if uint64(kv) >= uint64(len(def.variants)) {
			return 0, treeErr("enum variant index out of range")
		}
		return int(kv), nil
	default:
		return 0, treeErr("expected enum variant identifier, found " + k.Kind().String())
	}
}

func signedFromValue(v value.Value) (int64, error) {
	switch iv := v.(type) {
	case value.Uint:
		if uint64(iv) > math.MaxInt64 {
			return 0, treeErr("integer overflows int64")
		}
		return int64(iv), nil
	case value.NegInt:
		if uint64(iv) > math.MaxInt64 {
			return 0, treeErr("integer overflows int64")
		}
		return -1 - int64(iv), nil
	default:
		return 0, treeErr("expected integer, found " + v.Kind().String())
	}
}

func bigIntFromValue(v value.Value) (*big.Int, error) {
	switch iv := v.(type) {
	case value.Uint:
		return new(big.Int).SetUint64(uint64(iv)), nil
	case value.NegInt:
		i := new(big.Int).SetUint64(uint64(iv))
		i.Add(i, big.NewInt(1))
		i.Neg(i)
		return i, nil
	case value.BigInt:
		return new(big.Int).Set(iv.Int), nil
	default:
		return nil, treeErr("expected integer or bignum, found " + v.Kind().String())
	}
}

// treeErr builds type mismatches for the buffered path, where the
// original byte offsets are gone.
func treeErr(detail string) error {
	return wire.NewDecodeError(wire.KindTypeMismatch, 0, detail+" in buffered content")
}
