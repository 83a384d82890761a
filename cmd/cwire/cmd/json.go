package cmd

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"cwire/value"
)

// jsonToValue maps a decoded JSON document onto a value tree. Object
// keys are sorted so conversion is deterministic.
func jsonToValue(v interface{}) (value.Value, error) {
	switch j := v.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(j), nil
	case string:
		return value.Text(j), nil
	case json.Number:
		return numberToValue(j)
	case []interface{}:
		out := make(value.Array, len(j))
		for i, el := range j {
			conv, err := jsonToValue(el)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(j))
		for k := range j {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(value.Map, 0, len(j))
		for _, k := range keys {
			conv, err := jsonToValue(j[k])
			if err != nil {
				return nil, err
			}
			out = append(out, value.Pair{Key: value.Text(k), Value: conv})
		}
		return out, nil
	default:
		return nil, errors.Errorf("cannot convert %T", v)
	}
}

func numberToValue(n json.Number) (value.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, errors.Errorf("invalid number %q", s)
		}
		if i.Sign() >= 0 {
			if i.IsUint64() {
				return value.Uint(i.Uint64()), nil
			}
		} else {
			mag := new(big.Int).Neg(i)
			mag.Sub(mag, big.NewInt(1))
			if mag.IsUint64() {
				return value.NegInt(mag.Uint64()), nil
			}
		}
		return value.BigInt{Int: i}, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return value.Float(f), nil
}

// valueToJSON maps a value tree onto the structures encoding/json
// understands. Byte strings become base64 text, tags convert as their
// content, and undefined flattens to null.
func valueToJSON(v value.Value) (interface{}, error) {
	switch t := v.(type) {
	case value.Uint:
		return json.Number(t.String()), nil
	case value.NegInt:
		return json.Number(t.String()), nil
	case value.BigInt:
		return json.Number(t.String()), nil
	case value.Bytes:
		return base64.StdEncoding.EncodeToString(t), nil
	case value.Text:
		return string(t), nil
	case value.Array:
		out := make([]interface{}, len(t))
		for i, el := range t {
			conv, err := valueToJSON(el)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case value.Map:
		out := make(map[string]interface{}, len(t))
		for _, p := range t {
			key, ok := p.Key.(value.Text)
			if !ok {
				return nil, errors.Errorf("cannot convert non-text map key %s", p.Key)
			}
			conv, err := valueToJSON(p.Value)
			if err != nil {
				return nil, err
			}
			out[string(key)] = conv
		}
		return out, nil
	case value.Tag:
		return valueToJSON(t.Inner)
	case value.Bool:
		return bool(t), nil
	case value.Null, value.Undefined:
		return nil, nil
	case value.Float:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.New("cannot convert non-finite float")
		}
		return json.Number(t.String()), nil
	default:
		return nil, errors.Errorf("cannot convert %s", v.Kind())
	}
}
