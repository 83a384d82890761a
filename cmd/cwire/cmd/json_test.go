package cmd

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"cwire/value"
	"cwire/wire"
)

func parseJSON(t *testing.T, doc string) interface{} {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.UseNumber()
	var out interface{}
	require.NoError(t, dec.Decode(&out))
	return out
}

func TestJSONToValue(t *testing.T) {
	doc := parseJSON(t, `{"b": [1, -2, 1.5], "a": "x", "c": null, "d": true}`)
	tree, err := jsonToValue(doc)
	require.NoError(t, err)

	// Object keys sort, so conversion is deterministic.
	want := value.Map{
		{Key: value.Text("a"), Value: value.Text("x")},
		{Key: value.Text("b"), Value: value.Array{value.Uint(1), value.NegInt(1), value.Float(1.5)}},
		{Key: value.Text("c"), Value: value.Null{}},
		{Key: value.Text("d"), Value: value.Bool(true)},
	}
	require.True(t, value.Equal(want, tree), "got %s", tree)
}

func TestJSONBignums(t *testing.T) {
	tree, err := jsonToValue(parseJSON(t, `18446744073709551616`))
	require.NoError(t, err)
	want := value.BigInt{Int: new(big.Int).Lsh(big.NewInt(1), 64)}
	require.True(t, value.Equal(want, tree))

	tree, err = jsonToValue(parseJSON(t, `-18446744073709551617`))
	require.NoError(t, err)
	neg := new(big.Int).Lsh(big.NewInt(1), 64)
	neg.Add(neg, big.NewInt(1))
	neg.Neg(neg)
	require.True(t, value.Equal(value.BigInt{Int: neg}, tree))

	// The largest magnitudes the native majors cover stay native.
	tree, err = jsonToValue(parseJSON(t, `-18446744073709551616`))
	require.NoError(t, err)
	require.True(t, value.Equal(value.NegInt(18446744073709551615), tree))
}

func TestValueToJSON(t *testing.T) {
	tree := value.Map{
		{Key: value.Text("n"), Value: value.Uint(7)},
		{Key: value.Text("raw"), Value: value.Bytes{1, 2, 3}},
		{Key: value.Text("tagged"), Value: value.Tag{Number: 1, Inner: value.Uint(5)}},
		{Key: value.Text("gone"), Value: value.Undefined{}},
	}
	doc, err := valueToJSON(tree)
	require.NoError(t, err)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.JSONEq(t, `{"n": 7, "raw": "AQID", "tagged": 5, "gone": null}`, string(raw))

	_, err = valueToJSON(value.Map{{Key: value.Uint(1), Value: value.Uint(2)}})
	require.Error(t, err)

	nan := value.Float(0)
	nan = value.Float(float64(nan) / float64(nan))
	_, err = valueToJSON(nan)
	require.Error(t, err)
}

func TestJSONRoundTripThroughWire(t *testing.T) {
	doc := parseJSON(t, `{"list": [1, 2, {"deep": "yes"}], "ok": true}`)
	tree, err := jsonToValue(doc)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tree.Encode(wire.NewEncoder(&buf)))
	back, err := value.DecodeBytes(buf.Bytes())
	require.NoError(t, err)
	require.True(t, value.Equal(tree, back))
}
