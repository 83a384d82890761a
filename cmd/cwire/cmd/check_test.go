package cmd

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"cwire/value"
)

func decodeHexTree(t *testing.T, h string) value.Value {
	t.Helper()
	raw, err := hex.DecodeString(h)
	require.NoError(t, err)
	v, err := value.DecodeBytes(raw)
	require.NoError(t, err)
	return v
}

func TestCheckDuplicateKeys(t *testing.T) {
	// {1: 1, 1: 2}
	require.Error(t, checkDuplicateKeys(decodeHexTree(t, "a201010102")))
	// ["a", {"k": 1, "k": 2}]
	require.Error(t, checkDuplicateKeys(decodeHexTree(t, "826161a2616b01616b02")))
	// 0({"k": 1, "k": 2})
	require.Error(t, checkDuplicateKeys(decodeHexTree(t, "c0a2616b01616b02")))
	// distinct keys pass, and so does 1 next to "1"
	require.NoError(t, checkDuplicateKeys(decodeHexTree(t, "a2616101616201")))
	require.NoError(t, checkDuplicateKeys(decodeHexTree(t, "a20101613101")))
}

func TestCheckItemFollowsConfig(t *testing.T) {
	dup := decodeHexTree(t, "a2616101616102")

	prev := cfg.Decode.RejectDuplicateKeys
	defer func() { cfg.Decode.RejectDuplicateKeys = prev }()

	cfg.Decode.RejectDuplicateKeys = false
	require.NoError(t, checkItem(dup))

	cfg.Decode.RejectDuplicateKeys = true
	require.Error(t, checkItem(dup))
}
