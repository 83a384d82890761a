package cmd

import (
	"github.com/pkg/errors"

	"cwire/value"
)

// checkDuplicateKeys walks a decoded tree and rejects any map that binds
// the same key twice, at any nesting depth. The wire format tolerates
// duplicates; this enforces the reject_duplicate_keys config policy.
func checkDuplicateKeys(v value.Value) error {
	switch vv := v.(type) {
	case value.Array:
		for _, elem := range vv {
			if err := checkDuplicateKeys(elem); err != nil {
				return err
			}
		}
	case value.Map:
		for i, p := range vv {
			for j := 0; j < i; j++ {
				if value.Equal(vv[j].Key, p.Key) {
					return errors.Errorf("duplicate map key %s", p.Key)
				}
			}
			if err := checkDuplicateKeys(p.Key); err != nil {
				return err
			}
			if err := checkDuplicateKeys(p.Value); err != nil {
				return err
			}
		}
	case value.Tag:
		return checkDuplicateKeys(vv.Inner)
	}
	return nil
}

// checkItem applies the configured post-decode policies to one item.
func checkItem(v value.Value) error {
	if cfg.Decode.RejectDuplicateKeys {
		return checkDuplicateKeys(v)
	}
	return nil
}
