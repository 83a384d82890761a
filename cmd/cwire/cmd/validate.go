package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"cwire/cli"
	"cwire/value"
	"cwire/wire"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Checks that the input is a well-formed sequence of encoded items.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cli.ReadInput(cmd, args)
		if err != nil {
			return err
		}
		dec := newDecoder(data)
		items := 0
		for {
			if _, err := dec.Peek(); err != nil {
				if wire.IsEndOfInput(err) {
					break
				}
				return err
			}
			tree, err := value.Decode(dec)
			if err != nil {
				return errors.Wrapf(err, "malformed item %d", items)
			}
			if err := checkItem(tree); err != nil {
				return errors.Wrapf(err, "invalid item %d", items)
			}
			logger.Trace("validated item", "index", items, "offset", dec.Offset())
			items++
		}
		logger.Debug("input is well formed", "items", items, "bytes", len(data))
		fmt.Printf("ok: %d item(s), %d byte(s)\n", items, len(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
