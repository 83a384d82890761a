package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cwire/cli"
	"cwire/value"
	"cwire/wire"
)

var diagCmd = &cobra.Command{
	Use:   "diag [file]",
	Short: "Prints the diagnostic notation of each encoded item in the input.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cli.ReadInput(cmd, args)
		if err != nil {
			return err
		}
		logger.Debug("read input", "bytes", len(data))
		dec := newDecoder(data)
		for {
			if _, err := dec.Peek(); err != nil {
				if wire.IsEndOfInput(err) {
					return nil
				}
				return err
			}
			v, err := value.Decode(dec)
			if err != nil {
				return err
			}
			fmt.Println(v.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(diagCmd)
}
