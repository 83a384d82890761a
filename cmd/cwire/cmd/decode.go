package cmd

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"cwire/cli"
	"cwire/value"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decodes a single binary item and prints it as JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cli.ReadInput(cmd, args)
		if err != nil {
			return err
		}
		tree, err := value.Decode(newDecoder(data))
		if err != nil {
			return err
		}
		if err := checkItem(tree); err != nil {
			return err
		}
		logger.Debug("decoded item", "kind", tree.Kind(), "bytes", len(data))
		doc, err := valueToJSON(tree)
		if err != nil {
			return err
		}
		jenc := json.NewEncoder(os.Stdout)
		jenc.SetIndent("", "  ")
		return errors.Wrap(jenc.Encode(doc), "error writing JSON output")
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
