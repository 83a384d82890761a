package cmd

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"cwire/cli"
	"cwire/wire"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encodes a JSON document into its binary form.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cli.ReadInput(cmd, args)
		if err != nil {
			return err
		}
		jdec := json.NewDecoder(bytes.NewReader(data))
		jdec.UseNumber()
		var doc interface{}
		if err := jdec.Decode(&doc); err != nil {
			return errors.Wrap(err, "error parsing JSON input")
		}
		tree, err := jsonToValue(doc)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := tree.Encode(wire.NewEncoder(&buf)); err != nil {
			return err
		}
		logger.Debug("encoded item", "json_bytes", len(data), "wire_bytes", buf.Len())
		return cli.WriteOutput(cmd, buf.Bytes())
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
