package cli

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ReadInput returns the data a subcommand should operate on: the file
// named by the first positional argument, or stdin when no argument is
// given. With --hex set, the input is treated as hex text.
func ReadInput(cmd *cobra.Command, args []string) ([]byte, error) {
	var data []byte
	if len(args) > 0 && args[0] != "-" {
		var err error
		data, err = ioutil.ReadFile(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "error reading input file")
		}
	} else {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			return nil, errors.New("refusing to read binary data from a terminal - pass a file or pipe input")
		}
		var err error
		data, err = ioutil.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "error reading stdin")
		}
	}

	useHex, err := cmd.Flags().GetBool(FlagHex)
	if err != nil {
		panic(err)
	}
	if useHex {
		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\t', '\r', '\n':
				return -1
			}
			return r
		}, string(data))
		data, err = hex.DecodeString(cleaned)
		if err != nil {
			return nil, errors.Wrap(err, "error decoding hex input")
		}
	}
	return data, nil
}

// WriteOutput writes binary results to the file named by --output, or to
// stdout. Binary data headed for a terminal goes out hex-encoded instead.
func WriteOutput(cmd *cobra.Command, data []byte) error {
	outPath, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		panic(err)
	}
	if outPath != "" && outPath != "-" {
		return errors.Wrap(ioutil.WriteFile(outPath, data, 0644), "error writing output file")
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		_, err = os.Stdout.WriteString(hex.EncodeToString(data) + "\n")
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
