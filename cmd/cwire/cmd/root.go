package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"cwire/cli"
	"cwire/config"
	"cwire/log"
	"cwire/wire"
)

var (
	cfg    = config.DefaultConfig
	logger = log.WithComponent("cli")
)

var rootCmd = &cobra.Command{
	Use:   "cwire",
	Short: "Inspect, validate and convert concise binary data.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.CalledAs() == "init" || cmd.CalledAs() == "version" {
			return nil
		}
		homeDir := cli.GetHomeDir(cmd)
		exists, err := config.HomeDirExists(homeDir)
		if err != nil {
			return errors.Wrap(err, "error checking home directory")
		}
		if exists {
			loaded, err := config.ReadConfigFile(homeDir)
			if err != nil {
				return errors.Wrap(err, "error reading config file")
			}
			cfg = *loaded
		}
		level, err := log.NewLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		if exists {
			logger.Debug("loaded config", "home_dir", homeDir, "log_level", cfg.LogLevel)
		} else {
			logger.Debug("no home directory, using default config", "home_dir", homeDir)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String(cli.FlagHome, "~/.cwire", "Home directory for the tool's configuration.")
	rootCmd.PersistentFlags().Bool(cli.FlagHex, false, "Treat binary input as hex text.")
	rootCmd.PersistentFlags().String(cli.FlagOutput, "", "Write binary output to this file instead of stdout.")
}

// newDecoder applies the configured limits to a fresh decoder.
func newDecoder(data []byte) *wire.Decoder {
	dec := wire.NewDecoder(wire.NewSliceSource(data))
	if cfg.Decode.MaxBytesLen > 0 {
		dec.MaxBytesLen = uint64(cfg.Decode.MaxBytesLen)
	}
	if cfg.Decode.MaxContainerLen > 0 {
		dec.MaxContainerLen = uint64(cfg.Decode.MaxContainerLen)
	}
	if cfg.Decode.MaxDepth > 0 {
		dec.MaxDepth = cfg.Decode.MaxDepth
	}
	return dec
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
