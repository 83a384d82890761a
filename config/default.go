package config

import (
	"bytes"
	"io"
	"os"
	"path"
	"text/template"

	"github.com/pkg/errors"

	"cwire/log"
	"cwire/wire"
)

var DefaultConfig = Config{
	LogLevel: log.LevelInfo.String(),
	Decode: DecodeConfig{
		MaxBytesLen:         int64(wire.DefaultMaxBytesLen),
		MaxContainerLen:     int64(wire.DefaultMaxContainerLen),
		MaxDepth:            wire.DefaultMaxDepth,
		RejectDuplicateKeys: false,
	},
}

const defaultConfigTemplateText = `# cwire Config File

# Sets the log level. Can be one of the following values:
# - error
# - warn
# - info
# - debug
# - trace
log_level = "{{.LogLevel}}"

# Configures decoding limits. Inputs that declare lengths past these
# caps are rejected before any allocation happens.
[decode]
  # Sets the maximum declared length of a single byte or text string.
  max_bytes_len = {{.Decode.MaxBytesLen}}
  # Sets the maximum declared element count of a definite-length
  # array or map.
  max_container_len = {{.Decode.MaxContainerLen}}
  # Sets the maximum nesting depth.
  max_depth = {{.Decode.MaxDepth}}
  # Rejects maps that repeat a key instead of keeping the last value.
  reject_duplicate_keys = {{.Decode.RejectDuplicateKeys}}
`

var defaultConfigTemplate *template.Template

func GenerateDefaultConfigFile() []byte {
	buf := new(bytes.Buffer)
	if err := defaultConfigTemplate.Execute(buf, DefaultConfig); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func ReadConfigFile(homeDir string) (*Config, error) {
	f, err := os.OpenFile(path.Join(homeDir, "config.toml"), os.O_RDONLY, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "error opening config file for reading")
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}
	return cfg, nil
}

func WriteDefaultConfigFile(homeDir string) error {
	f, err := os.OpenFile(path.Join(homeDir, "config.toml"), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return errors.Wrap(err, "error opening config file for writing")
	}
	defer f.Close()
	rd := bytes.NewReader(GenerateDefaultConfigFile())
	if _, err := io.Copy(f, rd); err != nil {
		return errors.Wrap(err, "error writing config file")
	}
	return nil
}

func init() {
	tmpl := template.New("defaultConfig")
	t, err := tmpl.Parse(defaultConfigTemplateText)
	if err != nil {
		panic(err)
	}
	defaultConfigTemplate = t
}
