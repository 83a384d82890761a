package config

import (
	"io"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Decode   DecodeConfig `mapstructure:"decode"`
}

type DecodeConfig struct {
	MaxBytesLen         int64 `mapstructure:"max_bytes_len"`
	MaxContainerLen     int64 `mapstructure:"max_container_len"`
	MaxDepth            int   `mapstructure:"max_depth"`
	RejectDuplicateKeys bool  `mapstructure:"reject_duplicate_keys"`
}

func ReadConfig(r io.Reader) (*Config, error) {
	decoder := toml.NewDecoder(r)
	decoder.SetTagName("mapstructure")
	config := &Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(err, "error decoding config file")
	}
	return config, nil
}
