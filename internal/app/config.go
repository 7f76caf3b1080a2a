package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/yanet-platform/ackdrain/internal/monitoring/logger"
	"github.com/yanet-platform/ackdrain/internal/supervisor"
)

// Config is the application configuration. It is read once at startup.
type Config struct {
	Logger *logger.Config `yaml:"logging" toml:"logging"`

	Supervisor supervisor.Config `yaml:"supervisor" toml:"supervisor"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Logger:     logger.DefaultConfig(),
		Supervisor: supervisor.DefaultConfig(),
	}
}

// LoadConfig reads the configuration from path. The decoder is chosen by the
// file extension: ".toml" selects TOML, anything else is parsed as YAML. An
// empty path yields [DefaultConfig]. Sections missing from the file keep their
// default values.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	config := Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err = toml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal toml config: %w", err)
		}
	default:
		if err = yaml.UnmarshalStrict(data, &config); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal yaml config: %w", err)
		}
	}

	if config.Logger == nil {
		config.Logger = logger.DefaultConfig()
	}
	if len(config.Supervisor.Workers) == 0 {
		config.Supervisor = supervisor.DefaultConfig()
	}

	if err = config.Supervisor.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
