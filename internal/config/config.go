package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user defaults. It is only ever read; usbwrite keeps no state
// between runs.
type Config struct {
	// BarWidth is the progress bar length; 0 sizes it to the terminal.
	BarWidth int `yaml:"bar_width"`
	// BlockSize overrides the copy chunk size; 0 uses the device block size.
	BlockSize int `yaml:"block_size"`
	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level"`
	// Unmount answers the unmount question without asking, like --unmount.
	Unmount bool `yaml:"unmount"`
}

// EnvConfigFile names the variable that points at an alternate config file.
const EnvConfigFile = "USBWRITE_CONFIG"

var config = Default()

// Default returns the built-in settings.
func Default() *Config {
	return &Config{LogLevel: "warn"}
}

// DefaultPath returns $USBWRITE_CONFIG, else the file under the user config
// directory.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "usbwrite", "config.yaml")
}

// InitConfig loads path, or DefaultPath when path is empty. A missing file
// leaves the defaults in place.
func InitConfig(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			config = Default()
			return nil
		}
		return err
	}
	config = cfg
	return nil
}

// Load reads one YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the copy engine cannot use.
func (c *Config) Validate() error {
	if c.BarWidth < 0 {
		return fmt.Errorf("bar_width must not be negative")
	}
	if c.BlockSize < 0 {
		return fmt.Errorf("block_size must not be negative")
	}
	return nil
}

func GetConfig() *Config {
	return config
}
