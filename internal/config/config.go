// Package config loads and validates racerkit configuration.
//
// Configuration is resolved by merging, lowest priority first: built-in
// defaults, a TOML or YAML config file, then environment variables
// (RACERKIT_* plus the racer daemon's own RUST_SRC_PATH).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables recognized by Load.
const (
	EnvBinaryPath     = "RACERKIT_RACER_BINARY"
	EnvRustSourcePath = "RACERKIT_RUST_SRC_PATH"
	EnvReadTimeout    = "RACERKIT_READ_TIMEOUT"
	EnvLogLevel       = "RACERKIT_LOG_LEVEL"

	// EnvRustSrc is racer's own source-path variable, honored as a
	// fallback when RACERKIT_RUST_SRC_PATH is unset.
	EnvRustSrc = "RUST_SRC_PATH"
)

// Common errors returned by config operations.
var (
	ErrUnsupportedFormat = errors.New("unsupported config file format")
	ErrInvalidTimeout    = errors.New("invalid read timeout")
)

// Config is the root racerkit configuration.
type Config struct {
	Racer   RacerConfig   `toml:"racer" yaml:"racer"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// RacerConfig configures the racer daemon integration.
type RacerConfig struct {
	// BinaryPath is an explicit path to the racer binary.
	// Empty means resolve from $PATH.
	BinaryPath string `toml:"binaryPath" yaml:"binaryPath"`

	// RustSourcePath is the Rust standard library source location.
	// Empty means fall back to $RUST_SRC_PATH.
	RustSourcePath string `toml:"rustSourcePath" yaml:"rustSourcePath"`

	// ReadTimeout bounds a single response read, as a duration string
	// (e.g. "5s"). Empty or "0" disables the timeout: a hung daemon then
	// blocks until restarted externally.
	ReadTimeout string `toml:"readTimeout" yaml:"readTimeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, the optional file at path, and the
// environment. A missing file is not an error; an unreadable or malformed
// one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// loadFile unmarshals a TOML or YAML file over cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // file doesn't exist, not an error
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	return nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBinaryPath); v != "" {
		cfg.Racer.BinaryPath = v
	}
	if v := os.Getenv(EnvRustSourcePath); v != "" {
		cfg.Racer.RustSourcePath = v
	} else if cfg.Racer.RustSourcePath == "" {
		cfg.Racer.RustSourcePath = os.Getenv(EnvRustSrc)
	}
	if v := os.Getenv(EnvReadTimeout); v != "" {
		cfg.Racer.ReadTimeout = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks that configured values are usable. Path existence for the
// binary and the source tree is enforced later, at launcher construction,
// where missing paths are fatal.
func (c Config) Validate() error {
	if _, err := c.ReadTimeout(); err != nil {
		return err
	}
	return nil
}

// ReadTimeout parses the configured read timeout. Zero means disabled.
func (c Config) ReadTimeout() (time.Duration, error) {
	s := c.Racer.ReadTimeout
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, s)
	}
	return d, nil
}

// DefaultPath returns the conventional config file location,
// $XDG_CONFIG_HOME/racerkit/config.toml or ~/.config/racerkit/config.toml.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "racerkit", "config.toml")
}
