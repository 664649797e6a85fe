package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sergev/sony9pin/devices"
	"github.com/sergev/sony9pin/logger"
)

//go:embed sony9pin.toml
var defaultConfigData []byte

// Config represents the entire configuration file
type Config struct {
	Port              string          `toml:"port" yaml:"port"`
	Baud              int             `toml:"baud" yaml:"baud"`
	ResponseTimeoutMS int             `toml:"response_timeout_ms" yaml:"response_timeout_ms"`
	ReadyAttempts     int             `toml:"ready_attempts" yaml:"ready_attempts"`
	PollIntervalMS    int             `toml:"poll_interval_ms" yaml:"poll_interval_ms"`
	PollMaxFailures   int             `toml:"poll_max_failures" yaml:"poll_max_failures"`
	LogLevel          string          `toml:"log_level" yaml:"log_level"`
	LogFormat         string          `toml:"log_format" yaml:"log_format"`
	Device            []devices.Entry `toml:"device" yaml:"device"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Baud:              38400,
		ResponseTimeoutMS: 1000,
		ReadyAttempts:     30,
		PollMaxFailures:   10,
		LogLevel:          "info",
		LogFormat:         logger.FormatConsole,
	}
}

// ResponseTimeout is the reply window per command
func (c Config) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutMS) * time.Millisecond
}

// PollInterval is the pause between poll iterations
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud: %d (must be positive)", c.Baud)
	}
	if c.ResponseTimeoutMS <= 0 {
		return fmt.Errorf("invalid response_timeout_ms: %d (must be positive)", c.ResponseTimeoutMS)
	}
	if c.ReadyAttempts <= 0 {
		return fmt.Errorf("invalid ready_attempts: %d (must be positive)", c.ReadyAttempts)
	}
	if c.PollIntervalMS < 0 {
		return fmt.Errorf("invalid poll_interval_ms: %d (must not be negative)", c.PollIntervalMS)
	}
	if c.PollMaxFailures <= 0 {
		return fmt.Errorf("invalid poll_max_failures: %d (must be positive)", c.PollMaxFailures)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	for _, d := range c.Device {
		if d.Make == "" {
			return fmt.Errorf("device 0x%04x has no make", d.Code)
		}
	}
	return nil
}

// Decode parses configuration data over the defaults.
// Format is "toml" or "yaml".
func Decode(data []byte, format string) (Config, error) {
	conf := Default()
	switch format {
	case "toml":
		if _, err := toml.Decode(string(data), &conf); err != nil {
			return conf, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &conf); err != nil {
			return conf, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return conf, fmt.Errorf("unsupported config format %q", format)
	}
	if err := conf.Validate(); err != nil {
		return conf, err
	}
	return conf, nil
}

// formatOf picks the decoder by file extension
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "toml"
}

// Load reads an explicit configuration file
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	conf, err := Decode(data, formatOf(path))
	if err != nil {
		return conf, fmt.Errorf("%s: %w", path, err)
	}
	return conf, nil
}

// Path determines the config file path based on the operating system
func Path() (string, error) {
	var configDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "sony9pin")
	default:
		configDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user home directory: %w", err)
		}
	}

	return filepath.Join(configDir, ".sony9pin"), nil
}

// Initialize loads the per-user configuration file.
// If the file doesn't exist, it is created from the embedded default.
func Initialize() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return initializeAt(path)
}

func initializeAt(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Config{}, fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
		if err := os.WriteFile(path, defaultConfigData, 0644); err != nil {
			return Config{}, fmt.Errorf("failed to create default config file at %s: %w", path, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	conf, err := Decode(data, "toml")
	if err != nil {
		return conf, fmt.Errorf("%s: %w", path, err)
	}
	return conf, nil
}

// Devices returns the embedded device table with configured entries merged in
func (c Config) Devices() (*devices.Table, error) {
	table, err := devices.Load()
	if err != nil {
		return nil, err
	}
	table.Merge(c.Device)
	return table, nil
}
