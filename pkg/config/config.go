// Package config provides configuration loading for the console.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file is missing or fields are unset.
const (
	DefaultAPIURL       = "http://localhost:9091"
	DefaultPollInterval = Duration(2 * time.Second)
	DefaultLogLevel     = "info"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)

	return nil
}

// Config is the console configuration, usually loaded from
// ~/.pipedeck.yaml or the path given with --config.
type Config struct {
	APIURL       string   `yaml:"api_url"`
	PollInterval Duration `yaml:"poll_interval"`
	LogLevel     string   `yaml:"log_level"`
	LogFormat    string   `yaml:"log_format"`
	Tracing      bool     `yaml:"tracing"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		APIURL:       DefaultAPIURL,
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads a config file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.applyDefaults()

	return config, nil
}

// LoadOrDefault attempts to load a config file, falling back to defaults
// when the file does not exist.
func LoadOrDefault(path string) Config {
	config, err := Load(path)
	if err != nil {
		return Default()
	}

	return config
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}

	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
