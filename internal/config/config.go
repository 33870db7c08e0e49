package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all calcsteps configuration.
type Config struct {
	Steps    StepsConfig    `yaml:"steps"`
	Stream   StreamConfig   `yaml:"stream"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
	Integral IntegralConfig `yaml:"integral"`
}

// StepsConfig tunes the step narrator.
type StepsConfig struct {
	MaxDepth       int  `yaml:"max_depth"`
	ChainDetection bool `yaml:"chain_detection"`
	MaxOrder       int  `yaml:"max_order"` // highest orderOfDerivative accepted
}

// StreamConfig configures the newline-delimited JSON loop.
type StreamConfig struct {
	Mode         string `yaml:"mode"`
	Workers      int    `yaml:"workers"`
	MaxLineBytes int    `yaml:"max_line_bytes"`
}

// HTTPConfig configures the HTTP front end.
type HTTPConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

type IntegralConfig struct {
	QuadratureFallback bool `yaml:"quadrature_fallback"`
}

// ValidModes are the request types a stream can serve.
var ValidModes = []string{"basic", "derivative", "derivative-steps", "integral", "matrix"}

var validLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Steps: StepsConfig{
			MaxDepth:       2,
			ChainDetection: true,
			MaxOrder:       10,
		},
		Stream: StreamConfig{
			Mode:         "derivative-steps",
			Workers:      1,
			MaxLineBytes: 1 << 20,
		},
		HTTP: HTTPConfig{
			Addr:         ":3001",
			ReadTimeout:  "15s",
			WriteTimeout: "15s",
			MaxBodyBytes: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Integral: IntegralConfig{
			QuadratureFallback: true,
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies CALCSTEPS_* environment variables. Values that
// do not parse are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CALCSTEPS_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Steps.MaxDepth = n
		}
	}
	if v := os.Getenv("CALCSTEPS_MODE"); v != "" {
		c.Stream.Mode = v
	}
	if v := os.Getenv("CALCSTEPS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Stream.Workers = n
		}
	}
	if v := os.Getenv("CALCSTEPS_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("CALCSTEPS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetReadTimeout returns the HTTP read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTP.ReadTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetWriteTimeout returns the HTTP write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTP.WriteTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Steps.MaxDepth < 0 {
		return fmt.Errorf("steps.max_depth must be >= 0, got %d", c.Steps.MaxDepth)
	}
	if c.Steps.MaxOrder < 1 {
		return fmt.Errorf("steps.max_order must be >= 1, got %d", c.Steps.MaxOrder)
	}
	if !contains(ValidModes, c.Stream.Mode) {
		return fmt.Errorf("invalid stream mode: %s (valid: %v)", c.Stream.Mode, ValidModes)
	}
	if c.Stream.Workers < 1 {
		return fmt.Errorf("stream.workers must be >= 1, got %d", c.Stream.Workers)
	}
	if c.Stream.MaxLineBytes < 1 {
		return fmt.Errorf("stream.max_line_bytes must be >= 1, got %d", c.Stream.MaxLineBytes)
	}
	if c.HTTP.MaxBodyBytes < 1 {
		return fmt.Errorf("http.max_body_bytes must be >= 1, got %d", c.HTTP.MaxBodyBytes)
	}
	for name, v := range map[string]string{"http.read_timeout": c.HTTP.ReadTimeout, "http.write_timeout": c.HTTP.WriteTimeout} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, validLevels)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid logging format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
