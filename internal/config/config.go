package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vietdv277/sshdash/internal/dataset"
)

// LogConfig controls the structured logger
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
	File  string `yaml:"file,omitempty"`  // empty logs to stderr (CLI) or nowhere (TUI)
}

// AWSConfig is used when the dataset lives in S3
type AWSConfig struct {
	Profile  string `yaml:"profile,omitempty"`
	Region   string `yaml:"region,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"` // S3-compatible endpoint URL
}

// ServeConfig controls the HTTP API
type ServeConfig struct {
	Addr      string  `yaml:"addr,omitempty"`
	RateLimit float64 `yaml:"rate_limit,omitempty"` // requests per second per client
	Burst     int     `yaml:"burst,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DataPath  string      `yaml:"data_path,omitempty"`
	ExportDir string      `yaml:"export_dir,omitempty"`
	TopN      int         `yaml:"top_n,omitempty"`
	Log       LogConfig   `yaml:"log,omitempty"`
	AWS       AWSConfig   `yaml:"aws,omitempty"`
	Serve     ServeConfig `yaml:"serve,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		DataPath:  dataset.DefaultPath,
		ExportDir: ".",
		TopN:      5,
		Log:       LogConfig{Level: "warn"},
		Serve: ServeConfig{
			Addr:      ":8080",
			RateLimit: 10,
			Burst:     20,
		},
	}
}

// GetConfigDir returns the config directory path (~/.config/sshdash)
func GetConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".sshdash"
	}
	return filepath.Join(dir, "sshdash")
}

// GetConfigPath returns the config file path (~/.config/sshdash/config.yaml)
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// LoadConfig loads the configuration from path, or the default path when
// empty. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}

	return cfg, nil
}

// SaveConfig saves the configuration to path, or the default path when empty
func SaveConfig(path string, cfg *Config) error {
	if path == "" {
		path = GetConfigPath()
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setters maps settable keys to their field updates
var setters = map[string]func(*Config, string) error{
	"data_path":  func(c *Config, v string) error { c.DataPath = v; return nil },
	"export_dir": func(c *Config, v string) error { c.ExportDir = v; return nil },
	"top_n": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("top_n must be a positive integer")
		}
		c.TopN = n
		return nil
	},
	"log.level":    func(c *Config, v string) error { c.Log.Level = v; return nil },
	"log.file":     func(c *Config, v string) error { c.Log.File = v; return nil },
	"aws.profile":  func(c *Config, v string) error { c.AWS.Profile = v; return nil },
	"aws.region":   func(c *Config, v string) error { c.AWS.Region = v; return nil },
	"aws.endpoint": func(c *Config, v string) error { c.AWS.Endpoint = v; return nil },
	"serve.addr":   func(c *Config, v string) error { c.Serve.Addr = v; return nil },
	"serve.rate_limit": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("serve.rate_limit must be a non-negative number")
		}
		c.Serve.RateLimit = f
		return nil
	},
	"serve.burst": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("serve.burst must be a positive integer")
		}
		c.Serve.Burst = n
		return nil
	},
}

// Keys returns the settable configuration keys
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set updates a single key in the config file at path
func Set(path, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	if err := set(cfg, value); err != nil {
		return err
	}
	return SaveConfig(path, cfg)
}
