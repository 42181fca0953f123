package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment fallbacks applied by Load when the file leaves a value empty.
const (
	EnvUserAgent = "DBPEDIAFACTS_USER_AGENT"
	EnvDBPath    = "DBPEDIAFACTS_DB_PATH"
)

// Config holds the application configuration.
type Config struct {
	Request RequestConfig `yaml:"request"`
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Timeout   Duration `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent"` // empty uses the built-in agent string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Request: RequestConfig{
			Timeout: Duration(60 * time.Second),
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/dbpediafacts.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/facts.db",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, defaults are merged with its values; the file is not rewritten.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)
	expandPaths(cfg)

	if cfg.Request.Timeout < 0 {
		return nil, fmt.Errorf("invalid request timeout %s: must not be negative", time.Duration(cfg.Request.Timeout))
	}

	return cfg, nil
}

// applyEnv fills empty values from the environment. Values are never written back to disk.
func applyEnv(cfg *Config) {
	if cfg.Request.UserAgent == "" {
		if ua := os.Getenv(EnvUserAgent); ua != "" {
			cfg.Request.UserAgent = ua
		}
	}
	if p := os.Getenv(EnvDBPath); p != "" && cfg.DB.Path == DefaultConfig().DB.Path {
		cfg.DB.Path = p
	}
}

func expandPaths(cfg *Config) {
	cfg.DB.Path = os.ExpandEnv(cfg.DB.Path)
	cfg.Log.Server.Path = os.ExpandEnv(cfg.Log.Server.Path)
	cfg.Log.Requests.Path = os.ExpandEnv(cfg.Log.Requests.Path)
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# dbpediafacts configuration
# ---------------------------
# Supported units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
# Log levels: DEBUG, INFO, WARN, ERROR

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
