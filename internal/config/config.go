package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DataDir      string    `yaml:"data_dir"`
	DatabasePath string    `yaml:"database_path"`
	SessionPath  string    `yaml:"session_path"`
	Log          LogConfig `yaml:"log"`
}

// LogConfig controls the log file
type LogConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads config from the user's config directory, then applies
// environment overrides (a .env file in the working directory is honored).
// Returns default config if file doesn't exist
func Load() (*Config, error) {
	_ = godotenv.Load()

	path, err := Path()
	if err != nil {
		config := &Config{}
		config.applyEnv()
		config.applyDefaults()
		return config, nil
	}
	return LoadFile(path)
}

// LoadFile loads config from path with defaults and environment overrides
func LoadFile(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}

	config.applyEnv()
	config.applyDefaults()
	return &config, nil
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Path returns the path to the config file
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "tick", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "tick", "config.yaml"), nil
}

// defaultDataDir mirrors the database location rules
func defaultDataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "tick")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "tick")
}

// applyEnv overrides file values with TICK_* variables
func (c *Config) applyEnv() {
	if v := os.Getenv("TICK_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("TICK_DB_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("TICK_SESSION_PATH"); v != "" {
		c.SessionPath = v
	}
	if v := os.Getenv("TICK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TICK_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v, err := strconv.ParseBool(os.Getenv("TICK_LOG_COMPRESS")); err == nil {
		c.Log.Compress = v
	}
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, "tick.db")
	}
	if c.SessionPath == "" {
		c.SessionPath = filepath.Join(c.DataDir, "session.yaml")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, "logs", "tick.log")
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 28
	}
}
