package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/balkashynov/reefkeeper/internal/db"
	"github.com/balkashynov/reefkeeper/internal/logger"
)

type Config struct {
	Env           string `mapstructure:"env"`
	DataDir       string `mapstructure:"data_dir"`
	Database      string `mapstructure:"database"` // empty => <data_dir>/reef.db
	Log           LogConfig
	Notifications NotificationsConfig
	Seed          SeedConfig
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // only used in production
}

type NotificationsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DatabasePath returns the sqlite file to open
func (c *Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.DataDir, db.DefaultFile)
}

// LoggerConfig maps the log section onto the logger package's settings
func (c *Config) LoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig(c.Env)
	if c.Log.Level != "" {
		cfg.Level = c.Log.Level
	}
	if c.Log.File != "" {
		cfg.Filename = c.Log.File
	} else if cfg.Filename != "" {
		cfg.Filename = filepath.Join(c.DataDir, cfg.Filename)
	}
	return cfg
}

// Load reads configuration from a YAML file and REEF_* environment variables.
// Environment variables take precedence over file values.
//
// Config file search order (first found is used):
// 1. configPath argument
// 2. Path from REEF_CONFIG_FILE environment variable
// 3. ~/.reef/config.yaml
//
// A missing file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("REEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := parseDurations(v, &config); err != nil {
		return nil, fmt.Errorf("failed to parse durations: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultDataDir returns ~/.reef, or ./.reef when the home directory is unknown
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reef"
	}
	return filepath.Join(home, ".reef")
}

func findConfigFile() string {
	if envPath := os.Getenv("REEF_CONFIG_FILE"); envPath != "" {
		if fileExists(envPath) {
			return envPath
		}
	}
	candidate := filepath.Join(DefaultDataDir(), "config.yaml")
	if fileExists(candidate) {
		return candidate
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("database", "")

	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")

	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.poll_interval", "30s")

	v.SetDefault("seed.enabled", true)
}

func parseDurations(v *viper.Viper, config *Config) error {
	if interval := v.GetString("notifications.poll_interval"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid notifications.poll_interval: %w", err)
		}
		config.Notifications.PollInterval = d
	}
	return nil
}

func validateConfig(config *Config) error {
	switch config.Env {
	case "development", "dev", "testing", "test", "production", "prod":
	default:
		return fmt.Errorf("env must be one of development, testing, production")
	}
	if config.DataDir == "" && config.Database == "" {
		return fmt.Errorf("data_dir must be set")
	}
	if config.Notifications.PollInterval <= 0 {
		return fmt.Errorf("notifications.poll_interval must be positive")
	}
	return nil
}
