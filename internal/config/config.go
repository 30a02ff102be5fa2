package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines console configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Dirs   DirsConfig   `yaml:"dirs"`
	Log    LogConfig    `yaml:"log"`
	Jobs   JobsConfig   `yaml:"jobs"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
	// BackupCount is the number of backups kept next to the store; 0 keeps all.
	BackupCount int `yaml:"backup_count"`
}

// DirsConfig names the two directories whose membership encodes enabled/disabled.
type DirsConfig struct {
	Enabled  string `yaml:"enabled"`
	Disabled string `yaml:"disabled"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// JobsConfig holds cron specs for background jobs. An empty spec disables the job.
type JobsConfig struct {
	Reconcile      string `yaml:"reconcile"`
	Backup         string `yaml:"backup"`
	EnforceWindows string `yaml:"enforce_windows"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		DB: DBConfig{
			Path:        "ConfigSchedulerWeb.db",
			BackupCount: 10,
		},
		Dirs: DirsConfig{
			Enabled:  "configs",
			Disabled: "disabled_configs",
		},
		Log: LogConfig{
			Level: "info",
		},
		Jobs: JobsConfig{
			Reconcile: "@every 10m",
			Backup:    "@daily",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFSCHED_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("CONFSCHED_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("CONFSCHED_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CONFSCHED_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("CONFSCHED_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if countStr := os.Getenv("CONFSCHED_BACKUP_COUNT"); countStr != "" {
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CONFSCHED_BACKUP_COUNT: %w", err)
		}
		cfg.DB.BackupCount = count
	}
	if dir := os.Getenv("CONFSCHED_ENABLED_DIR"); dir != "" {
		cfg.Dirs.Enabled = dir
	}
	if dir := os.Getenv("CONFSCHED_DISABLED_DIR"); dir != "" {
		cfg.Dirs.Disabled = dir
	}
	if level := os.Getenv("CONFSCHED_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("CONFSCHED_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.DB.Path == "" {
		return errors.New("db path must not be empty")
	}
	if c.DB.BackupCount < 0 {
		return fmt.Errorf("invalid backup count %d", c.DB.BackupCount)
	}
	if c.Dirs.Enabled == "" || c.Dirs.Disabled == "" {
		return errors.New("enabled and disabled directories must be set")
	}
	if filepath.Clean(c.Dirs.Enabled) == filepath.Clean(c.Dirs.Disabled) {
		return errors.New("enabled and disabled directories must differ")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
