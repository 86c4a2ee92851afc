package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ArenaServer holds all configuration for the arena server.
type ArenaServer struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Logging: debug|info|warn|error
	LogLevel string `yaml:"log_level"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Battle lifecycle
	DecisionTimeout  time.Duration `yaml:"decision_timeout"`  // prompt wait (default: 10s)
	SessionRetention time.Duration `yaml:"session_retention"` // finished-session visibility (default: 1h)
	ReaperInterval   time.Duration `yaml:"reaper_interval"`   // cleanup cadence (default: 1m)
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`  // graceful HTTP stop (default: 10s)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns ArenaServer config with sensible defaults.
func Default() ArenaServer {
	return ArenaServer{
		BindAddress:      "0.0.0.0",
		Port:             8080,
		LogLevel:         "info",
		DecisionTimeout:  10 * time.Second,
		SessionRetention: time.Hour,
		ReaperInterval:   time.Minute,
		ShutdownTimeout:  10 * time.Second,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "qiankun",
			Password: "qiankun",
			DBName:   "qiankun",
			SSLMode:  "disable",
		},
	}
}

// Load loads arena server config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (ArenaServer, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SlogLevel maps the configured level name onto slog, defaulting to info.
func (c ArenaServer) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
