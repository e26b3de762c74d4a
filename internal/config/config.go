package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the combat server.
type Server struct {
	LogLevel string `yaml:"log_level"`

	// Simulation: effect drain period and attribute journal flush period
	TickInterval  time.Duration `yaml:"tick_interval"`
	FlushInterval time.Duration `yaml:"flush_interval"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Combat content
	Combat Combat `yaml:"combat"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"  env:"AURAFX_DB_ENABLED"`
	Host     string `yaml:"host"     env:"AURAFX_DB_HOST"`
	Port     int    `yaml:"port"     env:"AURAFX_DB_PORT"`
	User     string `yaml:"user"     env:"AURAFX_DB_USER"`
	Password string `yaml:"password" env:"AURAFX_DB_PASSWORD"`
	DBName   string `yaml:"dbname"   env:"AURAFX_DB_NAME"`
	SSLMode  string `yaml:"sslmode"  env:"AURAFX_DB_SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:      "info",
		TickInterval:  50 * time.Millisecond,
		FlushInterval: 5 * time.Second,
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "aurafx",
			Password: "aurafx",
			DBName:   "aurafx",
			SSLMode:  "disable",
		},
		Combat: DefaultCombat(),
	}
}

// LoadServer loads server config from a YAML file, then applies AURAFX_*
// environment overrides. If the file doesn't exist, defaults are used.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// envOverrides lists the settings AURAFX_* variables can override.
// Unset variables keep the current value.
type envOverrides struct {
	LogLevel      string        `env:"AURAFX_LOG_LEVEL"`
	TickInterval  time.Duration `env:"AURAFX_TICK_INTERVAL"`
	FlushInterval time.Duration `env:"AURAFX_FLUSH_INTERVAL"`
	Database      DatabaseConfig
}

func applyEnv(cfg *Server) error {
	o := envOverrides{
		LogLevel:      cfg.LogLevel,
		TickInterval:  cfg.TickInterval,
		FlushInterval: cfg.FlushInterval,
		Database:      cfg.Database,
	}
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = o.LogLevel
	cfg.TickInterval = o.TickInterval
	cfg.FlushInterval = o.FlushInterval
	cfg.Database = o.Database
	return nil
}

// Validate checks intervals and combat content.
func (s Server) Validate() error {
	if s.TickInterval <= 0 {
		return errors.New("tick_interval must be positive")
	}
	if s.FlushInterval <= 0 {
		return errors.New("flush_interval must be positive")
	}
	return s.Combat.Validate()
}
