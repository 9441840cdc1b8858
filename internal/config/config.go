package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is read when no path is given and PLAYBILL_CONFIG is unset.
const DefaultPath = "config/playbill.toml"

const (
	BackendNeo4j  = "neo4j"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Duration reads "5s" style values from both TOML and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ServerConfig struct {
	Port            int      `toml:"port" env:"PORT"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	IdleTimeout     Duration `toml:"idle_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"`
}

type StoreConfig struct {
	Backend string `toml:"backend" env:"STORE_BACKEND"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri" env:"NEO4J_URI"`
	User     string `toml:"user" env:"NEO4J_USER"`
	Password string `toml:"password" env:"NEO4J_PASSWORD"`
	Database string `toml:"database" env:"NEO4J_DATABASE"`
}

type SQLiteConfig struct {
	Path string `toml:"path" env:"SQLITE_PATH"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" env:"METRICS_ENABLED"`
	Path    string `toml:"path"`
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	Store   StoreConfig   `toml:"store"`
	Neo4j   Neo4jConfig   `toml:"neo4j"`
	SQLite  SQLiteConfig  `toml:"sqlite"`
	Metrics MetricsConfig `toml:"metrics"`
}

// Default returns the configuration used for anything the file and
// environment leave unset.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration{10 * time.Second},
			WriteTimeout:    Duration{30 * time.Second},
			IdleTimeout:     Duration{60 * time.Second},
			ShutdownTimeout: Duration{15 * time.Second},
		},
		Log:     LogConfig{Level: "info", Format: LogFormatText},
		Store:   StoreConfig{Backend: BackendNeo4j},
		Neo4j:   Neo4jConfig{URI: "bolt://localhost:7687", User: "neo4j", Database: "neo4j"},
		SQLite:  SQLiteConfig{Path: "playbill.db"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("PLAYBILL_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}
	switch c.Store.Backend {
	case BackendNeo4j, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not one of neo4j, sqlite, memory", c.Store.Backend))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path))
	}
	return errors.Join(errs...)
}
