// Package config loads rocketminer settings from defaults, a YAML file,
// ROCKETMINER_ environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Output formats.
const (
	OutputTable    = "table"
	OutputJSON     = "json"
	OutputMarkdown = "markdown"
	OutputCSV      = "csv"
)

const (
	DefaultConfigFile = "rocketminer.yaml"
	DefaultDriver     = DriverFile
	DefaultPath       = "catalog.yaml"
	DefaultOutput     = OutputTable
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// StoreConfig selects and parameterizes the record store.
type StoreConfig struct {
	Driver      string `koanf:"driver"`
	Path        string `koanf:"path"` // catalog file or SQLite database
	DSN         string `koanf:"dsn"`  // PostgreSQL connection string
	RedisURL    string `koanf:"redis_url"`
	RedisPrefix string `koanf:"redis_prefix"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or text
}

// MetricsConfig controls query instrumentation.
type MetricsConfig struct {
	// Textfile, when set, receives the metrics registry in the node
	// exporter textfile format after each command.
	Textfile string `koanf:"textfile"`
}

// Config holds all CLI configuration options.
type Config struct {
	Store   StoreConfig   `koanf:"store"`
	Log     LogConfig     `koanf:"log"`
	Output  string        `koanf:"output"`
	Metrics MetricsConfig `koanf:"metrics"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// Validate checks that the driver, its parameters and the output settings
// are usable.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for the %s driver", ErrInvalidConfig, c.Store.Driver)
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for the postgres driver", ErrInvalidConfig)
		}
	case DriverRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("%w: store.redis_url is required for the redis driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	switch c.Output {
	case OutputTable, OutputJSON, OutputMarkdown, OutputCSV:
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.Output)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(l.Level))); err != nil {
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, l.Level)
	}
	return lvl, nil
}
