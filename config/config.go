package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/signalbench/statecore-go/statecore"
)

const (
	// DriverPostgres selects the PostgreSQL ledger engine.
	DriverPostgres = "postgres"

	// DriverSQLite selects the SQLite ledger engine.
	DriverSQLite = "sqlite"
)

var (
	// ErrReadingConfigFailed is returned when the config file cannot be read.
	ErrReadingConfigFailed = errors.New("reading config file failed")

	// ErrParsingConfigFailed is returned when the config file is not valid YAML.
	ErrParsingConfigFailed = errors.New("parsing config file failed")

	// ErrInvalidConfig is returned when a loaded config fails validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// HistoryConfig controls the undo/redo history.
type HistoryConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// StorageConfig selects and configures the command ledger backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

// Config is the root configuration for a project using the state core.
type Config struct {
	History HistoryConfig `yaml:"history"`
	Storage StorageConfig `yaml:"storage"`
}

// Default returns the configuration used when no config file is present:
// a history capped at statecore.DefaultMaxDepth and a SQLite ledger next
// to the project file.
func Default() Config {
	return Config{
		History: HistoryConfig{MaxDepth: statecore.DefaultMaxDepth},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    "project.db",
			Table:  "command_ledger",
		},
	}
}

// Load reads and validates a YAML config file. Fields left empty in the
// file keep their defaults.
func Load(path string) (Config, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return Config{}, errors.Join(ErrReadingConfigFailed, readErr)
	}

	cfg := Default()
	if parseErr := yaml.Unmarshal(data, &cfg); parseErr != nil {
		return Config{}, errors.Join(ErrParsingConfigFailed, parseErr)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.History.MaxDepth <= 0 {
		return fmt.Errorf("%w: history.max_depth must be positive, got %d", ErrInvalidConfig, c.History.MaxDepth)
	}

	switch c.Storage.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unsupported storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Storage.DSN == "" {
		return fmt.Errorf("%w: storage.dsn must not be empty", ErrInvalidConfig)
	}

	if c.Storage.Table == "" {
		return fmt.Errorf("%w: storage.table must not be empty", ErrInvalidConfig)
	}

	return nil
}
