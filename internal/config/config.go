// Package config loads the conf.yml runtime parameters used by the cosnet
// commands. Environment variables override file values, so deployments can
// run without a config file at all.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime parameters of the persistence facade.
type Config struct {
	Database struct {
		// Path is the SQLite database file. Empty means in-memory.
		Path string `yaml:"path"`
	} `yaml:"database"`

	Seed struct {
		// Path is the service-class seed document loaded at bootstrap.
		Path string `yaml:"path"`
	} `yaml:"seed"`

	Export struct {
		// Dir is where derived-path CSV exports are written.
		Dir string `yaml:"dir"`
	} `yaml:"export"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var c Config
	c.Database.Path = ":memory:"
	c.Export.Dir = "data"
	return c
}

// Load reads a YAML config file and applies environment overrides
// (DATABASE_PATH, SEED_PATH, EXPORT_DIR). A missing file is not an error;
// defaults plus overrides are returned. A database path that resolves to
// empty falls back to an in-memory database with a warning, matching the
// behavior protocol deployments rely on.
func Load(path string, logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			logger.Warn("config file missing, using defaults", "path", path)
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &c); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SEED_PATH"); v != "" {
		c.Seed.Path = v
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		c.Export.Dir = v
	}

	if c.Database.Path == "" {
		logger.Warn("database path missing, defaulting to in-memory database")
		c.Database.Path = ":memory:"
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "data"
	}

	return c, nil
}
