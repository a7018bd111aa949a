package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bawdo/typeq/dialect"
	"github.com/bawdo/typeq/schema"
)

const maxWalkDepth = 25

// Config is the typeq configuration from typeq.yaml and TYPEQ_* variables.
type Config struct {
	Dialect  string         `mapstructure:"dialect" json:"dialect"`
	Schema   string         `mapstructure:"schema" json:"schema"`
	Timezone string         `mapstructure:"timezone" json:"timezone"`
	DB       DatabaseConfig `mapstructure:"database" json:"database"`
	REPL     REPLConfig     `mapstructure:"repl" json:"repl"`
}

// DatabaseConfig holds the connection used by the REPL.
type DatabaseConfig struct {
	URL string `mapstructure:"url" json:"url"`
}

// REPLConfig holds interactive session settings.
type REPLConfig struct {
	History      string `mapstructure:"history" json:"history"`
	HistoryLimit int    `mapstructure:"history_limit" json:"history_limit"`
}

// LoadConfig loads configuration with precedence env > config file > defaults.
// It returns the config and the path of the file it read, empty if none.
func LoadConfig(explicitPath string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TYPEQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dialect", "postgres")
	v.SetDefault("schema", "")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("database.url", "")
	v.SetDefault("repl.history", "")
	v.SetDefault("repl.history_limit", 500)
}

// findConfigFile validates an explicit path, or walks up from the working
// directory looking for typeq.yaml, stopping at a .git directory.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	dir := cwd
	for range maxWalkDepth {
		for _, name := range []string{"typeq.yaml", "typeq.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

// Database builds the schema configuration the config describes.
func (c *Config) Database(logger *slog.Logger) (*schema.Database, error) {
	d, ok := dialect.Lookup(c.Dialect)
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (want one of %s)", c.Dialect, strings.Join(dialect.Names(), ", "))
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return schema.NewDatabase(
		schema.WithDialect(d),
		schema.WithDefaultSchema(c.Schema),
		schema.WithLocation(loc),
		schema.WithLogger(logger),
	), nil
}

// historyPath returns the configured history file, defaulting to one in the
// home directory.
func (c *Config) historyPath() string {
	if c.REPL.History != "" {
		return c.REPL.History
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".typeq_history")
}
