// Package config loads chsql settings from defaults, CHSQL_* environment
// variables and a chsql.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/coregx/chsql/internal/dialects"
	"github.com/coregx/chsql/internal/logger"
)

const (
	maxWalkDepth = 25
	envPrefix    = "CHSQL"
)

// Config is the chsql configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds connection and execution settings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// Dialect overrides the dialect derived from Driver.
	Dialect             string        `mapstructure:"dialect"`
	MaxOpenConns        int           `mapstructure:"max_open_conns"`
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	StmtCacheCapacity   int           `mapstructure:"stmt_cache_capacity"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
	// Validate screens statements for injected SQL before execution.
	Validate bool `mapstructure:"validate"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load discovers and loads configuration with precedence
// env > config file > defaults.
//
// Returns the loaded config, the path of the config file that was read
// (empty if none was found), and any error encountered.
func Load(explicitPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
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

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "clickhouse")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.dialect", "")
	v.SetDefault("database.max_open_conns", 0)
	v.SetDefault("database.max_idle_conns", 0)
	v.SetDefault("database.stmt_cache_capacity", 1000)
	v.SetDefault("database.health_check_interval", "0s")
	v.SetDefault("database.validate", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// findConfigFile returns explicitPath if it exists, otherwise walks up from
// the working directory looking for chsql.yaml or chsql.yml, stopping at a
// .git directory or after maxWalkDepth levels.
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
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"chsql.yaml", "chsql.yml"} {
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

// DialectName returns the configured dialect, falling back to the driver name.
func (c *DatabaseConfig) DialectName() string {
	if c.Dialect != "" {
		return c.Dialect
	}
	return c.Driver
}

// Validate checks that the dialect is known and the log settings parse.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Driver == "" {
		errs = append(errs, errors.New("database.driver is required"))
	} else if _, ok := dialects.Lookup(c.Database.DialectName()); !ok {
		errs = append(errs, fmt.Errorf("database.dialect: unsupported dialect %q", c.Database.DialectName()))
	}
	if c.Database.StmtCacheCapacity < 0 {
		errs = append(errs, errors.New("database.stmt_cache_capacity must not be negative"))
	}
	if c.Database.HealthCheckInterval < 0 {
		errs = append(errs, errors.New("database.health_check_interval must not be negative"))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
