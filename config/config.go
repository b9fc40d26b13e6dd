/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	goerrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/suparena/nftregistry/errors"
)

// EnvPrefix prefixes every environment variable read by Load, e.g. NFTREGISTRY_BACKEND.
const EnvPrefix = "NFTREGISTRY"

// Storage backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config holds all configuration options for nftregistry.
type Config struct {
	// Registry names the registry instance; one table can hold several.
	Registry string        `mapstructure:"registry"`
	Backend  string        `mapstructure:"backend"`
	SQLite   SQLiteConfig  `mapstructure:"sqlite"`
	AWS      AWSConfig     `mapstructure:"aws"`
	Log      LogConfig     `mapstructure:"log"`
	Tracing  TracingConfig `mapstructure:"tracing"`
}

// SQLiteConfig configures the sqlite backend.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// AWSConfig configures the dynamodb backend. Empty keys select the default credential chain.
type AWSConfig struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	Table     string `mapstructure:"table"`
	Endpoint  string `mapstructure:"endpoint"` // e.g. http://localhost:8000 for DynamoDB Local
}

// LogConfig selects the slog level ("debug", "info", "warn", "error") and format ("text", "json").
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig turns on the stdout span exporter.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Registry: "main",
		Backend:  BackendSQLite,
		SQLite:   SQLiteConfig{Path: "nftregistry.db"},
		AWS:      AWSConfig{Region: "us-east-1", Table: "nftregistry"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers Defaults with v. Every key needs a default so that
// environment variables are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("registry", d.Registry)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("sqlite.path", d.SQLite.Path)
	v.SetDefault("aws.access_key", d.AWS.AccessKey)
	v.SetDefault("aws.secret_key", d.AWS.SecretKey)
	v.SetDefault("aws.region", d.AWS.Region)
	v.SetDefault("aws.table", d.AWS.Table)
	v.SetDefault("aws.endpoint", d.AWS.Endpoint)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
}

// LoadOptions tells Load where to look.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file. When empty, ./nftregistry.yaml and
	// ~/.config/nftregistry/nftregistry.yaml are tried.
	ConfigFile string
	// DotEnvFile is loaded into the process environment first; a missing file is ignored.
	DotEnvFile string
}

// Load layers defaults, the config file, the .env file and NFTREGISTRY_* variables
// (later wins) into v and returns the validated result.
func Load(v *viper.Viper, opts LoadOptions) (Config, error) {
	if opts.DotEnvFile != "" {
		if err := godotenv.Load(opts.DotEnvFile); err != nil && !goerrors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", opts.DotEnvFile, err)
		}
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("nftregistry")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "nftregistry"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !goerrors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Registry == "" {
		return errors.NewValidationError("registry", "must not be empty")
	}
	switch c.Backend {
	case BackendDynamoDB:
		if c.AWS.Region == "" {
			return errors.NewValidationError("aws.region", "required for the dynamodb backend")
		}
		if c.AWS.Table == "" {
			return errors.NewValidationError("aws.table", "required for the dynamodb backend")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return errors.NewValidationError("sqlite.path", "required for the sqlite backend")
		}
	case BackendMemory:
	default:
		return errors.NewValidationError("backend", fmt.Sprintf("unknown backend %q", c.Backend))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewValidationError("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.NewValidationError("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}
	return nil
}
