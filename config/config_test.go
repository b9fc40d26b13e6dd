/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/nftregistry/errors"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), LoadOptions{DotEnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nftregistry.yaml")
	content := `registry: drops
backend: dynamodb
aws:
  region: eu-west-1
  table: nfts
log:
  level: debug
  format: json
tracing:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(viper.New(), LoadOptions{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "drops", cfg.Registry)
	assert.Equal(t, BackendDynamoDB, cfg.Backend)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "nfts", cfg.AWS.Table)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, Defaults().SQLite.Path, cfg.SQLite.Path, "unset keys keep their defaults")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nftregistry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: sqlite\nregistry: fromfile\n"), 0644))

	t.Setenv("NFTREGISTRY_BACKEND", "memory")
	t.Setenv("NFTREGISTRY_SQLITE_PATH", "/tmp/other.db")

	cfg, err := Load(viper.New(), LoadOptions{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "fromfile", cfg.Registry)
	assert.Equal(t, "/tmp/other.db", cfg.SQLite.Path)
}

func TestLoadDotEnv(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("NFTREGISTRY_REGISTRY=fromdotenv\n"), 0644))

	// godotenv sets the variable directly; register it for cleanup.
	t.Setenv("NFTREGISTRY_REGISTRY", "")
	require.NoError(t, os.Unsetenv("NFTREGISTRY_REGISTRY"))

	cfg, err := Load(viper.New(), LoadOptions{DotEnvFile: dotenv})
	require.NoError(t, err)
	assert.Equal(t, "fromdotenv", cfg.Registry)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"EmptyRegistry", func(c *Config) { c.Registry = "" }, "registry"},
		{"UnknownBackend", func(c *Config) { c.Backend = "postgres" }, "backend"},
		{"SQLiteWithoutPath", func(c *Config) { c.SQLite.Path = "" }, "sqlite.path"},
		{"DynamoWithoutTable", func(c *Config) { c.Backend = BackendDynamoDB; c.AWS.Table = "" }, "aws.table"},
		{"DynamoWithoutRegion", func(c *Config) { c.Backend = BackendDynamoDB; c.AWS.Region = "" }, "aws.region"},
		{"BadLevel", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"BadFormat", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.True(t, errors.IsValidationError(err), "got %v", err)

			var verr *errors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	cfg := Defaults()
	cfg.Backend = BackendMemory
	cfg.SQLite.Path = ""
	assert.NoError(t, cfg.Validate(), "memory needs no storage settings")
}
