package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, BackendSQLite, c.DurableBackend)
	assert.Equal(t, "taskkeeper.db", c.SQLitePath)
	assert.Equal(t, BackendMemory, c.VolatileBackend)
	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.Equal(t, "sha256", c.HashScheme)
	assert.Equal(t, BiometricNone, c.Biometric)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults ok", mutate: func(*Config) {}},
		{name: "unknown durable", mutate: func(c *Config) { c.DurableBackend = "etcd" }, wantErr: "unknown durable backend"},
		{name: "unknown volatile", mutate: func(c *Config) { c.VolatileBackend = "sqlite" }, wantErr: "unknown volatile backend"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.DurableBackend = BackendPostgres }, wantErr: "requires a DSN"},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.DurableBackend = BackendPostgres
			c.PostgresDSN = "postgres://localhost/tk"
		}},
		{name: "s3 without bucket", mutate: func(c *Config) { c.DurableBackend = BackendS3 }, wantErr: "requires a bucket"},
		{name: "zero ttl", mutate: func(c *Config) { c.SessionTTL = 0 }, wantErr: "session ttl"},
		{name: "shorter ttl", mutate: func(c *Config) { c.SessionTTL = 30 * time.Minute }},
		{name: "ttl at the limit", mutate: func(c *Config) { c.SessionTTL = 24 * time.Hour }},
		{name: "ttl past the limit", mutate: func(c *Config) { c.SessionTTL = 24*time.Hour + time.Second }, wantErr: "must not exceed 24h0m0s"},
		{name: "unknown hash", mutate: func(c *Config) { c.HashScheme = "md5" }, wantErr: "unknown hash scheme"},
		{name: "argon2id", mutate: func(c *Config) { c.HashScheme = "argon2id" }},
		{name: "unknown biometric", mutate: func(c *Config) { c.Biometric = "face" }, wantErr: "unknown biometric mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"taskkeeper"}

	origLoad := loadDotEnv
	t.Cleanup(func() { loadDotEnv = origLoad })
	loadDotEnv = func() error { return nil }

	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, BackendSQLite, cfg.DurableBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}
