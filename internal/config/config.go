package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
	BackendRedis    = "redis"

	BiometricNone     = "none"
	BiometricSoftware = "software"
)

// Config holds runtime settings for the taskkeeper client.
//
// DurableBackend holds user records, tasks, biometric flags and UI
// preferences. VolatileBackend holds the session only.
type Config struct {
	DurableBackend string
	SQLitePath     string
	PostgresDSN    string

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	S3Prefix       string

	VolatileBackend string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	SessionTTL time.Duration
	HashScheme string
	Biometric  string
	LogLevel   string
}

// LoadDefaults populates c with defaults: a local SQLite file for durable
// data and process memory for the session.
func (c *Config) LoadDefaults() {
	c.DurableBackend = BackendSQLite
	c.SQLitePath = "taskkeeper.db"
	c.S3Prefix = "taskkeeper/"
	c.VolatileBackend = BackendMemory
	c.RedisAddr = "127.0.0.1:6379"
	c.SessionTTL = common.SessionTTL
	c.HashScheme = string(cryptox.SchemeSHA256)
	c.Biometric = BiometricNone
	c.LogLevel = "info"
}

// Validate reports the first setting that cannot be used to build the
// backends.
func (c *Config) Validate() error {
	switch c.DurableBackend {
	case BackendMemory, BackendSQLite, BackendPostgres, BackendS3:
	default:
		return fmt.Errorf("unknown durable backend %q", c.DurableBackend)
	}
	switch c.VolatileBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown volatile backend %q", c.VolatileBackend)
	}
	if c.DurableBackend == BackendPostgres && c.PostgresDSN == "" {
		return fmt.Errorf("postgres backend requires a DSN")
	}
	if c.DurableBackend == BackendS3 && c.S3Bucket == "" {
		return fmt.Errorf("s3 backend requires a bucket")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	// the ttl may be shortened, never extended
	if c.SessionTTL > common.SessionTTL {
		return fmt.Errorf("session ttl must not exceed %s, got %s", common.SessionTTL, c.SessionTTL)
	}
	if _, err := cryptox.NewHasher(cryptox.Scheme(c.HashScheme)); err != nil {
		return err
	}
	switch c.Biometric {
	case BiometricNone, BiometricSoftware:
	default:
		return fmt.Errorf("unknown biometric mode %q", c.Biometric)
	}
	return nil
}

// LoadConfig applies defaults, the environment, the JSON file and flags, in
// that order.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
