package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "TASKKEEPER_"

// loadDotEnv is swapped in tests.
var loadDotEnv = func() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseEnv overlays cfg with TASKKEEPER_* variables after loading .env.
// Variables already set in the process environment win over .env entries.
// Malformed numbers or durations panic, like the other loaders.
func parseEnv(cfg *Config) {
	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	envString("DURABLE_BACKEND", &cfg.DurableBackend)
	envString("SQLITE_PATH", &cfg.SQLitePath)
	envString("POSTGRES_DSN", &cfg.PostgresDSN)
	envString("S3_BUCKET", &cfg.S3Bucket)
	envString("S3_REGION", &cfg.S3Region)
	envString("S3_ENDPOINT", &cfg.S3BaseEndpoint)
	envString("S3_ACCESS_KEY", &cfg.S3AccessKey)
	envString("S3_SECRET_KEY", &cfg.S3SecretKey)
	envString("S3_PREFIX", &cfg.S3Prefix)
	envString("VOLATILE_BACKEND", &cfg.VolatileBackend)
	envString("REDIS_ADDR", &cfg.RedisAddr)
	envString("REDIS_PASSWORD", &cfg.RedisPassword)
	envString("HASH_SCHEME", &cfg.HashScheme)
	envString("BIOMETRIC", &cfg.Biometric)
	envString("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := os.LookupEnv(envPrefix + "REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.RedisDB = n
	}
	if v, ok := os.LookupEnv(envPrefix + "SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.SessionTTL = d
	}
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		*dst = v
	}
}
