package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

var flagNames = []string{
	"-durable", "-sqlite", "-s3-bucket", "-s3-region", "-s3-endpoint", "-s3-prefix",
	"-volatile", "-redis", "-redis-db", "-ttl", "-hash", "-biometric", "-log-level",
}

// parseFlags overlays cfg with command-line flags. Only the flags listed in
// flagNames are looked at; anything else on the command line is ignored.
//
//	-durable string     sqlite | postgres | s3 | memory
//	-sqlite string      SQLite database file
//	-s3-bucket string   bucket for the s3 backend
//	-s3-region string
//	-s3-endpoint string custom endpoint (MinIO, LocalStack)
//	-s3-prefix string   key prefix inside the bucket
//	-volatile string    memory | redis
//	-redis string       Redis host:port
//	-redis-db int
//	-ttl duration       session lifetime
//	-hash string        sha256 | argon2id
//	-biometric string   none | software
//	-log-level string   debug | info | warn | error
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DurableBackend, "durable", cfg.DurableBackend, "durable store backend")
	fs.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "SQLite database file")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "S3 endpoint override")
	fs.StringVar(&cfg.S3Prefix, "s3-prefix", cfg.S3Prefix, "S3 key prefix")
	fs.StringVar(&cfg.VolatileBackend, "volatile", cfg.VolatileBackend, "session store backend")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database number")
	fs.DurationVar(&cfg.SessionTTL, "ttl", cfg.SessionTTL, "session lifetime")
	fs.StringVar(&cfg.HashScheme, "hash", cfg.HashScheme, "password hash scheme")
	fs.StringVar(&cfg.Biometric, "biometric", cfg.Biometric, "platform authenticator")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
