// Package config loads runtime configuration for the taskkeeper client.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, then TASKKEEPER_* environment
//     variables (see parseEnv).
//  3. A JSON file selected with -c or -config (see parseJson).
//  4. Command-line flags (see parseFlags).
//
// # JSON schema
//
// Durations use timex.Duration, so "24h" and integer nanoseconds both work:
//
//	{
//	  "durable_backend": "sqlite",
//	  "sqlite_path": "taskkeeper.db",
//	  "volatile_backend": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "session_ttl": "24h",
//	  "hash_scheme": "argon2id",
//	  "biometric": "software"
//	}
//
// Secrets (S3 keys, Redis password, Postgres DSN) have no flags; set them in
// the environment or the JSON file.
package config
