package securestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taskkeeper/internal/config"
	"github.com/dmitrijs2005/taskkeeper/internal/filex"
	"github.com/dmitrijs2005/taskkeeper/internal/storage"
	"github.com/dmitrijs2005/taskkeeper/internal/storage/objectstore"
	"github.com/dmitrijs2005/taskkeeper/internal/storage/postgres"
	"github.com/dmitrijs2005/taskkeeper/internal/storage/rediskv"
	"github.com/dmitrijs2005/taskkeeper/internal/storage/sqlite"
)

// redisNamespace prefixes the session key of a client in Redis.
const redisNamespace = "taskkeeper"

// Test seams.
var (
	openSQLite = func(ctx context.Context, path string) (storage.Store, io.Closer, error) {
		abs, err := filex.EnsureParentDir(path)
		if err != nil {
			return nil, nil, err
		}
		s, err := sqlite.Open(ctx, abs)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	openPostgres = func(ctx context.Context, dsn string) (storage.Store, io.Closer, error) {
		s, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	openObjectStore = func(ctx context.Context, opts objectstore.Options) (storage.Store, io.Closer, error) {
		s, err := objectstore.Open(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
	openRedis = func(ctx context.Context, opts rediskv.Options, namespace string, cfg *config.Config) (storage.Store, io.Closer, error) {
		s, client, err := rediskv.Open(ctx, opts, namespace, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return s, client, nil
	}
)

// Backends are the opened durable and volatile stores.
type Backends struct {
	Durable  storage.Store
	Volatile storage.Store
	closers  []io.Closer
}

// Close releases every opened connection.
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// OpenBackends opens the stores selected by cfg. clientID scopes the
// volatile store so that clients sharing a Redis server never see each
// other's session.
func OpenBackends(ctx context.Context, cfg *config.Config, clientID string) (*Backends, error) {
	b := &Backends{}

	durable, closer, err := openDurable(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("durable store (%s): %w", cfg.DurableBackend, err)
	}
	b.Durable = durable
	b.track(closer)

	volatile, closer, err := openVolatile(ctx, cfg, clientID)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("volatile store (%s): %w", cfg.VolatileBackend, err)
	}
	b.Volatile = volatile
	b.track(closer)

	return b, nil
}

func (b *Backends) track(c io.Closer) {
	if c != nil {
		b.closers = append(b.closers, c)
	}
}

func openDurable(ctx context.Context, cfg *config.Config) (storage.Store, io.Closer, error) {
	switch cfg.DurableBackend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil, nil
	case config.BackendSQLite:
		return openSQLite(ctx, cfg.SQLitePath)
	case config.BackendPostgres:
		return openPostgres(ctx, cfg.PostgresDSN)
	case config.BackendS3:
		return openObjectStore(ctx, objectstore.Options{
			Bucket:       cfg.S3Bucket,
			Prefix:       cfg.S3Prefix,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.DurableBackend)
	}
}

func openVolatile(ctx context.Context, cfg *config.Config, clientID string) (storage.Store, io.Closer, error) {
	switch cfg.VolatileBackend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil, nil
	case config.BackendRedis:
		opts := rediskv.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		return openRedis(ctx, opts, redisNamespace+":"+clientID, cfg)
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.VolatileBackend)
	}
}
