package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tryst-events/registration-service/internal/config"
	"github.com/tryst-events/registration-service/internal/repository"
)

// Pinger is implemented by every backing store handle.
type Pinger interface {
	Ping(ctx context.Context) error
}

type memoryPinger struct{}

func (memoryPinger) Ping(context.Context) error { return nil }

// Store bundles the user repository with the handle that backs it.
type Store struct {
	Driver string
	Users  repository.UserRepository
	Health Pinger
	close  func(ctx context.Context)
}

// Close releases the underlying connection, if any.
func (s *Store) Close(ctx context.Context) {
	if s != nil && s.close != nil {
		s.close(ctx)
	}
}

// Open connects the configured driver. Connection failures are logged and do
// not abort startup: the returned Store keeps serving, with data operations
// failing until the backend becomes reachable.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) *Store {
	timeout := cfg.Store.ConnectTimeout
	logger = logger.With(zap.String("driver", cfg.Store.Driver))

	switch cfg.Store.Driver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return &Store{Driver: cfg.Store.Driver, Users: repository.NewMemoryUserRepository(), Health: memoryPinger{}}

	case config.StorePostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, timeout, logger)
		if pg == nil {
			return unavailable(cfg.Store.Driver, err, logger)
		}
		if err != nil {
			logger.Error("database connection failed", zap.Error(err))
		}
		var users repository.UserRepository = repository.NewPostgresUserRepository(pg.PoolHandle())
		if cfg.Postgres.RunMigrations {
			users = guardSchema(ctx, users, err == nil, timeout, logger, func(ctx context.Context) error {
				return RunMigrations(ctx, pg.PoolHandle(), logger)
			})
		}
		return &Store{
			Driver: cfg.Store.Driver,
			Users:  users,
			Health: pg,
			close:  func(context.Context) { pg.Close() },
		}

	case config.StoreRedis:
		rdb, err := NewRedis(ctx, cfg.Redis, timeout, logger)
		if err != nil {
			logger.Error("database connection failed", zap.Error(err))
		}
		return &Store{
			Driver: cfg.Store.Driver,
			Users:  repository.NewRedisUserRepository(rdb.Client),
			Health: rdb,
			close:  func(context.Context) { rdb.Close() },
		}

	default:
		m, err := NewMongo(ctx, cfg.Mongo, timeout, logger)
		if m == nil {
			return unavailable(cfg.Store.Driver, err, logger)
		}
		if err != nil {
			logger.Error("database connection failed", zap.Error(err))
		}
		mongoUsers := repository.NewMongoUserRepository(m.DB)
		users := guardSchema(ctx, mongoUsers, err == nil, timeout, logger, mongoUsers.EnsureIndexes)
		return &Store{
			Driver: cfg.Store.Driver,
			Users:  users,
			Health: m,
			close:  m.Close,
		}
	}
}

// guardSchema wraps users so the schema is applied before any operation
// reaches the store. When the store answered the startup ping the schema is
// applied right away; otherwise the first operation after it becomes
// reachable applies it.
func guardSchema(ctx context.Context, users repository.UserRepository, reachable bool, timeout time.Duration, logger *zap.Logger, ensure repository.SchemaFunc) *repository.SchemaGuardedRepository {
	guarded := repository.NewSchemaGuardedRepository(users, func(ctx context.Context) error {
		if err := ensure(ctx); err != nil {
			logger.Warn("schema not ready", zap.Error(err))
			return err
		}
		logger.Info("schema ready")
		return nil
	})
	if !reachable {
		return guarded
	}
	schemaCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := guarded.EnsureSchema(schemaCtx); err != nil {
		logger.Error("failed to prepare schema; retrying on next operation", zap.Error(err))
	}
	return guarded
}

type unavailablePinger struct{ err error }

func (p unavailablePinger) Ping(context.Context) error { return p.err }

func unavailable(driver string, err error, logger *zap.Logger) *Store {
	logger.Error("database connection failed", zap.Error(err))
	storeErr := fmt.Errorf("%s store unavailable: %w", driver, err)
	return &Store{
		Driver: driver,
		Users:  repository.NewUnavailableRepository(storeErr),
		Health: unavailablePinger{err: storeErr},
	}
}
