package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap/zaptest"

	"github.com/tryst-events/registration-service/internal/domain"
	"github.com/tryst-events/registration-service/internal/persistence"
	"github.com/tryst-events/registration-service/internal/repository"
)

// setupPostgres starts a throwaway Postgres, applies the embedded migrations
// and returns a pool. Skipped when no container runtime is available.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tryst"),
		postgres.WithUsername("tryst"),
		postgres.WithPassword("tryst"),
		postgres.BasicWaitStrategies(),
	)
	t.Cleanup(func() {
		if container != nil {
			assert.NoError(t, container.Terminate(context.Background()))
		}
	})
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zaptest.NewLogger(t)))
	return pool
}

func TestPostgresUserRepository(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	reset := func(t *testing.T) repository.UserRepository {
		t.Helper()
		_, err := pool.Exec(ctx, "TRUNCATE users")
		require.NoError(t, err)
		return repository.NewPostgresUserRepository(pool)
	}

	t.Run("create and find", func(t *testing.T) {
		repo := reset(t)
		user := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "hash"}
		require.NoError(t, repo.Create(ctx, user))
		_, err := uuid.Parse(user.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{}, user.RegisteredEvents)

		byEntry, err := repo.FindByEntryNo(ctx, "E1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEntry.ID)
		assert.Equal(t, "hash", byEntry.PasswordHash)

		byID, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", byID.Name)

		_, err = repo.FindByEntryNo(ctx, "E404")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = repo.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("duplicate entry number", func(t *testing.T) {
		repo := reset(t)
		require.NoError(t, repo.Create(ctx, &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}))
		err := repo.Create(ctx, &domain.User{Name: "Bob", EntryNo: "E1", PasswordHash: "b"})
		assert.ErrorIs(t, err, repository.ErrDuplicateEntryNo)
	})

	t.Run("malformed ids are not found", func(t *testing.T) {
		repo := reset(t)
		_, err := repo.FindByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, repo.AddEvent(ctx, "not-a-uuid", 1), repository.ErrNotFound)
		assert.ErrorIs(t, repo.AddEvent(ctx, uuid.NewString(), 1), repository.ErrNotFound)
	})

	t.Run("add event is a set add", func(t *testing.T) {
		repo := reset(t)
		user := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}
		require.NoError(t, repo.Create(ctx, user))

		require.NoError(t, repo.AddEvent(ctx, user.ID, 7))
		require.NoError(t, repo.AddEvent(ctx, user.ID, 7))
		require.NoError(t, repo.AddEvent(ctx, user.ID, 3))

		got, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{7, 3}, got.RegisteredEvents)
	})

	t.Run("concurrent bookings of one event", func(t *testing.T) {
		repo := reset(t)
		user := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}
		require.NoError(t, repo.Create(ctx, user))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.AddEvent(ctx, user.ID, 42))
			}()
		}
		wg.Wait()

		got, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{42}, got.RegisteredEvents)
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, persistence.RunMigrations(ctx, pool, zaptest.NewLogger(t)))
	})
}
