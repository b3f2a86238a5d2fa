package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tryst-events/registration-service/internal/domain"
)

func newRedisRepo(t *testing.T) (UserRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisUserRepository(rdb), mr
}

func TestRedisUserRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t)

	user := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)
	assert.Equal(t, []int64{}, user.RegisteredEvents)

	claimed, err := mr.Get(entryKey("E1"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claimed)

	got, err := repo.FindByEntryNo(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, []int64{}, got.RegisteredEvents)
	assert.WithinDuration(t, user.CreatedAt, got.CreatedAt, 0)

	_, err = repo.FindByEntryNo(ctx, "E2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisUserRepositoryRejectsDuplicateEntryNo(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t)

	first := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, &domain.User{Name: "Bob", EntryNo: "E1", PasswordHash: "b"})
	assert.ErrorIs(t, err, ErrDuplicateEntryNo)

	// the losing attempt leaves no user hash behind
	assert.Len(t, mr.Keys(), 2)

	got, err := repo.FindByEntryNo(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestRedisUserRepositoryConcurrentCreateClaimsOnce(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRedisRepo(t)

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &domain.User{Name: "Racer", EntryNo: "E1", PasswordHash: "x"})
			if err == nil {
				created.Add(1)
				return
			}
			assert.ErrorIs(t, err, ErrDuplicateEntryNo)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
}

func TestRedisUserRepositoryAddEvent(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRedisRepo(t)

	user := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.AddEvent(ctx, user.ID, 7))
	require.NoError(t, repo.AddEvent(ctx, user.ID, 7))
	require.NoError(t, repo.AddEvent(ctx, user.ID, -2))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{-2, 7}, got.RegisteredEvents)

	assert.ErrorIs(t, repo.AddEvent(ctx, "nobody", 7), ErrNotFound)
}

func TestRedisUserRepositoryCorruptRecord(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t)

	user := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}
	require.NoError(t, repo.Create(ctx, user))

	mr.HSet(userKey(user.ID), "createdAt", "yesterday")
	_, err := repo.FindByID(ctx, user.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	mr.HSet(userKey(user.ID), "createdAt", user.CreatedAt.Format(time.RFC3339Nano))
	_, err = mr.SAdd(eventsKey(user.ID), "seven")
	require.NoError(t, err)
	_, err = repo.FindByID(ctx, user.ID)
	assert.Error(t, err)
}

func TestUnavailableRedisServer(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()
	repo := NewRedisUserRepository(rdb)

	err = repo.Create(ctx, &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEntryNo)
}
