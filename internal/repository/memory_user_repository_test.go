package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tryst-events/registration-service/internal/domain"
)

func TestMemoryUserRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)
	assert.Equal(t, []int64{}, user.RegisteredEvents)

	byEntry, err := repo.FindByEntryNo(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEntry.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)

	_, err = repo.FindByEntryNo(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserRepositoryRejectsDuplicateEntryNo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}))
	err := repo.Create(ctx, &domain.User{Name: "Bob", EntryNo: "E1", PasswordHash: "b"})
	assert.ErrorIs(t, err, ErrDuplicateEntryNo)
}

func TestMemoryUserRepositoryAddEventIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.AddEvent(ctx, user.ID, 7))
	require.NoError(t, repo.AddEvent(ctx, user.ID, 7))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, got.RegisteredEvents)

	assert.ErrorIs(t, repo.AddEvent(ctx, "nobody", 7), ErrNotFound)
}

func TestMemoryUserRepositoryConcurrentBookings(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}
	require.NoError(t, repo.Create(ctx, user))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(eventID int64) {
			defer wg.Done()
			_ = repo.AddEvent(ctx, user.ID, eventID%10)
		}(int64(i))
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got.RegisteredEvents)
}

func TestMemoryUserRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	got.RegisteredEvents = append(got.RegisteredEvents, 99)

	again, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, again.RegisteredEvents)
}

func TestUnavailableRepository(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("server selection timeout")
	repo := NewUnavailableRepository(cause)

	assert.ErrorIs(t, repo.Create(ctx, &domain.User{}), cause)
	_, err := repo.FindByEntryNo(ctx, "E1")
	assert.ErrorIs(t, err, cause)
	_, err = repo.FindByID(ctx, "x")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, repo.AddEvent(ctx, "x", 1), cause)
}
