package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tryst-events/registration-service/internal/domain"
)

func TestSchemaGuardRetriesUntilSchemaApplied(t *testing.T) {
	ctx := context.Background()
	unreachable := errors.New("server selection timeout")

	var attempts atomic.Int32
	ensure := func(context.Context) error {
		if attempts.Add(1) == 1 {
			return unreachable
		}
		return nil
	}
	repo := NewSchemaGuardedRepository(NewMemoryUserRepository(), ensure)

	err := repo.Create(ctx, &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"})
	require.ErrorIs(t, err, unreachable)
	assert.False(t, repo.Ready())

	_, err = repo.FindByEntryNo(ctx, "E1")
	assert.ErrorIs(t, err, ErrNotFound, "nothing was written while the schema was missing")
	assert.True(t, repo.Ready())

	require.NoError(t, repo.Create(ctx, &domain.User{Name: "Alice", EntryNo: "E1", PasswordHash: "a"}))
	err = repo.Create(ctx, &domain.User{Name: "Bob", EntryNo: "E1", PasswordHash: "b"})
	assert.ErrorIs(t, err, ErrDuplicateEntryNo)

	assert.Equal(t, int32(2), attempts.Load())
}

func TestSchemaGuardBlocksEveryOperation(t *testing.T) {
	ctx := context.Background()
	down := errors.New("connection refused")
	repo := NewSchemaGuardedRepository(NewMemoryUserRepository(), func(context.Context) error { return down })

	assert.ErrorIs(t, repo.Create(ctx, &domain.User{EntryNo: "E1"}), down)
	_, err := repo.FindByID(ctx, "x")
	assert.ErrorIs(t, err, down)
	_, err = repo.FindByEntryNo(ctx, "E1")
	assert.ErrorIs(t, err, down)
	assert.ErrorIs(t, repo.AddEvent(ctx, "x", 1), down)
}

func TestSchemaGuardAppliesOnceUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	var attempts atomic.Int32
	repo := NewSchemaGuardedRepository(NewMemoryUserRepository(), func(context.Context) error {
		attempts.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.FindByEntryNo(ctx, "E1")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), attempts.Load())
}
