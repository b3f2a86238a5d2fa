package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tryst-events/registration-service/internal/domain"
)

// SchemaFunc prepares the backing schema (tables, unique indexes).
type SchemaFunc func(ctx context.Context) error

// SchemaGuardedRepository runs a SchemaFunc before the first operation that
// reaches the store and keeps retrying it on later operations until it
// succeeds. No operation runs against a store whose schema is not in place.
type SchemaGuardedRepository struct {
	inner  UserRepository
	ensure SchemaFunc

	ready atomic.Bool
	mu    sync.Mutex
}

var _ UserRepository = (*SchemaGuardedRepository)(nil)

// NewSchemaGuardedRepository wraps inner with ensure.
func NewSchemaGuardedRepository(inner UserRepository, ensure SchemaFunc) *SchemaGuardedRepository {
	return &SchemaGuardedRepository{inner: inner, ensure: ensure}
}

// Ready reports whether the schema has been applied.
func (r *SchemaGuardedRepository) Ready() bool {
	return r.ready.Load()
}

// EnsureSchema applies the schema if it has not been applied yet.
func (r *SchemaGuardedRepository) EnsureSchema(ctx context.Context) error {
	if r.ready.Load() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready.Load() {
		return nil
	}
	if err := r.ensure(ctx); err != nil {
		return fmt.Errorf("prepare schema: %w", err)
	}
	r.ready.Store(true)
	return nil
}

func (r *SchemaGuardedRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.EnsureSchema(ctx); err != nil {
		return err
	}
	return r.inner.Create(ctx, user)
}

func (r *SchemaGuardedRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if err := r.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return r.inner.FindByID(ctx, id)
}

func (r *SchemaGuardedRepository) FindByEntryNo(ctx context.Context, entryNo string) (*domain.User, error) {
	if err := r.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return r.inner.FindByEntryNo(ctx, entryNo)
}

func (r *SchemaGuardedRepository) AddEvent(ctx context.Context, userID string, eventID int64) error {
	if err := r.EnsureSchema(ctx); err != nil {
		return err
	}
	return r.inner.AddEvent(ctx, userID, eventID)
}
