package repository

import (
	"context"
	"errors"

	"github.com/tryst-events/registration-service/internal/domain"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEntryNo is returned when the entry number is already taken.
	ErrDuplicateEntryNo = errors.New("entry number already registered")
)

// UserRepository defines persistence access for users.
//
// AddEvent must be an atomic set-add: concurrent calls for the same user never
// lose an update and never store a duplicate id.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEntryNo(ctx context.Context, entryNo string) (*domain.User, error)
	AddEvent(ctx context.Context, userID string, eventID int64) error
}

type unavailableRepository struct {
	err error
}

// NewUnavailableRepository returns a repository whose every call fails with
// err. It stands in when the store could not be reached at startup.
func NewUnavailableRepository(err error) UserRepository {
	return &unavailableRepository{err: err}
}

func (r *unavailableRepository) Create(context.Context, *domain.User) error {
	return r.err
}

func (r *unavailableRepository) FindByID(context.Context, string) (*domain.User, error) {
	return nil, r.err
}

func (r *unavailableRepository) FindByEntryNo(context.Context, string) (*domain.User, error) {
	return nil, r.err
}

func (r *unavailableRepository) AddEvent(context.Context, string, int64) error {
	return r.err
}
