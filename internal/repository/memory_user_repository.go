package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tryst-events/registration-service/internal/domain"
)

type memoryUserRepository struct {
	mu        sync.RWMutex
	byID      map[string]*domain.User
	byEntryNo map[string]string
}

// NewMemoryUserRepository returns a process-local implementation.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:      make(map[string]*domain.User),
		byEntryNo: make(map[string]string),
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEntryNo[user.EntryNo]; exists {
		return ErrDuplicateEntryNo
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	if user.RegisteredEvents == nil {
		user.RegisteredEvents = []int64{}
	}

	r.byID[user.ID] = cloneUser(user)
	r.byEntryNo[user.EntryNo] = user.ID
	return nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *memoryUserRepository) FindByEntryNo(_ context.Context, entryNo string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEntryNo[entryNo]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *memoryUserRepository) AddEvent(_ context.Context, userID string, eventID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return ErrNotFound
	}
	if user.HasEvent(eventID) {
		return nil
	}
	user.RegisteredEvents = append(user.RegisteredEvents, eventID)
	sort.Slice(user.RegisteredEvents, func(i, j int) bool {
		return user.RegisteredEvents[i] < user.RegisteredEvents[j]
	})
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.RegisteredEvents = append([]int64{}, u.RegisteredEvents...)
	return &clone
}
