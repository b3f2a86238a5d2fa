package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tryst-events/registration-service/internal/domain"
)

// Key layout:
//
//	user:<id>              hash  name, entryNo, password, createdAt
//	user:<id>:events       set   booked event ids
//	user:entry:<entryNo>   string  user id, claimed under WATCH
const (
	redisUserPrefix  = "user:"
	redisEntryPrefix = "user:entry:"
)

type redisUserRepository struct {
	rdb *redis.Client
}

// NewRedisUserRepository returns a Redis-backed implementation.
func NewRedisUserRepository(rdb *redis.Client) UserRepository {
	return &redisUserRepository{rdb: rdb}
}

func userKey(id string) string     { return redisUserPrefix + id }
func eventsKey(id string) string   { return redisUserPrefix + id + ":events" }
func entryKey(entry string) string { return redisEntryPrefix + entry }

// Create claims the entry number and writes the user hash in one MULTI/EXEC
// guarded by WATCH on the claim key. Either both land or neither does.
func (r *redisUserRepository) Create(ctx context.Context, user *domain.User) error {
	id := uuid.NewString()
	createdAt := time.Now().UTC()
	claim := entryKey(user.EntryNo)

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		taken, err := tx.Exists(ctx, claim).Result()
		if err != nil {
			return err
		}
		if taken > 0 {
			return ErrDuplicateEntryNo
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, claim, id, 0)
			pipe.HSet(ctx, userKey(id),
				"name", user.Name,
				"entryNo", user.EntryNo,
				"password", user.PasswordHash,
				"createdAt", createdAt.Format(time.RFC3339Nano),
			)
			return nil
		})
		return err
	}, claim)

	switch {
	case errors.Is(err, ErrDuplicateEntryNo):
		return ErrDuplicateEntryNo
	case errors.Is(err, redis.TxFailedErr):
		// claim keys are only written by Create, so a concurrent change is a competing claim
		return ErrDuplicateEntryNo
	case err != nil:
		return fmt.Errorf("redis create user: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	user.RegisteredEvents = []int64{}
	return nil
}

func (r *redisUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	fields, err := r.rdb.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read user: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	members, err := r.rdb.SMembers(ctx, eventsKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read events: %w", err)
	}
	events := make([]int64, 0, len(members))
	for _, m := range members {
		v, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis event %q: %w", m, err)
		}
		events = append(events, v)
	}
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })

	createdAt, err := time.Parse(time.RFC3339Nano, fields["createdAt"])
	if err != nil {
		return nil, fmt.Errorf("redis user %s createdAt: %w", id, err)
	}
	return &domain.User{
		ID:               id,
		Name:             fields["name"],
		EntryNo:          fields["entryNo"],
		PasswordHash:     fields["password"],
		RegisteredEvents: events,
		CreatedAt:        createdAt,
	}, nil
}

func (r *redisUserRepository) FindByEntryNo(ctx context.Context, entryNo string) (*domain.User, error) {
	id, err := r.rdb.Get(ctx, entryKey(entryNo)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis lookup entry: %w", err)
	}
	return r.FindByID(ctx, id)
}

// AddEvent uses SADD, which is atomic and ignores existing members.
func (r *redisUserRepository) AddEvent(ctx context.Context, userID string, eventID int64) error {
	exists, err := r.rdb.Exists(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("redis lookup user: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	if err := r.rdb.SAdd(ctx, eventsKey(userID), eventID).Err(); err != nil {
		return fmt.Errorf("redis add event: %w", err)
	}
	return nil
}
