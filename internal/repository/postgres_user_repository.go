package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tryst-events/registration-service/internal/domain"
)

const pgUniqueViolation = "23505"

type postgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository returns a Postgres-backed implementation.
func NewPostgresUserRepository(pool *pgxpool.Pool) UserRepository {
	return &postgresUserRepository{pool: pool}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name, entry_no, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING registered_events, created_at`

	id := uuid.NewString()
	err := r.pool.QueryRow(ctx, query,
		id,
		user.Name,
		user.EntryNo,
		user.PasswordHash,
	).Scan(&user.RegisteredEvents, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEntryNo
		}
		return err
	}
	user.ID = id
	return nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	const query = `
        SELECT id, name, entry_no, password_hash, registered_events, created_at
        FROM users WHERE id=$1`

	return r.scanOne(ctx, query, id)
}

func (r *postgresUserRepository) FindByEntryNo(ctx context.Context, entryNo string) (*domain.User, error) {
	const query = `
        SELECT id, name, entry_no, password_hash, registered_events, created_at
        FROM users WHERE entry_no=$1`

	return r.scanOne(ctx, query, entryNo)
}

// AddEvent relies on the row lock taken by UPDATE: a concurrent booking
// re-evaluates the CASE against the committed array.
func (r *postgresUserRepository) AddEvent(ctx context.Context, userID string, eventID int64) error {
	if _, err := uuid.Parse(userID); err != nil {
		return ErrNotFound
	}
	const query = `
        UPDATE users SET registered_events = CASE
            WHEN $2::bigint = ANY(registered_events) THEN registered_events
            ELSE array_append(registered_events, $2::bigint)
        END
        WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, userID, eventID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresUserRepository) scanOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.EntryNo,
		&user.PasswordHash,
		&user.RegisteredEvents,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
