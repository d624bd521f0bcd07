package core

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRecord is the persistence projection of a user, password hash included.
// Handlers never see it; they get the hash-free User instead.
type UserRecord struct {
	ID           int64
	Username     string
	PasswordHash string
}

// UserRepository defines persistence operations for users. Lookups return
// (nil, nil) when no row matches.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*UserRecord, error)
	FindByID(ctx context.Context, id int64) (*UserRecord, error)
	Create(ctx context.Context, username, passwordHash string) (int64, error)
	Count(ctx context.Context) (int, error)
}

// PgUserRepository implements UserRepository using pgxpool.
type PgUserRepository struct {
	db *pgxpool.Pool
}

func NewPgUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

func (r *PgUserRepository) FindByUsername(ctx context.Context, username string) (*UserRecord, error) {
	const q = `SELECT id, username, password_hash FROM users WHERE username=$1`
	var u UserRecord
	if err := r.db.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) FindByID(ctx context.Context, id int64) (*UserRecord, error) {
	const q = `SELECT id, username, password_hash FROM users WHERE id=$1`
	var u UserRecord
	if err := r.db.QueryRow(ctx, q, id).Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row. The unique constraint on username is the
// authority for duplicate detection: a violation (e.g. two racing
// registrations) is reported as ErrUserExists.
func (r *PgUserRepository) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	const q = `INSERT INTO users (username, password_hash) VALUES ($1,$2) RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, q, username, passwordHash).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, ErrUserExists
		}
		return 0, err
	}
	return id, nil
}

func (r *PgUserRepository) Count(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM users`
	var n int
	if err := r.db.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
