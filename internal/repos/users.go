package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"reelist-server/internal/model"
)

type UsersRepo struct {
	db *pgxpool.Pool
}

// Create inserts a new account. Duplicate emails map to ErrEmailTaken.
func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, email, password_hash, created_at`,
		name, email, passwordHash,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByEmail finds an account by email. Returns pgx.ErrNoRows when absent.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// GetByID finds an account by id.
func (r *UsersRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}
