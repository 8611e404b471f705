// Package repository provides PostgreSQL persistence for users, sessions and notes.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresAuthRepository implements user and session persistence using a PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts a new user. A duplicate email yields models.ErrConflict.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, user models.User) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		user.ID, user.Email, user.PasswordHash,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// GetUserByEmail fetches a user by login. Unknown emails yield models.ErrNotFound.
func (r *PostgresAuthRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByEmail: %w", err)
	}
	return &u, nil
}

// CreateSession stores an issued session token.
func (r *PostgresAuthRepository) CreateSession(ctx context.Context, s models.Session) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		s.Token, s.UserID, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("CreateSession: %w", err)
	}
	return nil
}

// GetSession resolves a token to its session. Unknown tokens yield models.ErrNotFound;
// expiry is checked by the caller.
func (r *PostgresAuthRepository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(ctx, `
		SELECT s.token, s.user_id, u.email, s.expires_at
		  FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token = $1
	`, token).Scan(&s.Token, &s.UserID, &s.Email, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetSession: %w", err)
	}
	return &s, nil
}

// DeleteSession revokes a token. Deleting an unknown token is not an error.
func (r *PostgresAuthRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("DeleteSession: %w", err)
	}
	return nil
}
