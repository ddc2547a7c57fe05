// Package repository provides PostgreSQL persistence for users and tasks.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndubrovin/TaskKeeper/internal/models"
)

// PostgresUserRepository implements user persistence against PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a repository with the given database
// connection. db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// UserByEmail fetches the user record, password hash included, for the
// given email. Returns sql.ErrNoRows when no such user exists.
func (r *PostgresUserRepository) UserByEmail(ctx context.Context, email string) (*models.UserRecord, error) {
	var rec models.UserRecord
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash FROM users WHERE email = $1
	`, email).Scan(&rec.ID, &rec.Email, &rec.Username, &rec.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UserByID fetches the public user snapshot by id. Returns sql.ErrNoRows
// when no such user exists.
func (r *PostgresUserRepository) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, username FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.Username)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists checks whether a user with the specified email exists.
func (r *PostgresUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)
	return exists, err
}

// CreateUser inserts a new user record.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, rec models.UserRecord) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash) VALUES ($1, $2, $3, $4)
	`, rec.ID, rec.Email, rec.Username, rec.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
