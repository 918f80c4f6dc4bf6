// Package repository provides PostgreSQL persistence for user accounts and
// their subscription plans.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/atinyakov/ContentAI/internal/models"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const userColumns = `id, email, name, password_hash, is_admin, subscription_type, subscription_end`

// PostgresUserRepository implements user storage on a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a repository over db, which must be
// connected to a PostgreSQL instance with the users schema.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts a free-plan user and returns its id. A duplicate email
// yields models.ErrUserExists.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, email, name string, passwordHash []byte) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, name, password_hash, subscription_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, email, name, passwordHash, models.PlanFree).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, models.ErrUserExists
		}
		return 0, fmt.Errorf("CreateUser: %w", err)
	}
	return id, nil
}

// GetUserByEmail returns the user registered with email.
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row, "GetUserByEmail")
}

// GetUserByID returns the user with id.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row, "GetUserByID")
}

// UpdateSubscription sets the user's plan and its end. A nil end clears it.
func (r *PostgresUserRepository) UpdateSubscription(ctx context.Context, id int64, plan string, end *time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET subscription_type = $1, subscription_end = $2 WHERE id = $3
	`, plan, nullTime(end), id)
	if err != nil {
		return fmt.Errorf("UpdateSubscription: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateSubscription: %w", err)
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row, op string) (models.User, error) {
	var (
		u   models.User
		end sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.SubscriptionType, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if end.Valid {
		t := end.Time.UTC()
		u.SubscriptionEnd = &t
	}
	return u, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
