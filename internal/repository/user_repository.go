package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maktab-uz/maktab-api/internal/models"
)

// UserRepository handles account persistence for the thin auth surface.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, phone, password_hash, first_name, last_name, role, active, created_at`

// FindByPhone returns the account owning a phone number.
func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE phone = $1`, userColumns)
	if err := r.db.GetContext(ctx, &user, query, phone); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns a single account.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts an account.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (phone, password_hash, first_name, last_name, role, active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		user.Phone, user.PasswordHash, user.FirstName, user.LastName, user.Role, user.Active, user.CreatedAt,
	).Scan(&user.ID); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateRole changes an account's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role models.UserRole) error {
	const query = `UPDATE users SET role = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, role, id); err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return nil
}
