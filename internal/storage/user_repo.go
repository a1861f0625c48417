package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_user_store.go -package=mocks github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage UserStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// UserStore defines the interface for user storage operations.
type UserStore interface {
	// Create inserts a new user. Returns ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, user *User) error
	// GetByEmail gets a user by email. Returns ErrNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID gets a user by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*User, error)
}

// ErrDuplicateEmail is returned when registering an already-used email.
var ErrDuplicateEmail = fmt.Errorf("email already registered")

// UserRepo provides methods for user operations.
// It implements the UserStore interface.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user. The user.ID must be set (UUID) before calling.
func (r *UserRepo) Create(ctx context.Context, user *User) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, name) VALUES (?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, user.Name,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByEmail gets a user by email. Returns ErrNotFound if not found.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, name, created_at FROM users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// GetByID gets a user by ID. Returns ErrNotFound if not found.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, name, created_at FROM users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}
