package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/shared"
)

const userColumns = `id, username, email, password_hash, is_admin, created_at`

// UserRepository implements [models.Repository] for [models.User] persistence.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new [UserRepository] with the given database connection or transaction
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create validates and inserts a user, setting its ID.
// A taken username or email is reported as a [shared.ValidationError].
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO users (username, email, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.CreatedAt)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			return shared.NewValidationError(user.Entity(), field, fmt.Sprintf("%s is already taken", field))
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id

	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	if err := getOne(ctx, r.db, &user, "user", id, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByLogin retrieves a user by username or email.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? OR email = lower(?)`
	err := r.db.GetContext(ctx, &user, query, login, login)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %q", shared.ErrNotFound, login)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// Update modifies an existing user's username, email and admin flag
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE users
		SET username = ?, email = ?, is_admin = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.IsAdmin, user.ID)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			return shared.NewValidationError(user.Entity(), field, fmt.Sprintf("%s is already taken", field))
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return requireAffected(result, user.Entity(), user.ID)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if passwordHash == "" {
		return shared.NewValidationError("user", "password", "password is required")
	}

	result, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return requireAffected(result, "user", id)
}

// Delete removes a user. Their exercises and practice sessions are removed by cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return requireAffected(result, "user", id)
}

// List retrieves all users matching the given criteria.
//
// Supported criteria: "is_admin" (bool), "username" (string).
func (r *UserRepository) List(ctx context.Context, criteria map[string]any) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1 = 1`
	args := []any{}

	if isAdmin, ok := criteria["is_admin"].(bool); ok {
		query += " AND is_admin = ?"
		args = append(args, isAdmin)
	}

	if username, ok := criteria["username"].(string); ok && username != "" {
		query += " AND username = ?"
		args = append(args, username)
	}

	query += " ORDER BY id ASC"

	var users []*models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return users, nil
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
