package models

import (
	"strings"
	"time"

	"github.com/desertthunder/fretmastery/internal/shared"
)

// User is an account. Deleting a user removes their exercises and sessions.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username" validate:"required,notblank,min=3,max=64"`
	Email        string    `db:"email" json:"email" validate:"required,email,max=254"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NewUser creates a non-admin user with normalised username and email.
func NewUser(username, email, passwordHash string) *User {
	return &User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

func (u *User) Entity() string { return "user" }
func (u *User) Key() int64     { return u.ID }

// Validate checks field constraints. The password hash is set by the caller and checked separately.
func (u *User) Validate() error {
	if err := shared.ValidateStruct(u.Entity(), u); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return shared.NewValidationError(u.Entity(), "password", "password is required")
	}
	return nil
}
