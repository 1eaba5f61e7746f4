package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/fretmastery/internal/assets"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/repositories"
	"github.com/desertthunder/fretmastery/internal/shared"
)

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Username string `json:"username" validate:"required,notblank,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// PasswordInput is the payload for changing one's own password.
type PasswordInput struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,min=8,max=72"`
}

// UserService manages accounts and credentials.
type UserService struct {
	db     *sqlx.DB
	users  *repositories.UserRepository
	store  *assets.FileStore
	cost   int
	tokens *TokenIssuer
	logger *log.Logger
}

// NewUserService creates a [UserService]. cost is the bcrypt work factor.
// store holds the diagrams of exercises the user authored; it may be nil.
func NewUserService(db *sqlx.DB, store *assets.FileStore, cost int, tokens *TokenIssuer, logger *log.Logger) *UserService {
	return &UserService{
		db:     db,
		users:  repositories.NewUserRepository(db),
		store:  store,
		cost:   cost,
		tokens: tokens,
		logger: logger,
	}
}

// HashPassword returns a bcrypt hash of plain using cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Register creates an account. Only the CLI creates admins.
func (s *UserService) Register(ctx context.Context, in RegisterInput, admin bool) (*models.User, error) {
	if err := shared.ValidateStruct("user", in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(in.Username, in.Email, hash)
	user.IsAdmin = admin
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("registered user", "id", user.ID, "username", user.Username, "admin", admin)
	return user, nil
}

// Authenticate checks a username (or email) and password.
// Unknown users and wrong passwords both fail with [shared.ErrAuthFailed].
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrAuthFailed
	}
	if err != nil {
		return nil, err
	}

	if !VerifyPassword(user.PasswordHash, password) {
		s.logger.Warn("failed login", "login", login)
		return nil, shared.ErrAuthFailed
	}
	return user, nil
}

// Login authenticates and issues a token.
func (s *UserService) Login(ctx context.Context, login, password string) (*models.User, Token, error) {
	user, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, Token{}, err
	}

	token, err := s.tokens.Issue(models.PrincipalFor(user))
	if err != nil {
		return nil, Token{}, err
	}
	return user, token, nil
}

// IssueToken signs a token for an existing user.
func (s *UserService) IssueToken(user *models.User) (Token, error) {
	return s.tokens.Issue(models.PrincipalFor(user))
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, p models.Principal, in PasswordInput) error {
	if err := requireUser(p, "change your password"); err != nil {
		return err
	}
	if err := shared.ValidateStruct("user", in); err != nil {
		return err
	}

	user, err := s.users.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !VerifyPassword(user.PasswordHash, in.Current) {
		return shared.NewValidationError("user", "current_password", "current_password is incorrect")
	}

	return s.SetPassword(ctx, user.ID, in.New)
}

// SetPassword replaces a user's password without checking the old one.
func (s *UserService) SetPassword(ctx context.Context, userID int64, password string) error {
	if len(password) < 8 || len(password) > 72 {
		return shared.NewValidationError("user", "password", "password must be between 8 and 72 characters")
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.Get(ctx, id)
}

// Find returns a user by username or email.
func (s *UserService) Find(ctx context.Context, login string) (*models.User, error) {
	return s.users.GetByLogin(ctx, login)
}

// List returns all users, optionally only admins.
func (s *UserService) List(ctx context.Context, adminsOnly bool) ([]*models.User, error) {
	criteria := map[string]any{}
	if adminsOnly {
		criteria["is_admin"] = true
	}
	return s.users.List(ctx, criteria)
}

// Delete removes a user and, by cascade, everything they own.
// Diagrams of the user's exercises are removed once the delete commits.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	var diagrams []string
	err := shared.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		authored, err := repositories.NewExerciseRepository(tx).List(ctx, map[string]any{"created_by": id})
		if err != nil {
			return err
		}
		for _, e := range authored {
			if e.DiagramPath != "" {
				diagrams = append(diagrams, e.DiagramPath)
			}
		}
		return repositories.NewUserRepository(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	for _, path := range diagrams {
		if s.store == nil {
			break
		}
		if err := s.store.Remove(path); err != nil {
			s.logger.Warn("failed to remove diagram", "path", path, "error", err)
		}
	}
	s.logger.Info("deleted user", "id", id, "diagrams", len(diagrams))
	return nil
}
