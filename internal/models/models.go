// package models defines the data model for the practice manager
package models

import "context"

// DateLayout is how practice dates are written to and parsed from storage and the API.
const DateLayout = "2006-01-02"

// Model defines the base interface for all persistent models.
// Implementations are User, Exercise and PracticeSession.
type Model interface {
	Entity() string  // Entity names the model in errors and logs
	Key() int64      // Key returns the primary key, zero before insert
	Validate() error // Validate checks field constraints and returns a *shared.ValidationError if any fail
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error                      // Create inserts a new model and sets its key
	Get(ctx context.Context, id int64) (T, error)                   // Get retrieves a model by its key
	Update(ctx context.Context, model T) error                      // Update modifies an existing model
	Delete(ctx context.Context, id int64) error                     // Delete removes a model (and its dependents)
	List(ctx context.Context, criteria map[string]any) ([]T, error) // List retrieves all models matching the criteria
}

// Principal is the authenticated caller an operation runs for.
// The zero value is an anonymous visitor.
type Principal struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Authenticated reports whether the principal refers to a user.
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// PrincipalFor builds the principal of a stored user.
func PrincipalFor(u *User) Principal {
	return Principal{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}
