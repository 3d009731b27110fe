package auth

import (
	"context"
	"errors"
)

// Store-level errors. ErrDuplicateAccount surfaces unique-index conflicts so
// callers can apply the re-fetch-and-return-existing rule for concurrent
// identical creates.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already exists")
)

// UserStore persists Account records. Uniqueness of email and google_id is
// enforced at the store level so that two simultaneous external-login
// callbacks for a brand-new identity cannot create two accounts.
type UserStore interface {
	// Create inserts a new account and fills in its id. Returns
	// ErrDuplicateAccount when email or google_id already exists.
	Create(ctx context.Context, acc *Account) error

	// FindByID loads an account by id with the password hash omitted; the
	// result is what guards attach to requests.
	FindByID(ctx context.Context, id string) (*Account, error)

	// FindByEmail loads an account by case-insensitive email, including the
	// password hash for credential verification.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// FindByGoogleID loads an account by its external identity.
	FindByGoogleID(ctx context.Context, googleID string) (*Account, error)

	// LinkGoogle attaches an external identity to an existing account,
	// switching its auth provider and setting the given role. Returns the
	// updated account.
	LinkGoogle(ctx context.Context, id, googleID string, role Role) (*Account, error)

	// SetRole updates the account's role.
	SetRole(ctx context.Context, id string, role Role) error
}
