package account

import (
	"context"
	"time"

	"murmur/cmd/security/password"
)

// Account is the public view of a registered user.
type Account struct {
	ID          string
	Handle      string
	HandleNorm  string
	DisplayName *string
	CreatedAt   time.Time
}

// AccountAuth pairs an account with its stored credential.
// It never leaves the account package boundary in API responses.
type AccountAuth struct {
	Account      Account
	PasswordHash password.Digest
}

// CreateAccountInput is a fully validated row ready for insertion.
type CreateAccountInput struct {
	ID           string
	Handle       string
	HandleNorm   string
	DisplayName  *string
	PasswordHash password.Digest
	CreatedAt    time.Time
}

// Store is the account persistence boundary.
//
// Lookups by handle use the normalized form. Duplicate handles return ConflictError{Field: "handle"};
// missing rows return NotFoundError.
type Store interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error)
	GetAccountByID(ctx context.Context, id string) (Account, error)
	GetAccountByHandle(ctx context.Context, handle string) (Account, error)
	GetAccountAuthByHandle(ctx context.Context, handle string) (AccountAuth, error)
	DeleteAccount(ctx context.Context, id string) error
}
