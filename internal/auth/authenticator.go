package auth

import (
	"context"

	"github.com/mmynk/cashflow/internal/models"
)

var _ Authenticator = (*PasswordAuthenticator)(nil)

// Authenticator proves who owns an account. AuthService depends only on this,
// so a different credential scheme can replace passwords without touching it.
type Authenticator interface {
	// Register stores a new account. It fails with ErrEmailExists if the
	// email is taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.Account, error)

	// Authenticate returns the account whose credential matches, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.Account, error)

	ValidateCredential(credential string) error
}
