// Package auth registers and authenticates users and issues their session tokens.
package auth

import (
	"context"

	"github.com/mmynk/splitperfect/internal/models"
)

// Authenticator turns an email and a credential into a user.
// PasswordAuthenticator is the only implementation; the credential is a password.
type Authenticator interface {
	// Register creates an account. It fails with ErrEmailExists if the email is taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching email and credential, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}
