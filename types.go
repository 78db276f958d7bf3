package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Role() string
}

// CredentialStore is the user record collaborator the authorization
// engine and the session mutators depend on.
type CredentialStore interface {
	// FindAuthByID loads the fields needed for an authorization
	// decision (id, username, role, password hash, invalidation stamps).
	FindAuthByID(ctx context.Context, id string) (*User, error)
	// FindByUsername loads a user by username, password hash included.
	FindByUsername(ctx context.Context, username string) (*User, error)
	// VerifyCredentials compares the plaintext password against the
	// stored hash and returns the matching user.
	VerifyCredentials(ctx context.Context, username, password string) (*User, error)
	// CreateWithPassword creates a user; hashing and invalidation
	// stamps happen inside the call, as a single atomic creation.
	CreateWithPassword(ctx context.Context, username, password string) (*User, error)
	// StampSignOut records an explicit sign out for the given user.
	StampSignOut(ctx context.Context, id uuid.UUID) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetRenewalWindow() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
