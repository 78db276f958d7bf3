package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the decoded view of a token the authorization engine
// works against.
type AuthClaims interface {
	Subject() string
	UserID() string
	// RoleOverride returns the embedded role claim when present and
	// part of the known role enumeration. Unrecognized values are
	// ignored, not errors.
	RoleOverride() (UserRole, bool)
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
	// SpecialRole supersedes the stored role for a single request.
	// Only MintElevatedToken sets it; Generate never does.
	SpecialRole string `json:"special_role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// RoleOverride returns the validated special role claim
func (c *JWTClaims) RoleOverride() (UserRole, bool) {
	if c.SpecialRole == "" {
		return "", false
	}
	return ParseRole(c.SpecialRole)
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
