package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// LocalsPrincipalKey is the default fiber locals key the guard
// middleware stores the Authorization under.
var LocalsPrincipalKey = "authorized_user"

// LocalsRenewedTokenKey is the fiber locals key carrying a proactively
// renewed token for the response path.
var LocalsRenewedTokenKey = "renewed_token"

var principalCtxKey = &contextKey{"principal"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithPrincipal sets the Authorization in the given context
func WithPrincipal(r context.Context, authz *Authorization) context.Context {
	return context.WithValue(r, principalCtxKey, authz)
}

// PrincipalFromContext finds the Authorization from the context.
func PrincipalFromContext(ctx context.Context) (*Authorization, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*Authorization)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// PrincipalFromFiber extracts the Authorization stored by the guard
// middleware for the current request.
func PrincipalFromFiber(c *fiber.Ctx, key ...string) (*Authorization, bool) {
	k := LocalsPrincipalKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	raw := c.Locals(k)
	if raw == nil {
		return nil, false
	}
	authz, ok := raw.(*Authorization)
	return authz, ok
}

// RenewedTokenFromFiber returns the renewed token the guard stored for
// this request, if any.
func RenewedTokenFromFiber(c *fiber.Ctx) (string, bool) {
	raw := c.Locals(LocalsRenewedTokenKey)
	if raw == nil {
		return "", false
	}
	token, ok := raw.(string)
	return token, ok && token != ""
}
