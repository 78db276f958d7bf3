package auth

import (
	"os"
	"strconv"

	"github.com/goliatone/go-errors"
)

// Default configuration values, matching the guard defaults.
const (
	DefaultSigningMethod   = "HS256"
	DefaultContextKey      = "authorized_user"
	DefaultTokenExpiration = 24
	DefaultRenewalWindow   = 30
	DefaultTokenLookup     = "header:Authorization,query:token"
	DefaultAuthScheme      = "Bearer"
)

// EnvConfig loads auth options from the environment. The signing
// secret has no default and no fallback: construction fails without it.
type EnvConfig struct {
	SigningKey      string
	SigningMethod   string
	ContextKey      string
	TokenExpiration int
	RenewalWindow   int
	TokenLookup     string
	AuthScheme      string
	Issuer          string
}

var _ Config = (*EnvConfig)(nil)

// NewEnvConfig reads JWT_SECRET, JWT_EXPIRES_IN (hours),
// JWT_REFRESH_OVERLAP (minutes), JWT_ISSUER, AUTH_TOKEN_LOOKUP,
// AUTH_SCHEME, and AUTH_CONTEXT_KEY. Callers should treat a missing
// secret as fatal at startup.
func NewEnvConfig() (*EnvConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("missing JWT_SECRET environment variable", errors.CategoryBadInput).
			WithTextCode("CONFIG_MISSING_SECRET")
	}

	cfg := &EnvConfig{
		SigningKey:      secret,
		SigningMethod:   DefaultSigningMethod,
		ContextKey:      envOr("AUTH_CONTEXT_KEY", DefaultContextKey),
		TokenExpiration: envIntOr("JWT_EXPIRES_IN", DefaultTokenExpiration),
		RenewalWindow:   envIntOr("JWT_REFRESH_OVERLAP", DefaultRenewalWindow),
		TokenLookup:     envOr("AUTH_TOKEN_LOOKUP", DefaultTokenLookup),
		AuthScheme:      envOr("AUTH_SCHEME", DefaultAuthScheme),
		Issuer:          os.Getenv("JWT_ISSUER"),
	}

	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string   { return c.SigningKey }
func (c *EnvConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return DefaultSigningMethod
	}
	return c.SigningMethod
}
func (c *EnvConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return DefaultContextKey
	}
	return c.ContextKey
}
func (c *EnvConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return DefaultTokenExpiration
	}
	return c.TokenExpiration
}
func (c *EnvConfig) GetRenewalWindow() int { return c.RenewalWindow }
func (c *EnvConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return DefaultTokenLookup
	}
	return c.TokenLookup
}
func (c *EnvConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return DefaultAuthScheme
	}
	return c.AuthScheme
}
func (c *EnvConfig) GetIssuer() string { return c.Issuer }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
