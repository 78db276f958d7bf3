package auth_test

import (
	"context"
	"fmt"
	"sync"

	auth "github.com/eventrack/go-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockIdentity implements auth.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

// TestIdentity is a plain value identity for cases where mock
// expectations add nothing
type TestIdentity struct {
	id       string
	username string
	role     string
}

func (t TestIdentity) ID() string       { return t.id }
func (t TestIdentity) Username() string { return t.username }
func (t TestIdentity) Role() string     { return t.role }

// testLogger records log lines so tests can assert on them without
// mock expectations for every call
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) log(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *testLogger) Debug(format string, args ...any) { l.log("DBG", format, args...) }
func (l *testLogger) Info(format string, args ...any)  { l.log("INF", format, args...) }
func (l *testLogger) Error(format string, args ...any) { l.log("ERR", format, args...) }

// MockCredentialStore implements auth.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindAuthByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) VerifyCredentials(ctx context.Context, username, password string) (*auth.User, error) {
	args := m.Called(ctx, username, password)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) CreateWithPassword(ctx context.Context, username, password string) (*auth.User, error) {
	args := m.Called(ctx, username, password)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) StampSignOut(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenService implements auth.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(identity auth.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) SignClaims(claims *auth.JWTClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (auth.AuthClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(auth.AuthClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// mockConfig is a value-backed auth.Config
type mockConfig struct {
	signingKey      string
	contextKey      string
	tokenExpiration int
	renewalWindow   int
	tokenLookup     string
	authScheme      string
	issuer          string
}

func newMockConfig() *mockConfig {
	return &mockConfig{
		signingKey:      "test-signing-key",
		contextKey:      "authorized_user",
		tokenExpiration: 24,
		renewalWindow:   30,
		tokenLookup:     "header:Authorization,query:token",
		authScheme:      "Bearer",
	}
}

func (c *mockConfig) GetSigningKey() string    { return c.signingKey }
func (c *mockConfig) GetSigningMethod() string { return "HS256" }
func (c *mockConfig) GetContextKey() string    { return c.contextKey }
func (c *mockConfig) GetTokenExpiration() int  { return c.tokenExpiration }
func (c *mockConfig) GetRenewalWindow() int    { return c.renewalWindow }
func (c *mockConfig) GetTokenLookup() string   { return c.tokenLookup }
func (c *mockConfig) GetAuthScheme() string    { return c.authScheme }
func (c *mockConfig) GetIssuer() string        { return c.issuer }
