package auth_test

import (
	"context"
	"testing"

	auth "github.com/eventrack/go-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the user inside a transaction", func(t *testing.T) {
		manager := auth.NewRepositoryManager(newTestDB(t))
		handler := auth.NewRegisterUserHandler(manager)

		var created *auth.User
		err := handler.Execute(ctx, auth.RegisterUserMessage{
			Username:   "newbie",
			Password:   "password123",
			OnResponse: func(u *auth.User) { created = u },
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, auth.RoleUser, created.Role)
		assert.NoError(t, auth.ComparePasswordAndHash("password123", created.PasswordHash))
		assert.NotNil(t, created.PasswordChangedAt)
		assert.NotNil(t, created.LastSignOutAt)
	})

	t.Run("duplicate username maps to the conflict error", func(t *testing.T) {
		manager := auth.NewRepositoryManager(newTestDB(t))
		handler := auth.NewRegisterUserHandler(manager)

		require.NoError(t, handler.Execute(ctx, auth.RegisterUserMessage{
			Username: "taken",
			Password: "password123",
		}))

		err := handler.Execute(ctx, auth.RegisterUserMessage{
			Username: "taken",
			Password: "password456",
		})
		assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
	})

	t.Run("missing credentials are rejected before the transaction", func(t *testing.T) {
		manager := auth.NewRepositoryManager(newTestDB(t))
		handler := auth.NewRegisterUserHandler(manager)

		err := handler.Execute(ctx, auth.RegisterUserMessage{Username: "no-password"})
		assert.ErrorIs(t, err, auth.ErrMissingCredentials)

		err = handler.Execute(ctx, auth.RegisterUserMessage{Password: "password123"})
		assert.ErrorIs(t, err, auth.ErrMissingCredentials)
	})

	t.Run("hashid derives a deterministic id", func(t *testing.T) {
		managerA := auth.NewRepositoryManager(newTestDB(t))
		managerB := auth.NewRepositoryManager(newTestDB(t))

		var a, b *auth.User
		require.NoError(t, auth.NewRegisterUserHandler(managerA).Execute(ctx, auth.RegisterUserMessage{
			Username:   "same-user",
			Password:   "password123",
			UseHashid:  true,
			OnResponse: func(u *auth.User) { a = u },
		}))
		require.NoError(t, auth.NewRegisterUserHandler(managerB).Execute(ctx, auth.RegisterUserMessage{
			Username:   "same-user",
			Password:   "password123",
			UseHashid:  true,
			OnResponse: func(u *auth.User) { b = u },
		}))

		require.NotNil(t, a)
		require.NotNil(t, b)
		assert.Equal(t, a.ID, b.ID)
	})
}
