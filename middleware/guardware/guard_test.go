package guardware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eventrack/go-auth/middleware/guardware"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthorizer struct {
	principal    any
	renewedToken string
	err          error

	gotToken string
	gotRoles []string
}

func (s *stubAuthorizer) Authorize(ctx context.Context, rawToken string, allowedRoles ...string) (any, string, error) {
	s.gotToken = rawToken
	s.gotRoles = allowedRoles
	if s.err != nil {
		return nil, "", s.err
	}
	return s.principal, s.renewedToken, nil
}

func newGuardedApp(cfg guardware.Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected", guardware.New(cfg), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestGuard(t *testing.T) {
	t.Run("passes the extracted bearer token to the authorizer", func(t *testing.T) {
		authorizer := &stubAuthorizer{principal: "principal"}
		app := newGuardedApp(guardware.Config{Authorizer: authorizer})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer raw-token")

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
		assert.Equal(t, "raw-token", authorizer.gotToken)
	})

	t.Run("falls back to the query parameter", func(t *testing.T) {
		authorizer := &stubAuthorizer{principal: "principal"}
		app := newGuardedApp(guardware.Config{Authorizer: authorizer})

		res, err := app.Test(httptest.NewRequest("GET", "/protected?token=query-token", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
		assert.Equal(t, "query-token", authorizer.gotToken)
	})

	t.Run("no token still consults the authorizer with an empty string", func(t *testing.T) {
		authorizer := &stubAuthorizer{err: goerrors.New("you are not logged in", goerrors.CategoryAuth).
			WithTextCode("AUTH_REQUIRE_TOKEN")}
		app := newGuardedApp(guardware.Config{Authorizer: authorizer})

		res, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "", authorizer.gotToken)

		body := decode(t, res)
		assert.Equal(t, "AUTH_REQUIRE_TOKEN", body["msg_code"])
	})

	t.Run("forbidden category maps to 403", func(t *testing.T) {
		authorizer := &stubAuthorizer{err: goerrors.New("user does not have access", goerrors.CategoryAuthz).
			WithTextCode("AUTH_RESTRICTED_ACCESS")}
		app := newGuardedApp(guardware.Config{Authorizer: authorizer})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer raw-token")

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	})

	t.Run("untyped errors stay 401 with a generic code", func(t *testing.T) {
		authorizer := &stubAuthorizer{err: errors.New("boom")}
		app := newGuardedApp(guardware.Config{Authorizer: authorizer})

		res, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

		body := decode(t, res)
		assert.Equal(t, "AUTH_FAIL", body["msg_code"])
	})

	t.Run("stores principal and renewed token in locals", func(t *testing.T) {
		authorizer := &stubAuthorizer{principal: "the-principal", renewedToken: "renewed"}

		app := fiber.New()
		app.Get("/protected", guardware.New(guardware.Config{Authorizer: authorizer}), func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"principal": c.Locals("authorized_user"),
				"renewed":   c.Locals("renewed_token"),
			})
		})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer raw-token")

		res, err := app.Test(req)
		require.NoError(t, err)

		body := decode(t, res)
		assert.Equal(t, "the-principal", body["principal"])
		assert.Equal(t, "renewed", body["renewed"])
	})

	t.Run("forwards allowed roles", func(t *testing.T) {
		authorizer := &stubAuthorizer{principal: "principal"}
		app := newGuardedApp(guardware.Config{
			Authorizer:   authorizer,
			AllowedRoles: []string{"admin"},
		})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer raw-token")

		_, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, []string{"admin"}, authorizer.gotRoles)
	})

	t.Run("filter skips the guard entirely", func(t *testing.T) {
		authorizer := &stubAuthorizer{err: errors.New("should not run")}
		app := newGuardedApp(guardware.Config{
			Authorizer: authorizer,
			Filter:     func(c *fiber.Ctx) bool { return true },
		})

		res, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})
}

func TestGetExtractors(t *testing.T) {
	t.Run("parses the lookup chain", func(t *testing.T) {
		extractors := guardware.GetExtractors("header:Authorization,query:token,cookie:jwt,param:token")
		assert.Len(t, extractors, 4)
	})

	t.Run("skips malformed entries", func(t *testing.T) {
		extractors := guardware.GetExtractors("header,query:token")
		assert.Len(t, extractors, 1)
	})
}

func decode(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
