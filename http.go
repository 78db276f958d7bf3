package auth

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/eventrack/go-auth/middleware/guardware"
)

// errorStatus maps an error to the HTTP status clients see. The whole
// 401 class stays collapsed: only the forbidden kind is
// distinguishable from the outside.
func errorStatus(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return fiber.StatusInternalServerError
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusUnprocessableEntity
	case errors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// WriteError renders err as the msg-code JSON envelope. Unanticipated
// failures are logged with full detail and surfaced opaque.
func WriteError(c *fiber.Ctx, logger Logger, err error) error {
	return WriteErrorStatus(c, logger, err, errorStatus(err))
}

// WriteErrorStatus renders err with an explicit status, for call sites
// whose status differs from the category default.
func WriteErrorStatus(c *fiber.Ctx, logger Logger, err error, status int) error {
	if logger == nil {
		logger = defLogger{}
	}

	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed: %s", err)
		return c.Status(status).JSON(fiber.Map{
			"msg_code": TextCodeServerError,
			"message":  ErrServerError.Message,
		})
	}

	body := fiber.Map{
		"msg_code": errorTextCode(err),
		"message":  errorMessage(err),
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && len(richErr.Metadata) > 0 {
		if details, ok := richErr.Metadata["details"]; ok {
			body["details"] = details
		}
	}

	return c.Status(status).JSON(body)
}

func errorTextCode(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode != "" {
		return richErr.TextCode
	}
	return "AUTH_FAIL"
}

func errorMessage(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return err.Error()
}

type guardAdapter struct {
	authorizer *Authorizer
}

func (g guardAdapter) Authorize(ctx context.Context, rawToken string, allowedRoles ...string) (any, string, error) {
	authz, err := g.authorizer.Authorize(ctx, rawToken, allowedRoles...)
	if err != nil {
		return nil, "", err
	}
	return authz, authz.RenewedToken, nil
}

// Protected builds the guard middleware for a route, restricted to
// allowedRoles when given.
func Protected(authorizer *Authorizer, cfg Config, allowedRoles ...UserRole) fiber.Handler {
	guardCfg := guardware.Config{
		Authorizer:      guardAdapter{authorizer: authorizer},
		AllowedRoles:    allowedRoles,
		ContextKey:      LocalsPrincipalKey,
		RenewedTokenKey: LocalsRenewedTokenKey,
	}

	if cfg != nil {
		if key := cfg.GetContextKey(); key != "" {
			guardCfg.ContextKey = key
		}
		guardCfg.TokenLookup = cfg.GetTokenLookup()
		guardCfg.AuthScheme = cfg.GetAuthScheme()
	}

	guardCfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		status := fiber.StatusUnauthorized
		if IsAccessDeniedError(err) {
			status = fiber.StatusForbidden
		}
		return WriteErrorStatus(c, nil, err, status)
	}

	guardCfg.ContextEnricher = func(ctx context.Context, principal any) context.Context {
		if authz, ok := principal.(*Authorization); ok {
			return WithPrincipal(ctx, authz)
		}
		return ctx
	}

	return guardware.New(guardCfg)
}

// TokenRefreshResponder runs the downstream handler and, when the
// guard stored a renewed token for the request, merges it into the
// outgoing JSON body under the "token" key. Non-JSON responses pass
// through untouched.
func TokenRefreshResponder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		renewed, ok := RenewedTokenFromFiber(c)
		if !ok {
			return nil
		}

		contentType := string(c.Response().Header.ContentType())
		if !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return nil
		}

		var body map[string]any
		if err := json.Unmarshal(c.Response().Body(), &body); err != nil {
			return nil
		}

		body["token"] = renewed
		return c.JSON(body)
	}
}
