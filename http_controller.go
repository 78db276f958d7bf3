package auth

import (
	stderrors "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// RegisterAuthRoutes mounts the session endpoints on the given router.
// Logout sits behind the controller's guard so a stale token still
// resolves to a no-op success.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	app.Post(controller.Routes.Login, controller.Login)
	app.Post(controller.Routes.Register, controller.Register)
	app.Post(controller.Routes.Logout, controller.Guard, controller.Logout)
}

type AuthControllerRoutes struct {
	Login    string
	Logout   string
	Register string
}

// AuthController serves the JSON session mutators: login, logout, and
// register.
type AuthController struct {
	Debug  bool
	Logger Logger
	Store  CredentialStore
	Tokens TokenService
	Guard  fiber.Handler
	Routes *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:    "/auth/login",
			Logout:   "/auth/logout",
			Register: "/auth/register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Store == nil {
		panic("Missing CredentialStore in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	if c.Guard == nil {
		// logout is a no-op without a resolvable principal
		c.Guard = func(ctx *fiber.Ctx) error { return ctx.Next() }
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithCredentialStore(store CredentialStore) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Store = store
		return c
	}
}

func WithTokenService(tokens TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = tokens
		return c
	}
}

func WithGuard(guard fiber.Handler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Guard = guard
		return c
	}
}

// LoginPayload is the login request body
type LoginPayload struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// Login verifies credentials and issues a fresh token. Credential
// failures, unknown username included, come back as 400s.
func (a *AuthController) Login(ctx *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("Login parse payload: %s", err)
		return WriteErrorStatus(ctx, a.Logger, ErrMissingCredentials, fiber.StatusBadRequest)
	}

	if payload.Username == "" || payload.Password == "" {
		return WriteErrorStatus(ctx, a.Logger, ErrMissingCredentials, fiber.StatusBadRequest)
	}

	user, err := a.Store.VerifyCredentials(ctx.UserContext(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		if stderrors.Is(err, ErrUsernameNotFound) || stderrors.Is(err, ErrMismatchedHashAndPassword) {
			return WriteErrorStatus(ctx, a.Logger, err, fiber.StatusBadRequest)
		}
		return WriteError(ctx, a.Logger, err)
	}

	token, err := a.Tokens.Generate(identityFromUser(user))
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(fiber.Map{
		"user":  user.Public(),
		"token": token,
	})
}

// Logout stamps the sign-out time for the resolved principal. Without
// one it is still a success: the token is useless either way.
func (a *AuthController) Logout(ctx *fiber.Ctx) error {
	if authz, ok := PrincipalFromFiber(ctx); ok && authz.User != nil {
		if err := a.Store.StampSignOut(ctx.UserContext(), authz.User.ID); err != nil {
			return WriteError(ctx, a.Logger, err)
		}
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// RegisterPayload is the registration request body
type RegisterPayload struct {
	Username        string `form:"username" json:"username"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// Register creates the user, then issues a token so the new account is
// signed in immediately. The confirmation password is checked before
// anything touches the store.
func (a *AuthController) Register(ctx *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("Register parse payload: %s", err)
		return WriteErrorStatus(ctx, a.Logger, ErrMissingCredentials, fiber.StatusBadRequest)
	}

	if payload.Username == "" || payload.Password == "" || payload.ConfirmPassword == "" {
		return WriteErrorStatus(ctx, a.Logger, ErrMissingCredentials, fiber.StatusBadRequest)
	}

	if payload.Password != payload.ConfirmPassword {
		return WriteError(ctx, a.Logger, ErrPasswordConfirmation)
	}

	if err := payload.Validate(); err != nil {
		details := FormatValidationErrorToMap(err)
		richErr := errors.New("invalid registration payload", errors.CategoryValidation).
			WithTextCode(TextCodeValidationFailed).
			WithMetadata(map[string]any{"details": details})
		return WriteError(ctx, a.Logger, richErr)
	}

	user, err := a.Store.CreateWithPassword(ctx.UserContext(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Error("Register error: %s", err)
		return WriteError(ctx, a.Logger, err)
	}

	token, err := a.Tokens.Generate(identityFromUser(user))
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  user.Public(),
		"token": token,
	})
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return stderrors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field to message map for the response envelope.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if stderrors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}
