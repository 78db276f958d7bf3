package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// Authorization is the all-or-nothing result of a successful
// authorization decision: the resolved principal with the effective
// role applied, plus an optional proactively renewed token for the
// response path. It is never partially filled.
type Authorization struct {
	User          *User
	EffectiveRole UserRole
	// RenewedToken is set when the presented token was inside the
	// renewal window. Renewal is best effort and never affects the
	// allow/deny verdict.
	RenewedToken string
}

// Authorizer turns a raw token string into an Authorization or a typed
// rejection. It orchestrates decode, principal resolution, the
// invalidation policy, proactive renewal, and the role check, strictly
// in that order, short-circuiting on the first failing step.
type Authorizer struct {
	store          CredentialStore
	tokenService   TokenService
	tokenValidator TokenValidator
	renewalWindow  time.Duration
	logger         Logger
}

// NewAuthorizer returns a new Authorizer. The renewal window comes from
// cfg in whole minutes.
func NewAuthorizer(store CredentialStore, tokenService TokenService, cfg Config) *Authorizer {
	var window time.Duration
	if cfg != nil && cfg.GetRenewalWindow() > 0 {
		window = time.Duration(cfg.GetRenewalWindow()) * time.Minute
	}

	return &Authorizer{
		store:         store,
		tokenService:  tokenService,
		renewalWindow: window,
		logger:        defLogger{},
	}
}

func (a *Authorizer) WithLogger(logger Logger) *Authorizer {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithTokenValidator sets a custom validator for externally issued tokens.
func (a *Authorizer) WithTokenValidator(validator TokenValidator) *Authorizer {
	a.tokenValidator = validator
	return a
}

// WithRenewalWindow overrides the configured renewal window.
func (a *Authorizer) WithRenewalWindow(window time.Duration) *Authorizer {
	a.renewalWindow = window
	return a
}

// TokenService returns the TokenService instance used by this Authorizer
func (a *Authorizer) TokenService() TokenService {
	return a.tokenService
}

// Authorize runs the decision procedure for a protected request. An
// empty allowedRoles list admits any authenticated principal.
func (a *Authorizer) Authorize(ctx context.Context, rawToken string, allowedRoles ...UserRole) (*Authorization, error) {
	if rawToken == "" {
		return nil, ErrMissingToken
	}

	validator := a.tokenValidator
	if validator == nil {
		validator = a.tokenService
	}

	claims, err := validator.Validate(rawToken)
	if err != nil {
		a.logger.Debug("Authorize token validation failed: %s", err)
		return nil, err
	}

	user, err := a.store.FindAuthByID(ctx, claims.UserID())
	if err != nil {
		if errors.IsNotFound(err) || errors.Is(err, ErrPrincipalNotFound) {
			return nil, ErrPrincipalNotFound
		}
		a.logger.Error("Authorize principal lookup failed for %s: %s", claims.UserID(), err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve principal")
	}
	if user == nil {
		return nil, ErrPrincipalNotFound
	}

	if IsTokenInvalidated(user, claims.IssuedAt()) {
		return nil, ErrTokenInvalidated
	}

	// Renewal is decided before the role check but must never block or
	// reorder the verdict; issuance failures are logged and skipped.
	renewed := ""
	if RenewalDue(claims.Expires(), time.Now(), a.renewalWindow) {
		token, err := a.tokenService.Generate(identityFromUser(user))
		if err != nil {
			a.logger.Error("failed to generate renewed token: %s", err)
		} else {
			renewed = token
		}
	}

	effective := user.Role
	if override, ok := claims.RoleOverride(); ok {
		effective = override
	}

	if len(allowedRoles) > 0 && !ContainsRole(allowedRoles, effective) {
		return nil, ErrRestrictedAccess
	}

	principal := *user
	principal.Role = effective

	return &Authorization{
		User:          &principal,
		EffectiveRole: effective,
		RenewedToken:  renewed,
	}, nil
}

type authIdentity struct {
	id       string
	username string
	role     string
}

func (i authIdentity) ID() string       { return i.id }
func (i authIdentity) Username() string { return i.username }
func (i authIdentity) Role() string     { return i.role }

var _ Identity = authIdentity{}

func identityFromUser(user *User) Identity {
	return authIdentity{
		id:       user.ID.String(),
		username: user.Username,
		role:     string(user.Role),
	}
}
