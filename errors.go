package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients as msg_code values.
const (
	TextCodeTokenRequired      = "AUTH_REQUIRE_TOKEN"
	TextCodeTokenMalformed     = "AUTH_TOKEN_MALFORMED"
	TextCodeTokenSignature     = "AUTH_TOKEN_SIGNATURE"
	TextCodeTokenExpired       = "AUTH_TOKEN_EXPIRED"
	TextCodeTokenInvalidated   = "AUTH_TOKEN_INVALIDATED"
	TextCodePrincipalNotFound  = "USER_ID_NOT_FOUND"
	TextCodeRestrictedAccess   = "AUTH_RESTRICTED_ACCESS"
	TextCodeMissingCredentials = "AUTH_REQUIRE_CREDENTIALS"
	TextCodeUsernameNotFound   = "USER_NAME_NOT_FOUND"
	TextCodeInvalidCreds       = "AUTH_PASSWORD_MISMATCH"
	TextCodeDuplicateUsername  = "VALIDATION_DUP_KEY"
	TextCodeValidationFailed   = "VALIDATION_FAIL"
	TextCodeEmptyPassword      = "AUTH_EMPTY_PASSWORD"
	TextCodeServerError        = "SERVER_ERROR"
)

// ErrMissingToken is returned when a protected request carries no token
var ErrMissingToken = errors.New("you are not logged in", errors.CategoryAuth).
	WithTextCode(TextCodeTokenRequired)

// ErrTokenMalformed is returned for tokens we cannot parse or whose
// signature does not verify
var ErrTokenMalformed = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrTokenSignatureInvalid is returned when the signature does not
// verify against the shared secret
var ErrTokenSignatureInvalid = errors.New("invalid token signature", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature)

// ErrTokenExpired is returned for tokens past their expiry
var ErrTokenExpired = errors.New("authentication token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenInvalidated is returned for tokens issued before the user's
// invalidation boundary
var ErrTokenInvalidated = errors.New("token is no longer valid (due to sign out or password change)", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalidated)

// ErrPrincipalNotFound is returned when a token references a user that
// no longer exists
var ErrPrincipalNotFound = errors.New("user does not exist", errors.CategoryAuth).
	WithTextCode(TextCodePrincipalNotFound)

// ErrRestrictedAccess is the only authorization failure distinguishable
// from the 401 class: the caller is identified but lacks the role
var ErrRestrictedAccess = errors.New("user does not have access", errors.CategoryAuthz).
	WithTextCode(TextCodeRestrictedAccess)

// ErrMissingCredentials is returned when login or registration payloads
// omit username or password
var ErrMissingCredentials = errors.New("please provide username and password", errors.CategoryValidation).
	WithTextCode(TextCodeMissingCredentials)

// ErrUsernameNotFound is returned on login with an unknown username
var ErrUsernameNotFound = errors.New("login failed (reason: username not found)", errors.CategoryNotFound).
	WithTextCode(TextCodeUsernameNotFound)

// ErrMismatchedHashAndPassword is returned when the password does not
// match the stored hash
var ErrMismatchedHashAndPassword = errors.New("login failed (reason: incorrect password)", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrPasswordConfirmation is returned when registration's confirmation
// password does not match, before any record is created
var ErrPasswordConfirmation = errors.New("failed to confirm new password", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidCreds)

// ErrDuplicateUsername is returned when registration hits the unique
// username constraint
var ErrDuplicateUsername = errors.New("duplicate key error", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateUsername)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrServerError is the opaque failure surfaced when anything
// unanticipated happens; details stay server side
var ErrServerError = errors.New("unexpected server error", errors.CategoryInternal).
	WithTextCode(TextCodeServerError)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for parse or signature failures
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsAccessDeniedError will check for the forbidden class
func IsAccessDeniedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	return errors.As(err, &richErr) && richErr.TextCode == TextCodeRestrictedAccess
}
