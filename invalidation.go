package auth

import "time"

// IsTokenInvalidated reports whether a token issued at issuedAt must be
// rejected for the given user despite a valid signature: any password
// change or explicit sign out after issuance invalidates it.
//
// The token's issued-at carries whole-second precision; stored stamps
// are truncated at the comparison site. Strictly-before semantics: a
// token issued within the same second as the event stays valid.
func IsTokenInvalidated(user *User, issuedAt time.Time) bool {
	if user == nil {
		return true
	}

	if user.PasswordChangedAt != nil && BeforeInSeconds(issuedAt, *user.PasswordChangedAt) {
		return true
	}

	if user.LastSignOutAt != nil && BeforeInSeconds(issuedAt, *user.LastSignOutAt) {
		return true
	}

	return false
}
