package auth

import "time"

// Token timestamps live in whole unix seconds while persisted
// timestamps keep full precision. Every comparison between the two
// goes through these helpers so the truncation happens in one place.

// UnixSeconds truncates a timestamp to whole unix seconds.
func UnixSeconds(t time.Time) int64 {
	return t.Unix()
}

// BeforeInSeconds reports whether a precedes b once both are truncated
// to whole seconds. Equal seconds compare as not-before.
func BeforeInSeconds(a, b time.Time) bool {
	return UnixSeconds(a) < UnixSeconds(b)
}

// SecondsUntil returns the whole seconds from now until t. Negative
// when t is in the past.
func SecondsUntil(t, now time.Time) int64 {
	return UnixSeconds(t) - UnixSeconds(now)
}

// RenewalDue reports whether a token expiring at expiresAt is inside
// the renewal window and should trigger a proactive replacement.
func RenewalDue(expiresAt, now time.Time, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	return SecondsUntil(expiresAt, now) < int64(window/time.Second)
}
