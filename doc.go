// Package auth provides request authentication and role authorization
// for JSON APIs: an HS256 token codec, a credential store backed by
// bun, a token invalidation policy driven by password changes and sign
// outs, and an authorization engine that resolves a raw bearer token
// into a principal with an effective role.
//
// The typical wiring is a TokenService and a CredentialStore composed
// into an Authorizer, exposed over HTTP through the guardware fiber
// middleware and the AuthController session endpoints.
package auth
