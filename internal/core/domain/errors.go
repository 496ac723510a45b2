package domain

import "errors"

// Domain failures are expected outcomes, surfaced as typed sentinels
// so the route layer can translate each one to a fixed HTTP status.
var (
	// ErrUserNotFound: login has no matching account.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidPassword: stored hash does not verify.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrLoginExists / ErrEmailExists: uniqueness violation at
	// sign-up or profile edit.
	ErrLoginExists = errors.New("login already exists")
	ErrEmailExists = errors.New("email already exists")

	// ErrTokenInvalid: token fails the cryptographic or expiry check.
	ErrTokenInvalid = errors.New("token expired or signature invalid")
	// ErrAccessRevoked: the access token's jti is on the denylist.
	ErrAccessRevoked = errors.New("access token revoked")
	// ErrUnsafeEntry: fingerprint mismatch, treated as a hijack signal.
	ErrUnsafeEntry = errors.New("unsafe entry: fingerprint mismatch")
	// ErrRefreshNotOutstanding: refresh token absent, already
	// consumed, or unparseable.
	ErrRefreshNotOutstanding = errors.New("refresh token not outstanding")
	// ErrPairMismatch: refresh token presented with an unrelated
	// access token.
	ErrPairMismatch = errors.New("access/refresh pair mismatch")

	// ErrRoleNotFound: no role at the requested level or id.
	ErrRoleNotFound = errors.New("role does not exist")
	// ErrRoleExists: a role already occupies the level.
	ErrRoleExists = errors.New("role already exists")
)

// Infra failures are transient and retryable. They must never be
// conflated with the security sentinels above: a cache outage is not
// an attack.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrCacheUnavailable   = errors.New("cache unavailable")
)
