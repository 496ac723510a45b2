package domain

import "time"

// TokenPair is an access/refresh pair issued together. The refresh
// token embeds the access token's identifier, binding the pair.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// TokenClaims is the decoded payload of a signed token. Tokens are
// immutable once signed; supersession by a newly issued pair is their
// only form of mutation.
type TokenClaims struct {
	// UserID is the token subject.
	UserID string
	// TokenID is the jti, the key used for denylist markers.
	TokenID string
	// Fingerprint is the client User-Agent bound into the token as a
	// lightweight anti-theft signal, not a security boundary by itself.
	Fingerprint string
	IsAdmin     bool
	ExpiresAt   time.Time
	// LinkedAccessID is set on refresh tokens only: the jti of the
	// access token issued alongside.
	LinkedAccessID string
}
