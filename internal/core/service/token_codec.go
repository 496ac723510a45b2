package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/moviestream/identity-system/internal/core/domain"
)

// tokenClaims is the signed wire shape of both token kinds.
// LinkedAccessID is present on refresh tokens only and carries the jti
// of the access token issued alongside.
type tokenClaims struct {
	Fingerprint    string `json:"user_agent"`
	IsAdmin        bool   `json:"is_admin"`
	LinkedAccessID string `json:"uuid_access,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec creates and verifies signed claim sets. It owns nothing
// but the signing key and the two lifetimes; delivery of the tokens is
// the session layer's concern.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &TokenCodec{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssuePair signs a fresh access/refresh pair for subject. The refresh
// token gets its own jti, the longer lifetime, and the access token's
// jti embedded as uuid_access.
func (c *TokenCodec) IssuePair(subject, fingerprint string, isAdmin bool) (*domain.TokenPair, *domain.TokenClaims, error) {
	now := time.Now().UTC()
	accessID := uuid.NewString()

	access := tokenClaims{
		Fingerprint: fingerprint,
		IsAdmin:     isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        accessID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}
	refresh := tokenClaims{
		Fingerprint:    fingerprint,
		IsAdmin:        isAdmin,
		LinkedAccessID: accessID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(c.secret)
	if err != nil {
		return nil, nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(c.secret)
	if err != nil {
		return nil, nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &domain.TokenPair{Access: accessToken, Refresh: refreshToken}, toDomain(&access), nil
}

// VerifyAccess checks signature and expiry and returns the claims.
// Refresh tokens are rejected here: a token carrying uuid_access must
// not pass where an access token is expected.
func (c *TokenCodec) VerifyAccess(token string) (*domain.TokenClaims, error) {
	claims, err := c.parse(token, true)
	if err != nil {
		return nil, err
	}
	if claims.LinkedAccessID != "" {
		return nil, domain.ErrTokenInvalid
	}
	return toDomain(claims), nil
}

// VerifyRefresh checks signature and expiry of a refresh token. The
// uuid_access linkage must be present.
func (c *TokenCodec) VerifyRefresh(token string) (*domain.TokenClaims, error) {
	claims, err := c.parse(token, true)
	if err != nil {
		return nil, err
	}
	if claims.LinkedAccessID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return toDomain(claims), nil
}

// DecodeAccessAllowExpired verifies the signature but skips claim
// validation, so an already-expired access token can still be read
// during refresh to check the pair linkage.
func (c *TokenCodec) DecodeAccessAllowExpired(token string) (*domain.TokenClaims, error) {
	claims, err := c.parse(token, false)
	if err != nil {
		return nil, err
	}
	return toDomain(claims), nil
}

func (c *TokenCodec) parse(token string, validateClaims bool) (*tokenClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if !validateClaims {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

func toDomain(claims *tokenClaims) *domain.TokenClaims {
	out := &domain.TokenClaims{
		UserID:         claims.Subject,
		TokenID:        claims.ID,
		Fingerprint:    claims.Fingerprint,
		IsAdmin:        claims.IsAdmin,
		LinkedAccessID: claims.LinkedAccessID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out
}
