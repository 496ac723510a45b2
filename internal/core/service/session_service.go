package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/moviestream/identity-system/internal/core/domain"
	"github.com/moviestream/identity-system/internal/core/ports"
)

const (
	accessKeyPrefix  = "denylist:access:"
	refreshKeyPrefix = "denylist:refresh:"

	defaultDenylistFloor = 5 * time.Minute
)

// SessionService orchestrates the session-credential lifecycle. The
// denylist is the sole source of truth for "has this credential been
// consumed or revoked": cryptographic validity is necessary but not
// sufficient. Normal access validation is a local signature check plus
// one cache lookup; the denylist is only written on refresh, logout
// and anomaly detection.
type SessionService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	codec    *TokenCodec
	denylist ports.Denylist
	history  ports.HistoryRecorder
	log      zerolog.Logger

	// denylistFloor is the minimum marker TTL, covering clock skew
	// between issuing and validating processes.
	denylistFloor time.Duration
}

func NewSessionService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	codec *TokenCodec,
	denylist ports.Denylist,
	history ports.HistoryRecorder,
	log zerolog.Logger,
	denylistFloor time.Duration,
) *SessionService {
	if denylistFloor <= 0 {
		denylistFloor = defaultDenylistFloor
	}
	return &SessionService{
		users:         users,
		roles:         roles,
		codec:         codec,
		denylist:      denylist,
		history:       history,
		log:           log,
		denylistFloor: denylistFloor,
	}
}

// SignUp creates an account bound to the lowest-level role. When the
// role ladder is empty a default role is created first. No tokens are
// issued at sign-up.
func (s *SessionService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	existing, err := s.users.FindByLoginOrEmail(ctx, in.Login, in.Email)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Login == in.Login {
			return nil, domain.ErrLoginExists
		}
		return nil, domain.ErrEmailExists
	}

	role, err := s.roles.FindLowest(ctx)
	if errors.Is(err, domain.ErrRoleNotFound) {
		role, err = s.roles.Create(ctx, domain.DefaultRole())
	}
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Login:        in.Login,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		RoleID:       role.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.users.Create(ctx, user)
}

// LogIn verifies credentials and issues a token pair bound to the
// presented fingerprint. The attempt is recorded in the login history
// on every path, success or failure.
func (s *SessionService) LogIn(ctx context.Context, login, password, fingerprint string) (*domain.TokenPair, error) {
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record("", fingerprint, domain.EventLogin, false)
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.record(user.ID, fingerprint, domain.EventLogin, false)
		return nil, domain.ErrInvalidPassword
	}

	pair, _, err := s.codec.IssuePair(user.ID, fingerprint, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.record(user.ID, fingerprint, domain.EventLogin, true)
	return pair, nil
}

// ValidateAccess decodes the access token, rejects denylisted token
// ids and enforces the fingerprint binding. A fingerprint mismatch is
// treated as a hijack signal: the token's jti is denylisted for its
// remaining lifetime before ErrUnsafeEntry is returned.
func (s *SessionService) ValidateAccess(ctx context.Context, token, fingerprint string) (*domain.TokenClaims, error) {
	claims, err := s.codec.VerifyAccess(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.denylist.Exists(ctx, accessKeyPrefix+claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrAccessRevoked
	}

	if claims.Fingerprint != fingerprint {
		if err := s.denylist.SetWithTTL(ctx, accessKeyPrefix+claims.TokenID, s.markTTL(claims.ExpiresAt)); err != nil {
			s.log.Error().Err(err).Str("user_id", claims.UserID).Msg("denylist write after fingerprint mismatch failed")
		}
		return nil, domain.ErrUnsafeEntry
	}

	return claims, nil
}

// Refresh exchanges an outstanding refresh token for a brand-new pair.
// Consumption is atomic: the raw refresh token value is denylisted via
// a conditional set, so of two concurrent calls at most one succeeds.
// Every failure branch records a failed refresh history event.
func (s *SessionService) Refresh(ctx context.Context, fingerprint, accessToken, refreshToken string) (*domain.TokenPair, error) {
	refClaims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		s.record("", fingerprint, domain.EventRefresh, false)
		return nil, fmt.Errorf("%w: %w", domain.ErrRefreshNotOutstanding, err)
	}

	accClaims, err := s.codec.DecodeAccessAllowExpired(accessToken)
	if err != nil || refClaims.LinkedAccessID != accClaims.TokenID {
		s.record(refClaims.UserID, fingerprint, domain.EventRefresh, false)
		return nil, domain.ErrPairMismatch
	}

	if refClaims.Fingerprint != fingerprint {
		s.record(refClaims.UserID, fingerprint, domain.EventRefresh, false)
		return nil, domain.ErrUnsafeEntry
	}

	// Linearization point: the first caller to plant the marker owns
	// the rotation, everyone else sees the token as consumed.
	key := refreshKeyPrefix + refreshToken
	won, err := s.denylist.SetIfAbsentWithTTL(ctx, key, s.markTTL(refClaims.ExpiresAt))
	if err != nil {
		return nil, err
	}
	if !won {
		s.record(refClaims.UserID, fingerprint, domain.EventRefresh, false)
		return nil, domain.ErrRefreshNotOutstanding
	}

	pair, _, err := s.codec.IssuePair(refClaims.UserID, fingerprint, refClaims.IsAdmin)
	if err != nil {
		// Signing is local and should not fail; if it does, restore
		// the old token rather than leaving the client with nothing.
		if delErr := s.denylist.Delete(ctx, key); delErr != nil {
			s.log.Error().Err(delErr).Msg("failed to restore consumed refresh token")
		}
		return nil, err
	}

	s.record(refClaims.UserID, fingerprint, domain.EventRefresh, true)
	return pair, nil
}

// LogOut denylists both presented tokens unconditionally. Logging out
// twice is harmless: the second call re-marks already-marked entries.
func (s *SessionService) LogOut(ctx context.Context, accessToken, refreshToken, fingerprint string) error {
	userID := ""

	if accClaims, err := s.codec.DecodeAccessAllowExpired(accessToken); err == nil {
		userID = accClaims.UserID
		if err := s.denylist.SetWithTTL(ctx, accessKeyPrefix+accClaims.TokenID, s.markTTL(accClaims.ExpiresAt)); err != nil {
			return err
		}
	}

	if refClaims, err := s.codec.VerifyRefresh(refreshToken); err == nil {
		if userID == "" {
			userID = refClaims.UserID
		}
		if err := s.denylist.SetWithTTL(ctx, refreshKeyPrefix+refreshToken, s.markTTL(refClaims.ExpiresAt)); err != nil {
			return err
		}
	}

	s.record(userID, fingerprint, domain.EventLogout, true)
	return nil
}

// markTTL computes a denylist marker TTL from the token's remaining
// lifetime, floored so clock skew cannot under-protect.
func (s *SessionService) markTTL(expiresAt time.Time) time.Duration {
	ttl := time.Until(expiresAt)
	if ttl < s.denylistFloor {
		ttl = s.denylistFloor
	}
	return ttl
}

func (s *SessionService) record(userID, fingerprint, kind string, success bool) {
	s.history.Record(domain.HistoryEntry{
		UserID:      userID,
		Fingerprint: fingerprint,
		EventKind:   kind,
		Success:     success,
		OccurredAt:  time.Now().UTC(),
	})
}
