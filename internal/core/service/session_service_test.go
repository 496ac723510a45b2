package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/moviestream/identity-system/internal/core/domain"
	"github.com/moviestream/identity-system/internal/core/ports"
)

// ── Stub collaborators ────────────────────────────────────────────────────────

type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Login == login {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByLoginOrEmail(_ context.Context, login, email string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if (login != "" && u.Login == login) || (email != "" && u.Email == email) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("u%d", r.seq)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

type stubRoleRepo struct {
	mu    sync.Mutex
	seq   int
	roles map[string]*domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]*domain.Role)}
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[id]; ok {
		clone := *role
		return &clone, nil
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindByLevel(_ context.Context, level int) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Level == level {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindLowest(_ context.Context) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var lowest *domain.Role
	for _, role := range r.roles {
		if lowest == nil || role.Level < lowest.Level {
			lowest = role
		}
	}
	if lowest == nil {
		return nil, domain.ErrRoleNotFound
	}
	clone := *lowest
	return &clone, nil
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	created := *role
	created.ID = fmt.Sprintf("r%d", r.seq)
	stored := created
	r.roles[created.ID] = &stored
	return &created, nil
}

func (r *stubRoleRepo) Update(_ context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[role.ID]; !ok {
		return domain.ErrRoleNotFound
	}
	stored := *role
	r.roles[role.ID] = &stored
	return nil
}

func (r *stubRoleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.roles, id)
	return nil
}

// stubDenylist is an in-memory denylist. SetIfAbsentWithTTL is atomic
// under the mutex, matching the conditional-set contract the real
// store provides.
type stubDenylist struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newStubDenylist() *stubDenylist {
	return &stubDenylist{keys: make(map[string]struct{})}
}

func (d *stubDenylist) Exists(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.keys[key]
	return ok, nil
}

func (d *stubDenylist) SetWithTTL(_ context.Context, key string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[key] = struct{}{}
	return nil
}

func (d *stubDenylist) SetIfAbsentWithTTL(_ context.Context, key string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.keys[key]; ok {
		return false, nil
	}
	d.keys[key] = struct{}{}
	return true, nil
}

func (d *stubDenylist) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.keys, key)
	return nil
}

type stubRecorder struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func (r *stubRecorder) Record(entry domain.HistoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *stubRecorder) List(_ context.Context, userID string) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.HistoryEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubRecorder) last() *domain.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	e := r.entries[len(r.entries)-1]
	return &e
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

type sessionFixture struct {
	svc      *SessionService
	users    *stubUserRepo
	roles    *stubRoleRepo
	denylist *stubDenylist
	recorder *stubRecorder
	codec    *TokenCodec
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	users := newStubUserRepo()
	roles := newStubRoleRepo()
	denylist := newStubDenylist()
	recorder := &stubRecorder{}
	codec := NewTokenCodec("test-secret", time.Minute, time.Hour)
	svc := NewSessionService(users, roles, codec, denylist, recorder, zerolog.Nop(), 0)
	return &sessionFixture{svc: svc, users: users, roles: roles, denylist: denylist, recorder: recorder, codec: codec}
}

func (f *sessionFixture) signUpAndLogIn(t *testing.T, login, email, password, fingerprint string) *domain.TokenPair {
	t.Helper()
	if _, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Login: login, Email: email, Password: password}); err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	pair, err := f.svc.LogIn(context.Background(), login, password, fingerprint)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return pair
}

// ── Sign-up ───────────────────────────────────────────────────────────────────

func TestSessionService_SignUp_CreatesDefaultRole(t *testing.T) {
	f := newSessionFixture(t)

	user, err := f.svc.SignUp(context.Background(), ports.SignUpInput{
		Login: "alice", Email: "a@x.com", Password: "validpass1",
	})
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	if user.PasswordHash == "validpass1" {
		t.Fatalf("expected password to be hashed")
	}

	role, err := f.roles.FindLowest(context.Background())
	if err != nil {
		t.Fatalf("expected default role to exist: %v", err)
	}
	if role.Level != 0 {
		t.Fatalf("expected default role level 0, got %d", role.Level)
	}
	if user.RoleID != role.ID {
		t.Fatalf("expected user bound to default role")
	}
}

func TestSessionService_SignUp_Duplicates(t *testing.T) {
	f := newSessionFixture(t)

	if _, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Login: "alice", Email: "a@x.com", Password: "validpass1"}); err != nil {
		t.Fatalf("first sign up failed: %v", err)
	}

	_, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Login: "alice", Email: "other@x.com", Password: "validpass1"})
	if !errors.Is(err, domain.ErrLoginExists) {
		t.Fatalf("expected ErrLoginExists, got %v", err)
	}

	_, err = f.svc.SignUp(context.Background(), ports.SignUpInput{Login: "bob", Email: "a@x.com", Password: "validpass1"})
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

// ── Login ─────────────────────────────────────────────────────────────────────

func TestSessionService_LogIn_Success(t *testing.T) {
	f := newSessionFixture(t)
	pair := f.signUpAndLogIn(t, "carol", "c@x.com", "s3cretpass", "ua-firefox")

	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}

	last := f.recorder.last()
	if last == nil || last.EventKind != domain.EventLogin || !last.Success {
		t.Fatalf("expected successful login history entry, got %+v", last)
	}
	if last.Fingerprint != "ua-firefox" {
		t.Fatalf("expected fingerprint recorded, got %q", last.Fingerprint)
	}
}

func TestSessionService_LogIn_InvalidPassword(t *testing.T) {
	f := newSessionFixture(t)
	f.signUpAndLogIn(t, "dave", "d@x.com", "goodpass1", "ua")

	_, err := f.svc.LogIn(context.Background(), "dave", "badpass", "ua")
	if !errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if last := f.recorder.last(); last == nil || last.Success {
		t.Fatalf("expected failed history entry, got %+v", last)
	}
}

func TestSessionService_LogIn_UserNotFound(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.svc.LogIn(context.Background(), "ghost", "whatever1", "ua")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// ── Access validation ─────────────────────────────────────────────────────────

func TestSessionService_ValidateAccess_FingerprintBinding(t *testing.T) {
	f := newSessionFixture(t)
	pair := f.signUpAndLogIn(t, "erin", "e@x.com", "validpass1", "ua-chrome")

	claims, err := f.svc.ValidateAccess(context.Background(), pair.Access, "ua-chrome")
	if err != nil {
		t.Fatalf("validate with issuing fingerprint failed: %v", err)
	}
	if claims.Fingerprint != "ua-chrome" {
		t.Fatalf("unexpected claims fingerprint: %q", claims.Fingerprint)
	}

	// A foreign fingerprint is a hijack signal.
	_, err = f.svc.ValidateAccess(context.Background(), pair.Access, "ua-stolen")
	if !errors.Is(err, domain.ErrUnsafeEntry) {
		t.Fatalf("expected ErrUnsafeEntry, got %v", err)
	}

	// The token is burned even for the legitimate fingerprint now.
	_, err = f.svc.ValidateAccess(context.Background(), pair.Access, "ua-chrome")
	if !errors.Is(err, domain.ErrAccessRevoked) {
		t.Fatalf("expected ErrAccessRevoked after anomaly, got %v", err)
	}
}

func TestSessionService_ValidateAccess_GarbageToken(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.svc.ValidateAccess(context.Background(), "not-a-token", "ua")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestSessionService_ValidateAccess_RejectsRefreshToken(t *testing.T) {
	f := newSessionFixture(t)
	pair := f.signUpAndLogIn(t, "frank", "f@x.com", "validpass1", "ua")

	_, err := f.svc.ValidateAccess(context.Background(), pair.Refresh, "ua")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected refresh token rejected as access, got %v", err)
	}
}

// ── Refresh rotation ──────────────────────────────────────────────────────────

func TestSessionService_Refresh_Success(t *testing.T) {
	f := newSessionFixture(t)
	pair := f.signUpAndLogIn(t, "gina", "g@x.com", "validpass1", "ua")

	next, err := f.svc.Refresh(context.Background(), "ua", pair.Access, pair.Refresh)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if next.Access == pair.Access || next.Refresh == pair.Refresh {
		t.Fatalf("expected a brand-new pair")
	}

	// The new pair is internally consistent.
	if _, err := f.svc.Refresh(context.Background(), "ua", next.Access, next.Refresh); err != nil {
		t.Fatalf("second rotation with new pair failed: %v", err)
	}
}

func TestSessionService_Refresh_SingleUse(t *testing.T) {
	f := newSessionFixture(t)
	pair := f.signUpAndLogIn(t, "hank", "h@x.com", "validpass1", "ua")

	if _, err := f.svc.Refresh(context.Background(), "ua", pair.Access, pair.Refresh); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	_, err := f.svc.Refresh(context.Background(), "ua", pair.Access, pair.Refresh)
	if !errors.Is(err, domain.ErrRefreshNotOutstanding) {
		t.Fatalf("expected ErrRefreshNotOutstanding on reuse, got %v", err)
	}
}

func TestSessionService_Refresh_ConcurrentSingleWinner(t *testing.T) {
	f := newSessionFixture(t)
	pair := f.signUpAndLogIn(t, "iris", "i@x.com", "validpass1", "ua")

	const workers = 16
	start := make(chan struct{})
	results := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Refresh(context.Background(), "ua", pair.Access, pair.Refresh)
			results <- err
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, domain.ErrRefreshNotOutstanding):
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one winner, got %d", success)
	}
}

func TestSessionService_Refresh_PairMismatch(t *testing.T) {
	f := newSessionFixture(t)
	pair := f.signUpAndLogIn(t, "judy", "j@x.com", "validpass1", "ua")

	// A second login produces an unrelated access token.
	other, err := f.svc.LogIn(context.Background(), "judy", "validpass1", "ua")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	_, err = f.svc.Refresh(context.Background(), "ua", other.Access, pair.Refresh)
	if !errors.Is(err, domain.ErrPairMismatch) {
		t.Fatalf("expected ErrPairMismatch, got %v", err)
	}
	if last := f.recorder.last(); last == nil || last.Success || last.EventKind != domain.EventRefresh {
		t.Fatalf("expected failed refresh history entry, got %+v", last)
	}
}

func TestSessionService_Refresh_FingerprintMismatch(t *testing.T) {
	f := newSessionFixture(t)
	pair := f.signUpAndLogIn(t, "kate", "k@x.com", "validpass1", "ua-real")

	_, err := f.svc.Refresh(context.Background(), "ua-thief", pair.Access, pair.Refresh)
	if !errors.Is(err, domain.ErrUnsafeEntry) {
		t.Fatalf("expected ErrUnsafeEntry, got %v", err)
	}

	// The refresh token was not consumed by the failed attempt.
	if _, err := f.svc.Refresh(context.Background(), "ua-real", pair.Access, pair.Refresh); err != nil {
		t.Fatalf("legitimate refresh after failed attempt should work: %v", err)
	}
}

func TestSessionService_Refresh_Garbage(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.svc.Refresh(context.Background(), "ua", "junk", "junk")
	if !errors.Is(err, domain.ErrRefreshNotOutstanding) {
		t.Fatalf("expected ErrRefreshNotOutstanding, got %v", err)
	}
}

// ── Logout ────────────────────────────────────────────────────────────────────

func TestSessionService_LogOut_Idempotent(t *testing.T) {
	f := newSessionFixture(t)
	pair := f.signUpAndLogIn(t, "liam", "l@x.com", "validpass1", "ua")

	if err := f.svc.LogOut(context.Background(), pair.Access, pair.Refresh, "ua"); err != nil {
		t.Fatalf("first logout failed: %v", err)
	}
	if err := f.svc.LogOut(context.Background(), pair.Access, pair.Refresh, "ua"); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}

	_, err := f.svc.ValidateAccess(context.Background(), pair.Access, "ua")
	if !errors.Is(err, domain.ErrAccessRevoked) {
		t.Fatalf("expected access token revoked after logout, got %v", err)
	}

	_, err = f.svc.Refresh(context.Background(), "ua", pair.Access, pair.Refresh)
	if !errors.Is(err, domain.ErrRefreshNotOutstanding) {
		t.Fatalf("expected refresh token dead after logout, got %v", err)
	}

	if last := f.recorder.last(); last == nil || last.EventKind != domain.EventLogout {
		t.Fatalf("expected logout history entry, got %+v", last)
	}
}
