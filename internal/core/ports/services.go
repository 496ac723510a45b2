package ports

import (
	"context"

	"github.com/moviestream/identity-system/internal/core/domain"
)

// SignUpInput carries the fields required to create an account.
type SignUpInput struct {
	Login     string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SessionService drives the session-credential lifecycle: sign-up,
// login, access validation, single-use refresh rotation and logout.
type SessionService interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	LogIn(ctx context.Context, login, password, fingerprint string) (*domain.TokenPair, error)
	ValidateAccess(ctx context.Context, token, fingerprint string) (*domain.TokenClaims, error)
	Refresh(ctx context.Context, fingerprint, accessToken, refreshToken string) (*domain.TokenPair, error)
	LogOut(ctx context.Context, accessToken, refreshToken, fingerprint string) error
}

// UpdateProfileInput carries optional profile edits; empty fields are
// left untouched.
type UpdateProfileInput struct {
	Login     string
	Email     string
	FirstName string
	LastName  string
}

// Level change directions accepted by AccountService.ChangeLevel.
const (
	LevelUp   = "up"
	LevelDown = "down"
)

// AccountService serves account-management operations for an already
// authenticated user.
type AccountService interface {
	Profile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.Profile, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ChangeLevel(ctx context.Context, userID, direction string) (*domain.Role, error)
	History(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
}

// RoleInput carries the fields of a role create/update request.
type RoleInput struct {
	Level          int
	Name           string
	Description    string
	MaxContentYear int
}

// AdminService serves administrative role management.
type AdminService interface {
	CreateRole(ctx context.Context, in RoleInput) (*domain.Role, error)
	UpdateRole(ctx context.Context, roleID string, in RoleInput) (*domain.Role, error)
	AssignRole(ctx context.Context, userID, roleID string) error
	DeleteRole(ctx context.Context, roleID string) error
}

// HistoryRecorder appends audit entries for login/refresh/logout
// events. Record is fire-and-forget: failures to write history are
// logged and swallowed, never surfaced to the caller.
type HistoryRecorder interface {
	Record(entry domain.HistoryEntry)
	List(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
}
