package ports

import (
	"context"
	"time"

	"github.com/moviestream/identity-system/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	// FindByLoginOrEmail returns every user matching either attribute,
	// in one query. Used for uniqueness pre-checks at sign-up and
	// profile edit.
	FindByLoginOrEmail(ctx context.Context, login, email string) ([]domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// RoleRepository defines the interface for role persistence. Role
// levels are unique; the ladder is traversed by exact level lookup.
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByLevel(ctx context.Context, level int) (*domain.Role, error)
	// FindLowest returns the role with the smallest level, or
	// domain.ErrRoleNotFound when the ladder is empty.
	FindLowest(ctx context.Context) (*domain.Role, error)
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error
}

// HistoryRepository appends and lists immutable audit entries.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error)
}

// Denylist is a TTL key-value store used purely as a "do not honor
// this token again" marker. Presence of a key invalidates the token
// it names.
type Denylist interface {
	Exists(ctx context.Context, key string) (bool, error)
	SetWithTTL(ctx context.Context, key string, ttl time.Duration) error
	// SetIfAbsentWithTTL atomically marks key and reports whether this
	// call created the marker. It is the linearization point of
	// single-use refresh rotation: of two concurrent callers at most
	// one observes true.
	SetIfAbsentWithTTL(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}
