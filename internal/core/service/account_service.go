package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/moviestream/identity-system/internal/core/domain"
	"github.com/moviestream/identity-system/internal/core/ports"
)

// AccountService composes the user repository, the role ladder and the
// history recorder to serve account-management operations.
type AccountService struct {
	users   ports.UserRepository
	ladder  *RoleService
	history ports.HistoryRecorder
}

func NewAccountService(users ports.UserRepository, ladder *RoleService, history ports.HistoryRecorder) *AccountService {
	return &AccountService{users: users, ladder: ladder, history: history}
}

// Profile returns the user joined with a human-readable role label.
func (s *AccountService) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.ladder.Resolve(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	return profileView(user, role), nil
}

// UpdateProfile applies non-empty edits after a duplicate pre-check
// across the repository, scoped to exclude the acting user. The same
// OR-query pattern as sign-up.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Login != "" || in.Email != "" {
		matches, err := s.users.FindByLoginOrEmail(ctx, in.Login, in.Email)
		if err != nil {
			return nil, err
		}
		for i := range matches {
			if matches[i].ID == userID {
				continue
			}
			if in.Login != "" && matches[i].Login == in.Login {
				return nil, domain.ErrLoginExists
			}
			return nil, domain.ErrEmailExists
		}
	}

	if in.Login != "" {
		user.Login = in.Login
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	role, err := s.ladder.Resolve(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	return profileView(user, role), nil
}

// ChangePassword re-verifies the old password before re-hashing.
func (s *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

// ChangeLevel moves the user one rung up or down the role ladder and
// persists the new role pointer.
func (s *AccountService) ChangeLevel(ctx context.Context, userID, direction string) (*domain.Role, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	current, err := s.ladder.Resolve(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	var next *domain.Role
	switch direction {
	case ports.LevelDown:
		next, err = s.ladder.Demote(ctx, current.Level)
	default:
		next, err = s.ladder.Promote(ctx, current.Level)
	}
	if err != nil {
		return nil, err
	}

	user.RoleID = next.ID
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return next, nil
}

// History lists the authenticated user's login history.
func (s *AccountService) History(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	return s.history.List(ctx, userID)
}

func profileView(user *domain.User, role *domain.Role) *domain.Profile {
	return &domain.Profile{
		Login:     user.Login,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RoleName:  role.Name,
		RoleLevel: role.Level,
	}
}
