package service

import (
	"context"

	"github.com/moviestream/identity-system/internal/core/domain"
	"github.com/moviestream/identity-system/internal/core/ports"
)

// RoleService is the role ladder: pure lookup and adjacent-level
// traversal. Reassigning a user's role pointer is the caller's job.
type RoleService struct {
	roles ports.RoleRepository
}

func NewRoleService(roles ports.RoleRepository) *RoleService {
	return &RoleService{roles: roles}
}

func (s *RoleService) Resolve(ctx context.Context, roleID string) (*domain.Role, error) {
	return s.roles.FindByID(ctx, roleID)
}

// Promote returns the role exactly one level above currentLevel, or
// domain.ErrRoleNotFound when the ladder has a gap there or the caller
// already sits at the top.
func (s *RoleService) Promote(ctx context.Context, currentLevel int) (*domain.Role, error) {
	return s.roles.FindByLevel(ctx, currentLevel+1)
}

// Demote returns the role exactly one level below currentLevel.
func (s *RoleService) Demote(ctx context.Context, currentLevel int) (*domain.Role, error) {
	return s.roles.FindByLevel(ctx, currentLevel-1)
}
