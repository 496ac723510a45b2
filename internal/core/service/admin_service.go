package service

import (
	"context"
	"errors"
	"time"

	"github.com/moviestream/identity-system/internal/core/domain"
	"github.com/moviestream/identity-system/internal/core/ports"
)

// AdminService serves administrative role management. Callers are
// expected to have passed the admin gate already.
type AdminService struct {
	users ports.UserRepository
	roles ports.RoleRepository
}

func NewAdminService(users ports.UserRepository, roles ports.RoleRepository) *AdminService {
	return &AdminService{users: users, roles: roles}
}

// CreateRole adds a new rung. Levels are unique: creating a role at an
// occupied level fails with domain.ErrRoleExists.
func (s *AdminService) CreateRole(ctx context.Context, in ports.RoleInput) (*domain.Role, error) {
	_, err := s.roles.FindByLevel(ctx, in.Level)
	if err == nil {
		return nil, domain.ErrRoleExists
	}
	if !errors.Is(err, domain.ErrRoleNotFound) {
		return nil, err
	}

	return s.roles.Create(ctx, &domain.Role{
		Level:          in.Level,
		Name:           in.Name,
		Description:    in.Description,
		MaxContentYear: in.MaxContentYear,
	})
}

// UpdateRole overwrites the non-zero fields of an existing role.
func (s *AdminService) UpdateRole(ctx context.Context, roleID string, in ports.RoleInput) (*domain.Role, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		role.Name = in.Name
	}
	if in.Description != "" {
		role.Description = in.Description
	}
	if in.MaxContentYear != 0 {
		role.MaxContentYear = in.MaxContentYear
	}

	if err := s.roles.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// AssignRole points a user at an arbitrary role. Both must exist.
func (s *AdminService) AssignRole(ctx context.Context, userID, roleID string) error {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	user.RoleID = role.ID
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

func (s *AdminService) DeleteRole(ctx context.Context, roleID string) error {
	return s.roles.Delete(ctx, roleID)
}
