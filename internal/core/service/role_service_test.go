package service

import (
	"context"
	"errors"
	"testing"

	"github.com/moviestream/identity-system/internal/core/domain"
)

func seedLadder(t *testing.T, roles *stubRoleRepo, levels ...int) map[int]string {
	t.Helper()
	ids := make(map[int]string, len(levels))
	for _, lvl := range levels {
		role, err := roles.Create(context.Background(), &domain.Role{Level: lvl, Name: "lvl"})
		if err != nil {
			t.Fatalf("seed role %d: %v", lvl, err)
		}
		ids[lvl] = role.ID
	}
	return ids
}

func TestRoleService_PromoteDemote(t *testing.T) {
	roles := newStubRoleRepo()
	ids := seedLadder(t, roles, 0, 1, 2)
	svc := NewRoleService(roles)

	up, err := svc.Promote(context.Background(), 0)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if up.ID != ids[1] {
		t.Fatalf("expected level 1 role, got level %d", up.Level)
	}

	down, err := svc.Demote(context.Background(), 2)
	if err != nil {
		t.Fatalf("demote failed: %v", err)
	}
	if down.ID != ids[1] {
		t.Fatalf("expected level 1 role, got level %d", down.Level)
	}
}

func TestRoleService_PromoteAtMaximum(t *testing.T) {
	roles := newStubRoleRepo()
	seedLadder(t, roles, 0, 1, 2)
	svc := NewRoleService(roles)

	_, err := svc.Promote(context.Background(), 2)
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound at ladder top, got %v", err)
	}
}

func TestRoleService_GapInLadder(t *testing.T) {
	roles := newStubRoleRepo()
	seedLadder(t, roles, 0, 2)
	svc := NewRoleService(roles)

	_, err := svc.Promote(context.Background(), 0)
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound across a gap, got %v", err)
	}
}

func TestRoleService_DemoteAtBottom(t *testing.T) {
	roles := newStubRoleRepo()
	seedLadder(t, roles, 0, 1)
	svc := NewRoleService(roles)

	_, err := svc.Demote(context.Background(), 0)
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound at ladder bottom, got %v", err)
	}
}
