package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
)

func TestChangeMemberRole(t *testing.T) {
	eng, _, _ := newTestEngine()
	ownerID := uuid.New()
	memberID := uuid.New()
	group := mustCreateGroup(t, eng, ownerID, "g")
	mustJoin(t, eng, ownerID, group.ID, memberID)

	if err := eng.ChangeMemberRole(context.Background(), ownerID, group.ID, memberID, models.RoleModerator); err != nil {
		t.Fatalf("ChangeMemberRole: %v", err)
	}

	members, err := eng.ListMembers(context.Background(), group.ID, ownerID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	for _, m := range members {
		if m.UserID == memberID && m.Role != models.RoleModerator {
			t.Errorf("role = %s, want mod", m.Role)
		}
	}
}

func TestChangeMemberRoleOwnerOnly(t *testing.T) {
	eng, _, _ := newTestEngine()
	ownerID := uuid.New()
	memberID := uuid.New()
	group := mustCreateGroup(t, eng, ownerID, "g")
	mustJoin(t, eng, ownerID, group.ID, memberID)

	err := eng.ChangeMemberRole(context.Background(), memberID, group.ID, memberID, models.RoleModerator)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-owner ChangeMemberRole = %v, want ErrUnauthorized", err)
	}
}

func TestOwnerRoleCannotBeDemoted(t *testing.T) {
	eng, _, _ := newTestEngine()
	ownerID := uuid.New()
	group := mustCreateGroup(t, eng, ownerID, "g")

	err := eng.ChangeMemberRole(context.Background(), ownerID, group.ID, ownerID, models.RoleMember)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("demote owner = %v, want ErrInvalidState", err)
	}

	// Re-asserting the owner role is a harmless overwrite.
	if err := eng.ChangeMemberRole(context.Background(), ownerID, group.ID, ownerID, models.RoleOwner); err != nil {
		t.Errorf("reassert owner role: %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	eng, store, _ := newTestEngine()
	ownerID := uuid.New()
	memberID := uuid.New()
	group := mustCreateGroup(t, eng, ownerID, "g")
	mustJoin(t, eng, ownerID, group.ID, memberID)

	if err := eng.RemoveMember(context.Background(), ownerID, group.ID, memberID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if len(store.memberships) != 1 {
		t.Errorf("memberships = %d, want just the owner", len(store.memberships))
	}
}

func TestRemoveMemberGuards(t *testing.T) {
	eng, _, _ := newTestEngine()
	ownerID := uuid.New()
	memberID := uuid.New()
	group := mustCreateGroup(t, eng, ownerID, "g")
	mustJoin(t, eng, ownerID, group.ID, memberID)

	// Non-owner cannot remove anyone.
	err := eng.RemoveMember(context.Background(), memberID, group.ID, memberID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-owner remove = %v, want ErrUnauthorized", err)
	}

	// The owner cannot be removed, even by themselves.
	err = eng.RemoveMember(context.Background(), ownerID, group.ID, ownerID)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("remove owner = %v, want ErrInvalidState", err)
	}

	// Removing someone who isn't a member reports ErrNotFound.
	err = eng.RemoveMember(context.Background(), ownerID, group.ID, uuid.New())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("remove stranger = %v, want ErrNotFound", err)
	}
}

func TestLeaveGroup(t *testing.T) {
	eng, store, _ := newTestEngine()
	ownerID := uuid.New()
	memberID := uuid.New()
	group := mustCreateGroup(t, eng, ownerID, "g")
	mustJoin(t, eng, ownerID, group.ID, memberID)

	if err := eng.LeaveGroup(context.Background(), group.ID, memberID); err != nil {
		t.Fatalf("LeaveGroup: %v", err)
	}
	if len(store.memberships) != 1 {
		t.Errorf("memberships = %d, want just the owner", len(store.memberships))
	}
}

func TestOwnerCannotLeave(t *testing.T) {
	eng, _, _ := newTestEngine()
	ownerID := uuid.New()
	group := mustCreateGroup(t, eng, ownerID, "g")

	err := eng.LeaveGroup(context.Background(), group.ID, ownerID)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("owner leave = %v, want ErrInvalidState", err)
	}
}
