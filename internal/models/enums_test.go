package models

import "testing"

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"owner", "mod", "member"} {
		role, err := ParseRole(raw)
		if err != nil {
			t.Errorf("ParseRole(%q): %v", raw, err)
		}
		if string(role) != raw {
			t.Errorf("ParseRole(%q) = %q", raw, role)
		}
	}

	for _, raw := range []string{"", "admin", "Owner", "moderator"} {
		if _, err := ParseRole(raw); err == nil {
			t.Errorf("ParseRole(%q) accepted an unknown role", raw)
		}
	}
}

func TestRoleWeightOrdering(t *testing.T) {
	if !(RoleOwner.Weight() < RoleModerator.Weight() && RoleModerator.Weight() < RoleMember.Weight()) {
		t.Errorf("weights out of order: owner=%d mod=%d member=%d",
			RoleOwner.Weight(), RoleModerator.Weight(), RoleMember.Weight())
	}
	if Role("legacy").Weight() <= RoleMember.Weight() {
		t.Error("unknown role must sort after member")
	}
}

func TestRequestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	if !StatusApproved.Terminal() || !StatusDenied.Terminal() {
		t.Error("approved and denied must be terminal")
	}
}

func TestValidClubColor(t *testing.T) {
	for _, key := range ClubColorKeys {
		if !ValidClubColor(key) {
			t.Errorf("palette key %q rejected", key)
		}
	}
	for _, key := range []string{"", "neon", "Verde", "rubi "} {
		if ValidClubColor(key) {
			t.Errorf("non-palette key %q accepted", key)
		}
	}
}
