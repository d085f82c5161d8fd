package models

import "fmt"

// Role is a member's role within a group. Persisted as a string but closed
// to this set at the engine boundary, so a typo can't mint a new role.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleModerator Role = "mod"
	RoleMember    Role = "member"
)

// ParseRole narrows a raw string to a known Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleModerator, RoleMember:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Weight orders roles for member listings: owner first, then mods, then
// members. Unknown roles (legacy rows) sort last.
func (r Role) Weight() int {
	switch r {
	case RoleOwner:
		return 0
	case RoleModerator:
		return 1
	case RoleMember:
		return 2
	}
	return 3
}

// RequestStatus is the state of a join request. Pending is the only
// non-terminal state; approved and denied rows never change again.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusDenied   RequestStatus = "denied"
)

// Terminal reports whether the status permits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusDenied
}

// ClubColorKeys is the palette a club book's accent color is chosen from.
// The UI maps each key to a hex value; the backend only validates membership
// in the set.
var ClubColorKeys = []string{
	"rubi", "tangerina", "damasco", "mel", "limonada", "pistache",
	"abacate", "hortela", "verde", "menta", "aqua", "turquesa",
	"oceano", "ceudeverao", "azul", "cobalto", "anil", "iris",
	"uva", "ameixa", "magenta", "framboesa", "rosa", "pitaya",
}

// ValidClubColor reports whether key belongs to the palette.
func ValidClubColor(key string) bool {
	for _, k := range ClubColorKeys {
		if k == key {
			return true
		}
	}
	return false
}
