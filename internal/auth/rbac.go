package auth

import "strings"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

// NormalizeRole maps unknown or empty roles to member.
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleModerator):
		return RoleModerator
	default:
		return RoleMember
	}
}

// ValidRole reports whether role names one of the known roles exactly.
func ValidRole(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}

func HasRole(role string, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	current := NormalizeRole(role)
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}

func IsAdmin(role string) bool {
	return NormalizeRole(role) == RoleAdmin
}

// Principal is the authenticated caller passed explicitly into service calls.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManageEvents reports whether the caller may create or edit events.
func (p Principal) CanManageEvents() bool {
	return p.Role == RoleAdmin || p.Role == RoleModerator
}
