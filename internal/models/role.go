package models

import "strings"

// GlobalRole is the account-level role variant, fixed at registration.
type GlobalRole int

const (
	RoleMember GlobalRole = iota
	RoleModerator
	RoleAdmin
)

func (r GlobalRole) Label() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleModerator:
		return "MODERATOR"
	default:
		return "MEMBER"
	}
}

// RoleFromLabel parses a role label case-insensitively.
func RoleFromLabel(label string) (GlobalRole, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "ADMIN":
		return RoleAdmin, true
	case "MODERATOR":
		return RoleModerator, true
	case "MEMBER":
		return RoleMember, true
	default:
		return RoleMember, false
	}
}

// ServerRole is the per-server role override. It is independent of the
// member's GlobalRole: a global Member can hold per-server Admin standing.
type ServerRole int

const (
	ServerRoleMember ServerRole = iota
	ServerRoleModerator
	ServerRoleAdmin
)

func (r ServerRole) Label() string {
	switch r {
	case ServerRoleAdmin:
		return "ADMIN"
	case ServerRoleModerator:
		return "MODERATOR"
	default:
		return "MEMBER"
	}
}

// ServerRoleFromLabel parses a per-server role label case-insensitively.
func ServerRoleFromLabel(label string) (ServerRole, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "ADMIN":
		return ServerRoleAdmin, true
	case "MODERATOR":
		return ServerRoleModerator, true
	case "MEMBER":
		return ServerRoleMember, true
	default:
		return ServerRoleMember, false
	}
}
