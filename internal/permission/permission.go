// Package permission holds the access-control rule set shared by the
// engines: capability tokens, the per-role capability table and the
// two-tier authorization check.
package permission

import "chatapp-core/internal/models"

// Capability is a named permission token.
type Capability string

const (
	CreateChannels Capability = "create_channels"
	DeleteChannels Capability = "delete_channels"
	ManageChannels Capability = "manage_channels"
	ManageUsers    Capability = "manage_users"
	DeleteMessages Capability = "delete_messages"
	BanUsers       Capability = "ban_users"
	MuteUsers      Capability = "mute_users"
	KickUsers      Capability = "kick_users"
)

var moderatorCapabilities = map[Capability]struct{}{
	MuteUsers:      {},
	KickUsers:      {},
	DeleteMessages: {},
	ManageChannels: {},
}

// RoleGrants reports whether a global role variant grants a capability.
// Admins hold every capability, members hold none.
func RoleGrants(role models.GlobalRole, capability Capability) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleModerator:
		_, ok := moderatorCapabilities[capability]
		return ok
	default:
		return false
	}
}

// ServerRoleGrants reports whether a per-server role grants a capability.
// Per-server Admin standing grants everything; per-server Moderator grants
// only mute_users, matching the moderation checks of the channel operations.
func ServerRoleGrants(role models.ServerRole, capability Capability) bool {
	switch role {
	case models.ServerRoleAdmin:
		return true
	case models.ServerRoleModerator:
		return capability == MuteUsers
	default:
		return false
	}
}

// Check evaluates the two-tier authorization rule: the server owner passes
// unconditionally, otherwise the actor's global role capability set and
// per-server role are consulted with logical OR.
func Check(actor *models.User, server *models.Server, capability Capability) bool {
	if server != nil && server.OwnerID == actor.ID {
		return true
	}
	if RoleGrants(actor.Role, capability) {
		return true
	}
	if server != nil {
		if role, ok := server.MemberRole(actor.ID); ok {
			return ServerRoleGrants(role, capability)
		}
	}
	return false
}
