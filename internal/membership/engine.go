// Package membership mutates server membership, roles, bans and invite
// codes. Every mutation passes the access-control check before touching
// state.
package membership

import (
	"sync"
	"time"

	apperrors "chatapp-core/internal/errors"
	"chatapp-core/internal/hub"
	"chatapp-core/internal/identity"
	"chatapp-core/internal/invite"
	"chatapp-core/internal/models"
	"chatapp-core/internal/permission"
	"chatapp-core/internal/snowflake"
	format "chatapp-core/internal/validator"

	"go.uber.org/zap"
)

var (
	ErrServerNotFound    = apperrors.New(apperrors.CodeServerNotFound, "server not found")
	ErrInvalidCode       = apperrors.New(apperrors.CodeInvalidCode, "invalid invite code")
	ErrOwnerCannotLeave  = apperrors.New(apperrors.CodeOwnerCannotLeave, "the owner cannot leave the server, delete it instead")
	ErrMissingCapability = apperrors.New(apperrors.CodeMissingCapability, "missing capability")
	ErrOwnerOnly         = apperrors.New(apperrors.CodeOwnerOnly, "only the server owner may do this")
	ErrInvalidRole       = apperrors.New(apperrors.CodeInvalidRole, "valid roles: ADMIN, MODERATOR, MEMBER")
)

type Engine struct {
	sugar  *zap.SugaredLogger
	ids    *snowflake.Generator
	users  *identity.Store
	events *hub.Hub

	defaultVoiceCapacity int

	mutex   sync.RWMutex
	servers map[int64]*models.Server
	invites map[string]int64 // invite code -> server ID, bijective
}

func NewEngine(sugar *zap.SugaredLogger, ids *snowflake.Generator, users *identity.Store, events *hub.Hub, defaultVoiceCapacity int) *Engine {
	if defaultVoiceCapacity <= 0 {
		defaultVoiceCapacity = models.DefaultVoiceCapacity
	}
	return &Engine{
		sugar:                sugar,
		ids:                  ids,
		users:                users,
		events:               events,
		defaultVoiceCapacity: defaultVoiceCapacity,
		servers:              make(map[int64]*models.Server),
		invites:              make(map[string]int64),
	}
}

// CreateServer creates a server owned by the acting user, seeds the two
// default channels and installs a unique invite code.
func (e *Engine) CreateServer(owner *models.User, name, description string) (*models.Server, error) {
	if err := format.ServerName(name); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEmptyName, "invalid server name", err)
	}

	serverID, err := e.ids.Generate()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	server := models.NewServer(serverID, name, description, owner.ID, owner.Username, now)

	textID, err := e.ids.Generate()
	if err != nil {
		return nil, err
	}
	voiceID, err := e.ids.Generate()
	if err != nil {
		return nil, err
	}
	if err := server.AddChannel(models.NewTextChannel(textID, "general", serverID, now)); err != nil {
		return nil, err
	}
	if err := server.AddChannel(models.NewVoiceChannel(voiceID, "General Voice", serverID, e.defaultVoiceCapacity, now)); err != nil {
		return nil, err
	}

	e.mutex.Lock()
	code, err := e.installInviteLocked(serverID)
	if err != nil {
		e.mutex.Unlock()
		return nil, err
	}
	server.SetInviteCode(code)
	e.servers[serverID] = server
	e.mutex.Unlock()

	owner.JoinServer(serverID)

	e.sugar.Infof("User [%s] created server [%s] with invite code [%s]", owner.Username, name, code)
	e.events.Publish(hub.TopicServers, hub.Event{Type: hub.ServerCreated, ServerID: serverID, UserID: owner.ID, Detail: name})
	return server, nil
}

// installInviteLocked generates a code that maps to no other server and
// indexes it. Caller must hold e.mutex.
func (e *Engine) installInviteLocked(serverID int64) (string, error) {
	for {
		code, err := invite.Generate()
		if err != nil {
			return "", err
		}
		if _, taken := e.invites[code]; !taken {
			e.invites[code] = serverID
			return code, nil
		}
	}
}

// DeleteServer destroys a server. Owner only. Channels die with the server,
// the invite code is invalidated and every member's joined list is updated.
func (e *Engine) DeleteServer(actor *models.User, serverID int64) error {
	server, err := e.Server(serverID)
	if err != nil {
		return err
	}
	if server.OwnerID != actor.ID {
		return ErrOwnerOnly
	}

	for _, memberID := range server.MemberIDs() {
		if member, err := e.users.UserByID(memberID); err == nil {
			member.LeaveServer(serverID)
		}
	}

	e.mutex.Lock()
	delete(e.invites, server.InviteCode())
	delete(e.servers, serverID)
	e.mutex.Unlock()

	e.sugar.Infof("Server [%s] deleted by owner [%s]", server.Name, actor.Username)
	e.events.Publish(hub.TopicServers, hub.Event{Type: hub.ServerDeleted, ServerID: serverID, UserID: actor.ID, Detail: server.Name})
	return nil
}

// JoinByInvite resolves an invite code case-insensitively and joins the
// server. The ban set is checked before membership is attempted.
func (e *Engine) JoinByInvite(user *models.User, code string) (*models.Server, error) {
	normalized := invite.Normalize(code)
	if !invite.Valid(normalized) {
		return nil, ErrInvalidCode
	}

	e.mutex.RLock()
	serverID, ok := e.invites[normalized]
	e.mutex.RUnlock()
	if !ok {
		return nil, ErrInvalidCode
	}

	server, err := e.Server(serverID)
	if err != nil {
		return nil, err
	}

	if server.IsBanned(user.ID) {
		return nil, models.ErrBanned
	}
	if err := server.AddMember(user.ID, user.Username); err != nil {
		return nil, err
	}
	user.JoinServer(serverID)

	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.MemberJoined, ServerID: serverID, UserID: user.ID, Detail: user.Username})
	return server, nil
}

func (e *Engine) Leave(user *models.User, serverID int64) error {
	server, err := e.Server(serverID)
	if err != nil {
		return err
	}
	if server.OwnerID == user.ID {
		return ErrOwnerCannotLeave
	}
	if err := server.RemoveMember(user.ID); err != nil {
		return err
	}
	user.LeaveServer(serverID)

	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.MemberLeft, ServerID: serverID, UserID: user.ID, Detail: user.Username})
	return nil
}

// Kick removes a member without banning; the target may rejoin via invite.
func (e *Engine) Kick(actor *models.User, serverID int64, targetUsername string) error {
	server, err := e.Server(serverID)
	if err != nil {
		return err
	}
	if !permission.Check(actor, server, permission.KickUsers) {
		return ErrMissingCapability
	}

	target, err := e.users.UserByName(targetUsername)
	if err != nil {
		return err
	}
	if target.ID == server.OwnerID {
		return models.ErrCannotTargetOwner
	}
	if err := server.RemoveMember(target.ID); err != nil {
		return err
	}
	target.LeaveServer(serverID)

	e.sugar.Infof("User [%s] kicked [%s] from server [%s]", actor.Username, target.Username, server.Name)
	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.MemberKicked, ServerID: serverID, UserID: target.ID, Detail: target.Username})
	return nil
}

// Ban adds the target to the ban set, removing membership if present.
func (e *Engine) Ban(actor *models.User, serverID int64, targetUsername string) error {
	server, err := e.Server(serverID)
	if err != nil {
		return err
	}
	if !permission.Check(actor, server, permission.BanUsers) {
		return ErrMissingCapability
	}

	target, err := e.users.UserByName(targetUsername)
	if err != nil {
		return err
	}
	if err := server.Ban(target.ID); err != nil {
		return err
	}
	target.LeaveServer(serverID)

	e.sugar.Infof("User [%s] banned [%s] from server [%s]", actor.Username, target.Username, server.Name)
	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.MemberBanned, ServerID: serverID, UserID: target.ID, Detail: target.Username})
	return nil
}

// Unban lifts a ban. Unbanning a user who is not banned is a no-op success.
func (e *Engine) Unban(actor *models.User, serverID int64, targetUsername string) error {
	server, err := e.Server(serverID)
	if err != nil {
		return err
	}
	if !permission.Check(actor, server, permission.BanUsers) {
		return ErrMissingCapability
	}

	target, err := e.users.UserByName(targetUsername)
	if err != nil {
		return err
	}
	server.Unban(target.ID)
	return nil
}

// SetRole overrides a member's per-server role. Only the server owner may
// change roles, and the owner's own role can never be changed.
func (e *Engine) SetRole(actor *models.User, serverID int64, targetUsername, roleLabel string) error {
	server, err := e.Server(serverID)
	if err != nil {
		return err
	}
	if server.OwnerID != actor.ID {
		return ErrOwnerOnly
	}

	role, ok := models.ServerRoleFromLabel(roleLabel)
	if !ok {
		return ErrInvalidRole
	}

	target, err := e.users.UserByName(targetUsername)
	if err != nil {
		return err
	}
	if err := server.SetMemberRole(target.ID, role); err != nil {
		return err
	}

	e.sugar.Infof("User [%s] set role of [%s] to [%s] in server [%s]", actor.Username, target.Username, role.Label(), server.Name)
	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.RoleChanged, ServerID: serverID, UserID: target.ID, Detail: role.Label()})
	return nil
}

// RegenerateInvite replaces the server's invite code. The old mapping is
// invalidated atomically with installing the new one, so a code always
// resolves to exactly one server or none.
func (e *Engine) RegenerateInvite(actor *models.User, serverID int64) (string, error) {
	server, err := e.Server(serverID)
	if err != nil {
		return "", err
	}
	if !permission.Check(actor, server, permission.ManageUsers) {
		return "", ErrMissingCapability
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	code, err := e.installInviteLocked(serverID)
	if err != nil {
		return "", err
	}
	delete(e.invites, server.InviteCode())
	server.SetInviteCode(code)

	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.InviteRegenerated, ServerID: serverID, UserID: actor.ID})
	return code, nil
}

func (e *Engine) Server(serverID int64) (*models.Server, error) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	server, ok := e.servers[serverID]
	if !ok {
		return nil, ErrServerNotFound
	}
	return server, nil
}

// ServersOf resolves the user's joined servers in join order.
func (e *Engine) ServersOf(user *models.User) []*models.Server {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	var servers []*models.Server
	for _, serverID := range user.JoinedServers() {
		if server, ok := e.servers[serverID]; ok {
			servers = append(servers, server)
		}
	}
	return servers
}
