package models

import (
	"strings"
	"sync"
	"time"

	apperrors "chatapp-core/internal/errors"

	"github.com/samber/lo"
)

var (
	ErrAlreadyMember     = apperrors.New(apperrors.CodeAlreadyMember, "user is already a member of this server")
	ErrBanned            = apperrors.New(apperrors.CodeBanned, "user is banned from this server")
	ErrNotMember         = apperrors.New(apperrors.CodeNotMember, "user is not a member of this server")
	ErrCannotTargetOwner = apperrors.New(apperrors.CodeCannotTargetOwner, "the server owner cannot be targeted")
	ErrChannelNameTaken  = apperrors.New(apperrors.CodeChannelNameTaken, "a channel with that name already exists")
)

type Server struct {
	ID            int64
	Name          string
	OwnerID       int64
	OwnerUsername string
	CreatedAt     time.Time

	mutex           sync.RWMutex
	description     string
	inviteCode      string
	channels        []*Channel
	members         map[int64]ServerRole
	memberUsernames map[int64]string
	banned          map[int64]struct{}
}

// NewServer creates a server with the owner seeded as a per-server Admin
// member. Default channels and the invite code are installed by the
// membership engine, which owns ID generation and the invite index.
func NewServer(id int64, name string, description string, ownerID int64, ownerUsername string, now time.Time) *Server {
	s := &Server{
		ID:            id,
		Name:          name,
		OwnerID:       ownerID,
		OwnerUsername: ownerUsername,
		CreatedAt:     now,
		description:   description,
		members:       make(map[int64]ServerRole),
		memberUsernames: map[int64]string{
			ownerID: ownerUsername,
		},
		banned: make(map[int64]struct{}),
	}
	s.members[ownerID] = ServerRoleAdmin
	return s
}

func (s *Server) Description() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.description
}

func (s *Server) SetDescription(description string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.description = description
}

func (s *Server) InviteCode() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.inviteCode
}

func (s *Server) SetInviteCode(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.inviteCode = code
}

// AddMember inserts a user as a plain member. The ban set is checked first:
// a banned user can never re-enter membership, keeping the two sets disjoint.
func (s *Server) AddMember(userID int64, username string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.banned[userID]; ok {
		return ErrBanned
	}
	if _, ok := s.members[userID]; ok {
		return ErrAlreadyMember
	}

	s.members[userID] = ServerRoleMember
	s.memberUsernames[userID] = username
	return nil
}

// RemoveMember drops a user from membership. The owner can never be removed.
func (s *Server) RemoveMember(userID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if userID == s.OwnerID {
		return ErrCannotTargetOwner
	}
	if _, ok := s.members[userID]; !ok {
		return ErrNotMember
	}

	delete(s.members, userID)
	delete(s.memberUsernames, userID)
	return nil
}

func (s *Server) IsMember(userID int64) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.members[userID]
	return ok
}

func (s *Server) MemberRole(userID int64) (ServerRole, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	role, ok := s.members[userID]
	return role, ok
}

// SetMemberRole overrides a member's per-server role. The owner's role is
// fixed at Admin and can never be changed.
func (s *Server) SetMemberRole(userID int64, role ServerRole) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if userID == s.OwnerID {
		return ErrCannotTargetOwner
	}
	if _, ok := s.members[userID]; !ok {
		return ErrNotMember
	}

	s.members[userID] = role
	return nil
}

// Ban adds a user to the ban set, removing membership if present so the
// membership map and ban set stay disjoint. The owner can never be banned.
func (s *Server) Ban(userID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if userID == s.OwnerID {
		return ErrCannotTargetOwner
	}

	s.banned[userID] = struct{}{}
	delete(s.members, userID)
	delete(s.memberUsernames, userID)
	return nil
}

// Unban is idempotent. It does not restore membership.
func (s *Server) Unban(userID int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.banned, userID)
}

func (s *Server) IsBanned(userID int64) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.banned[userID]
	return ok
}

func (s *Server) MemberIDs() []int64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return lo.Keys(s.members)
}

func (s *Server) MemberUsername(userID int64) string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.memberUsernames[userID]
}

func (s *Server) MemberCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.members)
}

func (s *Server) BannedIDs() []int64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return lo.Keys(s.banned)
}

// AddChannel appends a channel, enforcing case-insensitive name uniqueness
// within the server.
func (s *Server) AddChannel(channel *Channel) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.channels {
		if strings.EqualFold(existing.Name, channel.Name) {
			return ErrChannelNameTaken
		}
	}

	s.channels = append(s.channels, channel)
	return nil
}

func (s *Server) RemoveChannel(channelID int64) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, channel := range s.channels {
		if channel.ID == channelID {
			s.channels = append(s.channels[:i], s.channels[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Server) FindChannel(channelID int64) *Channel {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, channel := range s.channels {
		if channel.ID == channelID {
			return channel
		}
	}
	return nil
}

func (s *Server) FindChannelByName(name string) *Channel {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, channel := range s.channels {
		if strings.EqualFold(channel.Name, name) {
			return channel
		}
	}
	return nil
}

// Channels returns the channels in creation order.
// The returned slice must not be mutated by the caller.
func (s *Server) Channels() []*Channel {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.channels
}

func (s *Server) ChannelCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.channels)
}
