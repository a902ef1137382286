package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserPresence(t *testing.T) {
	created := time.Now().UTC()
	user := NewUser(1, "alice", nil, RoleMember, created)
	assert.False(t, user.Online())
	assert.Equal(t, created, user.LastSeen())

	user.SetOnline(true, time.Now().UTC())
	assert.True(t, user.Online())

	stamp := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	user.SetOnline(false, stamp)
	assert.False(t, user.Online())
	assert.Equal(t, stamp, user.LastSeen())
}

func TestUserFriends(t *testing.T) {
	user := NewUser(1, "alice", nil, RoleMember, time.Now().UTC())

	user.AddFriend(2)
	user.AddFriend(2)
	assert.Equal(t, 1, user.FriendCount())
	assert.True(t, user.IsFriend(2))

	user.RemoveFriend(2)
	user.RemoveFriend(2)
	assert.False(t, user.IsFriend(2))
	assert.Equal(t, 0, user.FriendCount())
}

func TestUserServers(t *testing.T) {
	user := NewUser(1, "alice", nil, RoleMember, time.Now().UTC())

	user.JoinServer(10)
	user.JoinServer(10)
	user.JoinServer(20)
	assert.Equal(t, []int64{10, 20}, user.JoinedServers())

	user.SetCurrentServer(10)
	user.LeaveServer(10)
	assert.Equal(t, []int64{20}, user.JoinedServers())
	assert.Zero(t, user.CurrentServer())
}

func TestMessageEdit(t *testing.T) {
	created := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	message := NewMessage(100, 1, 7, "alice", "first", created)
	assert.False(t, message.Edited)

	edited := created.Add(time.Minute)
	message.SetContent("second", edited)
	assert.True(t, message.Edited)
	assert.Equal(t, "second", message.Content)
	assert.Equal(t, edited, message.EditedAt)

	// an edit never clears the marker
	message.SetContent("third", edited.Add(time.Minute))
	assert.True(t, message.Edited)

	assert.Contains(t, message.Format(), "alice: third")
	assert.Contains(t, message.Format(), "(edited)")
}

func TestSystemMessage(t *testing.T) {
	message := NewMessage(100, 1, SystemSenderID, SystemSenderName, "[VOICE ACTION] alice joined the voice channel", time.Now().UTC())
	assert.True(t, message.IsSystem())
	assert.NotContains(t, message.Format(), "(edited)")
}

func TestRoleLabels(t *testing.T) {
	tests := []struct {
		label string
		role  GlobalRole
		ok    bool
	}{
		{"Admin", RoleAdmin, true},
		{"moderator", RoleModerator, true},
		{"MEMBER", RoleMember, true},
		{"owner", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		role, ok := RoleFromLabel(tt.label)
		assert.Equal(t, tt.ok, ok, tt.label)
		if ok {
			assert.Equal(t, tt.role, role, tt.label)
			assert.Equal(t, role, func() GlobalRole { r, _ := RoleFromLabel(role.Label()); return r }())
		}
	}
}

func TestServerRoleLabels(t *testing.T) {
	tests := []struct {
		label string
		role  ServerRole
		ok    bool
	}{
		{"admin", ServerRoleAdmin, true},
		{"Moderator", ServerRoleModerator, true},
		{"member", ServerRoleMember, true},
		{"guest", 0, false},
	}

	for _, tt := range tests {
		role, ok := ServerRoleFromLabel(tt.label)
		assert.Equal(t, tt.ok, ok, tt.label)
		if ok {
			assert.Equal(t, tt.role, role, tt.label)
		}
	}
}
