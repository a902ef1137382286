package models

import (
	"sync"
	"time"

	"github.com/samber/lo"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	Role         GlobalRole
	CreatedAt    time.Time

	mutex         sync.RWMutex
	online        bool
	lastSeen      time.Time
	friends       map[int64]struct{}
	joinedServers []int64
	currentServer int64 // weak reference, 0 when none
}

func NewUser(id int64, username string, passwordHash []byte, role GlobalRole, now time.Time) *User {
	return &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		lastSeen:     now,
		friends:      make(map[int64]struct{}),
	}
}

func (u *User) Online() bool {
	u.mutex.RLock()
	defer u.mutex.RUnlock()
	return u.online
}

// SetOnline flips the online flag; going offline stamps last-seen.
func (u *User) SetOnline(online bool, now time.Time) {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.online = online
	if !online {
		u.lastSeen = now
	}
}

func (u *User) LastSeen() time.Time {
	u.mutex.RLock()
	defer u.mutex.RUnlock()
	return u.lastSeen
}

func (u *User) AddFriend(friendID int64) {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.friends[friendID] = struct{}{}
}

func (u *User) RemoveFriend(friendID int64) {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	delete(u.friends, friendID)
}

func (u *User) IsFriend(friendID int64) bool {
	u.mutex.RLock()
	defer u.mutex.RUnlock()
	_, ok := u.friends[friendID]
	return ok
}

func (u *User) FriendIDs() []int64 {
	u.mutex.RLock()
	defer u.mutex.RUnlock()
	return lo.Keys(u.friends)
}

func (u *User) FriendCount() int {
	u.mutex.RLock()
	defer u.mutex.RUnlock()
	return len(u.friends)
}

func (u *User) JoinServer(serverID int64) {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	if !lo.Contains(u.joinedServers, serverID) {
		u.joinedServers = append(u.joinedServers, serverID)
	}
}

func (u *User) LeaveServer(serverID int64) {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.joinedServers = lo.Without(u.joinedServers, serverID)
	if u.currentServer == serverID {
		u.currentServer = 0
	}
}

// JoinedServers returns the joined server IDs in join order.
// The returned slice must not be mutated by the caller.
func (u *User) JoinedServers() []int64 {
	u.mutex.RLock()
	defer u.mutex.RUnlock()
	return u.joinedServers
}

func (u *User) CurrentServer() int64 {
	u.mutex.RLock()
	defer u.mutex.RUnlock()
	return u.currentServer
}

func (u *User) SetCurrentServer(serverID int64) {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.currentServer = serverID
}
