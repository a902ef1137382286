package identity

import (
	"testing"
	"time"

	apperrors "chatapp-core/internal/errors"
	"chatapp-core/internal/jwt"
	"chatapp-core/internal/models"
	"chatapp-core/internal/snowflake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

// plainAuth skips bcrypt so tests stay fast.
type plainAuth struct{}

func (plainAuth) Hash(password string) ([]byte, error) { return []byte(password), nil }

func (plainAuth) Verify(password string, hash []byte) error {
	if password != string(hash) {
		return apperrors.New(apperrors.CodeBadCredential, "invalid password")
	}
	return nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ids, err := snowflake.NewGenerator(0)
	require.NoError(t, err)
	return NewStore(zap.NewNop().Sugar(), plainAuth{}, jwt.NewManager("test-secret", time.Hour), ids)
}

func register(t *testing.T, s *Store, username, password string, role models.GlobalRole) *models.User {
	t.Helper()
	user, err := s.Register(RegisterInput{Username: username, Password: password, Role: role})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	store := newTestStore(t)

	user := register(t, store, "alice", "secret", models.RoleMember)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleMember, user.Role)
	assert.NotZero(t, user.ID)

	found, err := store.UserByName("ALICE")
	require.NoError(t, err)
	assert.Same(t, user, found)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := newTestStore(t)
	register(t, store, "alice", "secret", models.RoleMember)

	_, err := store.Register(RegisterInput{Username: "Alice", Password: "secret"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Register(RegisterInput{Username: "", Password: "secret"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = store.Register(RegisterInput{Username: "has space", Password: "secret"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = store.Register(RegisterInput{Username: "alice", Password: "ab"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeWeakPassword))
}

func TestLoginLogout(t *testing.T) {
	store := newTestStore(t)
	alice := register(t, store, "alice", "secret", models.RoleMember)

	_, err := store.Current()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	session, err := store.Login("alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, session.UserID)
	assert.True(t, alice.Online())

	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, alice, current)

	require.NoError(t, store.Logout())
	assert.False(t, alice.Online())
	assert.False(t, alice.LastSeen().IsZero())
	assert.ErrorIs(t, store.Logout(), ErrNotAuthenticated)
}

func TestLoginSingleSession(t *testing.T) {
	store := newTestStore(t)
	register(t, store, "alice", "secret", models.RoleMember)
	register(t, store, "bob", "secret", models.RoleMember)

	_, err := store.Login("alice", "secret")
	require.NoError(t, err)

	_, err = store.Login("bob", "secret")
	assert.ErrorIs(t, err, ErrAlreadyLoggedIn)

	require.NoError(t, store.Logout())
	_, err = store.Login("bob", "secret")
	assert.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	store := newTestStore(t)
	register(t, store, "alice", "secret", models.RoleMember)

	_, err := store.Login("nobody", "secret")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = store.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrBadCredential)
}

func TestExpiredSessionIsDropped(t *testing.T) {
	ids, err := snowflake.NewGenerator(0)
	require.NoError(t, err)
	store := NewStore(zap.NewNop().Sugar(), plainAuth{}, jwt.NewManager("test-secret", time.Millisecond), ids)
	register(t, store, "alice", "secret", models.RoleMember)

	_, err = store.Login("alice", "secret")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = store.Current()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	// the slot is free again
	_, err = store.Login("alice", "secret")
	assert.NoError(t, err)
}

func TestFriendship(t *testing.T) {
	store := newTestStore(t)
	alice := register(t, store, "alice", "secret", models.RoleMember)
	bob := register(t, store, "bob", "secret", models.RoleMember)
	register(t, store, "carol", "secret", models.RoleMember)

	require.NoError(t, store.AddFriend(alice, "bob"))
	assert.True(t, alice.IsFriend(bob.ID))
	assert.True(t, bob.IsFriend(alice.ID))

	require.NoError(t, store.AddFriend(alice, "carol"))
	friends := store.FriendsOf(alice)
	require.Len(t, friends, 2)
	assert.Equal(t, "bob", friends[0].Username)
	assert.Equal(t, "carol", friends[1].Username)

	require.NoError(t, store.RemoveFriend(alice, "bob"))
	assert.False(t, alice.IsFriend(bob.ID))
	assert.False(t, bob.IsFriend(alice.ID))

	// removing again is a no-op success
	require.NoError(t, store.RemoveFriend(alice, "bob"))

	assert.ErrorIs(t, store.AddFriend(alice, "alice"), ErrSelfFriend)
	assert.ErrorIs(t, store.AddFriend(alice, "nobody"), ErrUserNotFound)
}

func TestUsersSorted(t *testing.T) {
	store := newTestStore(t)
	register(t, store, "carol", "secret", models.RoleMember)
	register(t, store, "Alice", "secret", models.RoleMember)
	register(t, store, "bob", "secret", models.RoleMember)

	users := store.Users()
	require.Len(t, users, 3)
	assert.Equal(t, "Alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "carol", users[2].Username)
}
