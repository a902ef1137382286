package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	token, err := manager.Create(42)
	require.NoError(t, err)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewManager("secret-one", time.Hour).Create(42)
	require.NoError(t, err)

	_, err = NewManager("secret-two", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyTampered(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)
	token, err := manager.Create(42)
	require.NoError(t, err)

	_, err = manager.Verify(token + "x")
	assert.Error(t, err)

	_, err = manager.Verify("not.a.token")
	assert.Error(t, err)
}

func TestVerifyExpired(t *testing.T) {
	manager := NewManager("test-secret", time.Millisecond)
	token, err := manager.Create(42)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = manager.Verify(token)
	assert.Error(t, err)
}

func TestDefaultLifetime(t *testing.T) {
	manager := NewManager("test-secret", 0)
	token, err := manager.Create(42)
	require.NoError(t, err)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}
