package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple", "alice", false},
		{"with separators", "alice.b_c-d", false},
		{"digits first", "7alice", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 33), true},
		{"leading dot", ".alice", true},
		{"spaces", "ali ce", true},
		{"unicode", "алиса", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Username(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	assert.Error(t, Password("ab"))
	assert.NoError(t, Password("abc"))
	assert.NoError(t, Password(strings.Repeat("a", 72)))
	assert.Error(t, Password(strings.Repeat("a", 73)))
}

func TestChannelName(t *testing.T) {
	assert.Error(t, ChannelName(""))
	assert.NoError(t, ChannelName("general"))
	assert.Error(t, ChannelName(strings.Repeat("a", 65)))
}

func TestServerName(t *testing.T) {
	assert.Error(t, ServerName(""))
	assert.NoError(t, ServerName("Demo Server"))
	assert.Error(t, ServerName(strings.Repeat("a", 65)))
}
