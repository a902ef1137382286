package models

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textChannel(t *testing.T) *Channel {
	t.Helper()
	return NewTextChannel(1, "general", 10, time.Now().UTC())
}

func post(t *testing.T, c *Channel, id int64, sender int64, content string) *Message {
	t.Helper()
	message := NewMessage(id, c.ID, sender, fmt.Sprintf("user%d", sender), content, time.Now().UTC())
	require.NoError(t, c.Post(message))
	return message
}

func TestPostAndHistory(t *testing.T) {
	channel := textChannel(t)

	post(t, channel, 100, 7, "hello")
	post(t, channel, 101, 7, "world")

	assert.Equal(t, 2, channel.MessageCount())
	history := channel.History()
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "world", history[1].Content)
}

func TestPostTooLong(t *testing.T) {
	channel := textChannel(t)

	message := NewMessage(100, channel.ID, 7, "user7", strings.Repeat("a", channel.MaxMessageLength+1), time.Now().UTC())
	err := channel.Post(message)
	assert.ErrorIs(t, err, ErrMessageTooLong)
	assert.Equal(t, 0, channel.MessageCount())

	message = NewMessage(101, channel.ID, 7, "user7", strings.Repeat("a", channel.MaxMessageLength), time.Now().UTC())
	assert.NoError(t, channel.Post(message))
}

func TestPostMuted(t *testing.T) {
	channel := textChannel(t)

	channel.Mute(7)
	message := NewMessage(100, channel.ID, 7, "user7", "silenced", time.Now().UTC())
	assert.ErrorIs(t, channel.Post(message), ErrMuted)

	channel.Unmute(7)
	assert.NoError(t, channel.Post(message))

	// lifting a mute twice is a no-op
	channel.Unmute(7)
	assert.False(t, channel.IsMuted(7))
}

func TestVoicePostRequiresConnection(t *testing.T) {
	channel := NewVoiceChannel(2, "General Voice", 10, 0, time.Now().UTC())

	message := NewMessage(100, channel.ID, 7, "user7", "[VOICE] hey", time.Now().UTC())
	assert.ErrorIs(t, channel.Post(message), ErrNotConnected)

	require.NoError(t, channel.Connect(7))
	assert.NoError(t, channel.Post(message))
}

func TestVoiceConnectRules(t *testing.T) {
	channel := NewVoiceChannel(2, "General Voice", 10, 2, time.Now().UTC())

	require.NoError(t, channel.Connect(1))
	assert.ErrorIs(t, channel.Connect(1), ErrAlreadyConnected)

	require.NoError(t, channel.Connect(2))
	assert.ErrorIs(t, channel.Connect(3), ErrChannelFull)

	require.NoError(t, channel.Disconnect(1))
	assert.NoError(t, channel.Connect(3))
	assert.Equal(t, 2, channel.ConnectedCount())

	assert.ErrorIs(t, channel.Disconnect(1), ErrNotConnected)
}

func TestVoiceLocked(t *testing.T) {
	channel := NewVoiceChannel(2, "General Voice", 10, 1, time.Now().UTC())

	channel.SetLocked(true)
	assert.ErrorIs(t, channel.Connect(1), ErrChannelLocked)

	channel.SetLocked(false)
	assert.NoError(t, channel.Connect(1))
}

func TestDeleteMessageBeyondTail(t *testing.T) {
	channel := textChannel(t)
	for i := range 25 {
		post(t, channel, int64(100+i), 7, fmt.Sprintf("message %d", i))
	}

	// the oldest message is outside the 20-entry display window but still
	// deletable from the full history
	tail := channel.Tail(20)
	require.Len(t, tail, 20)
	assert.Equal(t, "message 5", tail[0].Content)

	assert.True(t, channel.DeleteMessage(100))
	assert.False(t, channel.DeleteMessage(100))
	assert.Equal(t, 24, channel.MessageCount())
}

func TestTailShorterThanHistory(t *testing.T) {
	channel := textChannel(t)
	post(t, channel, 100, 7, "only one")

	assert.Len(t, channel.Tail(20), 1)
	assert.Empty(t, channel.Tail(0))
}

func TestSearch(t *testing.T) {
	channel := textChannel(t)
	post(t, channel, 100, 7, "Deploy is DONE")
	post(t, channel, 101, 8, "lunch?")
	post(t, channel, 102, 7, "done and done")

	var got []int64
	for message := range channel.Search("done") {
		got = append(got, message.ID)
	}
	assert.Equal(t, []int64{100, 102}, got)

	// the sequence is restartable
	count := 0
	seq := channel.Search("DONE")
	for range seq {
		count++
	}
	for range seq {
		count++
	}
	assert.Equal(t, 4, count)

	for range channel.Search("nothing here") {
		t.Fatal("unexpected match")
	}
}

func TestAppendBypassesChannelRules(t *testing.T) {
	channel := NewVoiceChannel(2, "General Voice", 10, 1, time.Now().UTC())
	channel.SetLocked(true)

	system := NewMessage(100, channel.ID, SystemSenderID, SystemSenderName, "[VOICE ACTION] user7 joined the voice channel", time.Now().UTC())
	channel.Append(system)

	require.Equal(t, 1, channel.MessageCount())
	assert.True(t, channel.History()[0].IsSystem())
}
