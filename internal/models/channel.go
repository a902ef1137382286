package models

import (
	"iter"
	"strings"
	"sync"
	"time"

	apperrors "chatapp-core/internal/errors"

	"github.com/samber/lo"
)

// ChannelKind is the closed set of channel capabilities.
type ChannelKind int

const (
	ChannelText ChannelKind = iota
	ChannelVoice
)

func (k ChannelKind) Label() string {
	if k == ChannelVoice {
		return "VOICE"
	}
	return "TEXT"
}

const (
	// DefaultMaxMessageLength is the text message length cap.
	DefaultMaxMessageLength = 2000
	// DefaultVoiceCapacity is the connected-user cap for new voice channels.
	DefaultVoiceCapacity = 99
)

var (
	ErrMuted            = apperrors.New(apperrors.CodeMuted, "user is muted in this channel")
	ErrMessageTooLong   = apperrors.New(apperrors.CodeMessageTooLong, "message exceeds the channel length cap")
	ErrNotConnected     = apperrors.New(apperrors.CodeNotConnected, "user is not connected to the voice channel")
	ErrChannelLocked    = apperrors.New(apperrors.CodeChannelLocked, "voice channel is locked")
	ErrChannelFull      = apperrors.New(apperrors.CodeChannelFull, "voice channel is full")
	ErrAlreadyConnected = apperrors.New(apperrors.CodeAlreadyConnected, "user is already connected to the voice channel")
)

type Channel struct {
	ID        int64
	Name      string
	ServerID  int64
	Kind      ChannelKind
	CreatedAt time.Time

	// MaxMessageLength applies to text channels only.
	MaxMessageLength int
	// Capacity applies to voice channels only.
	Capacity int

	mutex     sync.RWMutex
	history   []*Message
	muted     map[int64]struct{}
	connected map[int64]struct{}
	locked    bool
}

func NewTextChannel(id int64, name string, serverID int64, now time.Time) *Channel {
	return &Channel{
		ID:               id,
		Name:             name,
		ServerID:         serverID,
		Kind:             ChannelText,
		CreatedAt:        now,
		MaxMessageLength: DefaultMaxMessageLength,
		muted:            make(map[int64]struct{}),
	}
}

func NewVoiceChannel(id int64, name string, serverID int64, capacity int, now time.Time) *Channel {
	if capacity <= 0 {
		capacity = DefaultVoiceCapacity
	}
	return &Channel{
		ID:        id,
		Name:      name,
		ServerID:  serverID,
		Kind:      ChannelVoice,
		CreatedAt: now,
		Capacity:  capacity,
		muted:     make(map[int64]struct{}),
		connected: make(map[int64]struct{}),
	}
}

// Post validates the channel's local rules for a user message and appends it.
// Text channels enforce the length cap; voice channels require the sender to
// be connected. Muted senders are rejected in both kinds.
func (c *Channel) Post(message *Message) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, muted := c.muted[message.SenderID]; muted {
		return ErrMuted
	}

	switch c.Kind {
	case ChannelText:
		if len(message.Content) > c.MaxMessageLength {
			return ErrMessageTooLong
		}
	case ChannelVoice:
		if _, ok := c.connected[message.SenderID]; !ok {
			return ErrNotConnected
		}
	}

	c.history = append(c.history, message)
	return nil
}

// Append adds a message without rule checks. Used for synthetic system
// messages, which bypass mute and connection rules.
func (c *Channel) Append(message *Message) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.history = append(c.history, message)
}

func (c *Channel) FindMessage(messageID int64) *Message {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, message := range c.history {
		if message.ID == messageID {
			return message
		}
	}
	return nil
}

// DeleteMessage hard-removes a message from the full history.
func (c *Channel) DeleteMessage(messageID int64) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for i, message := range c.history {
		if message.ID == messageID {
			c.history = append(c.history[:i], c.history[i+1:]...)
			return true
		}
	}
	return false
}

// History returns the full message history in chronological order.
// The returned slice must not be mutated by the caller.
func (c *Channel) History() []*Message {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.history
}

// Tail returns the most recent n messages, for display.
func (c *Channel) Tail(n int) []*Message {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if len(c.history) <= n {
		return c.history
	}
	return c.history[len(c.history)-n:]
}

func (c *Channel) MessageCount() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.history)
}

// Search lazily yields messages whose content contains keyword,
// case-insensitively, preserving chronological order. The sequence is
// restartable and scans the history as it stood when Search was called.
func (c *Channel) Search(keyword string) iter.Seq[*Message] {
	c.mutex.RLock()
	snapshot := c.history
	c.mutex.RUnlock()

	needle := strings.ToLower(keyword)
	return func(yield func(*Message) bool) {
		for _, message := range snapshot {
			if strings.Contains(strings.ToLower(message.Content), needle) {
				if !yield(message) {
					return
				}
			}
		}
	}
}

func (c *Channel) Mute(userID int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.muted[userID] = struct{}{}
}

// Unmute is idempotent; unmuting a user who is not muted is a no-op.
func (c *Channel) Unmute(userID int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.muted, userID)
}

func (c *Channel) IsMuted(userID int64) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, ok := c.muted[userID]
	return ok
}

// Connect adds a user to the voice channel's connected set.
func (c *Channel) Connect(userID int64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.locked {
		return ErrChannelLocked
	}
	if len(c.connected) >= c.Capacity {
		return ErrChannelFull
	}
	if _, ok := c.connected[userID]; ok {
		return ErrAlreadyConnected
	}

	c.connected[userID] = struct{}{}
	return nil
}

func (c *Channel) Disconnect(userID int64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.connected[userID]; !ok {
		return ErrNotConnected
	}
	delete(c.connected, userID)
	return nil
}

func (c *Channel) IsConnected(userID int64) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, ok := c.connected[userID]
	return ok
}

func (c *Channel) ConnectedIDs() []int64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return lo.Keys(c.connected)
}

func (c *Channel) ConnectedCount() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.connected)
}

func (c *Channel) Locked() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.locked
}

func (c *Channel) SetLocked(locked bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.locked = locked
}
