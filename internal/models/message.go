package models

import (
	"fmt"
	"time"
)

// SystemSenderID is the reserved sender ID for synthetic system messages
// (voice joins, leaves and actions).
const SystemSenderID int64 = 0

const SystemSenderName = "System"

type Message struct {
	ID             int64
	ChannelID      int64
	SenderID       int64
	SenderUsername string
	Content        string
	CreatedAt      time.Time
	Edited         bool
	EditedAt       time.Time
}

func NewMessage(id int64, channelID int64, senderID int64, senderUsername string, content string, now time.Time) *Message {
	return &Message{
		ID:             id,
		ChannelID:      channelID,
		SenderID:       senderID,
		SenderUsername: senderUsername,
		Content:        content,
		CreatedAt:      now,
	}
}

// SetContent replaces the content verbatim and marks the message edited.
// The edited flag is never cleared, even if the original text is restored.
func (m *Message) SetContent(content string, now time.Time) {
	m.Content = content
	m.Edited = true
	m.EditedAt = now
}

func (m *Message) IsSystem() bool {
	return m.SenderID == SystemSenderID
}

func (m *Message) Format() string {
	edited := ""
	if m.Edited {
		edited = " (edited)"
	}
	return fmt.Sprintf("[%s] %s: %s%s", m.CreatedAt.Format(time.RFC822), m.SenderUsername, m.Content, edited)
}
