// Package presence simulates voice channel occupancy: joining, leaving and
// voice actions, each narrated into the channel as a system message.
package presence

import (
	"time"

	apperrors "chatapp-core/internal/errors"
	"chatapp-core/internal/hub"
	"chatapp-core/internal/models"
	"chatapp-core/internal/snowflake"

	"go.uber.org/zap"
)

var (
	ErrChannelNotFound = apperrors.New(apperrors.CodeChannelNotFound, "channel not found")
	ErrNotVoiceChannel = apperrors.New(apperrors.CodeWrongChannelKind, "not a voice channel")
)

// ServerDirectory resolves servers by ID. Satisfied by membership.Engine.
type ServerDirectory interface {
	Server(id int64) (*models.Server, error)
}

type Engine struct {
	sugar   *zap.SugaredLogger
	ids     *snowflake.Generator
	servers ServerDirectory
	events  *hub.Hub
}

func NewEngine(sugar *zap.SugaredLogger, ids *snowflake.Generator, servers ServerDirectory, events *hub.Hub) *Engine {
	return &Engine{
		sugar:   sugar,
		ids:     ids,
		servers: servers,
		events:  events,
	}
}

func (e *Engine) voiceChannel(serverID, channelID int64) (*models.Server, *models.Channel, error) {
	server, err := e.servers.Server(serverID)
	if err != nil {
		return nil, nil, err
	}
	channel := server.FindChannel(channelID)
	if channel == nil {
		return nil, nil, ErrChannelNotFound
	}
	if channel.Kind != models.ChannelVoice {
		return nil, nil, ErrNotVoiceChannel
	}
	return server, channel, nil
}

func (e *Engine) narrate(channel *models.Channel, text string) {
	messageID, err := e.ids.Generate()
	if err != nil {
		e.sugar.Errorf("Generating system message id failed: %v", err)
		return
	}
	message := models.NewMessage(messageID, channel.ID, models.SystemSenderID, models.SystemSenderName, "[VOICE ACTION] "+text, time.Now().UTC())
	channel.Append(message)
}

// Connect places a member into a voice channel. The channel enforces lock,
// capacity and double-join rules; joining is announced as a system message.
func (e *Engine) Connect(user *models.User, serverID, channelID int64) error {
	server, channel, err := e.voiceChannel(serverID, channelID)
	if err != nil {
		return err
	}
	if !server.IsMember(user.ID) {
		return models.ErrNotMember
	}

	if err := channel.Connect(user.ID); err != nil {
		return err
	}
	e.narrate(channel, user.Username+" joined the voice channel")

	e.sugar.Infof("User [%s] joined voice channel [%s]", user.Username, channel.Name)
	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.VoiceJoined, ServerID: serverID, ChannelID: channelID, UserID: user.ID, Detail: user.Username})
	return nil
}

// Disconnect removes a user from a voice channel.
func (e *Engine) Disconnect(user *models.User, serverID, channelID int64) error {
	_, channel, err := e.voiceChannel(serverID, channelID)
	if err != nil {
		return err
	}

	if err := channel.Disconnect(user.ID); err != nil {
		return err
	}
	e.narrate(channel, user.Username+" left the voice channel")

	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.VoiceLeft, ServerID: serverID, ChannelID: channelID, UserID: user.ID, Detail: user.Username})
	return nil
}

// Act records a simulated voice action for a connected user. Unknown
// actions are narrated verbatim.
func (e *Engine) Act(user *models.User, serverID, channelID int64, action string) error {
	_, channel, err := e.voiceChannel(serverID, channelID)
	if err != nil {
		return err
	}
	if !channel.IsConnected(user.ID) {
		return models.ErrNotConnected
	}

	var text string
	switch action {
	case "speak":
		text = user.Username + " is speaking..."
	case "mute":
		text = user.Username + " muted their microphone"
	case "unmute":
		text = user.Username + " unmuted their microphone"
	case "deafen":
		text = user.Username + " deafened"
	case "undeafen":
		text = user.Username + " undeafened"
	default:
		text = user.Username + " " + action
	}
	e.narrate(channel, text)

	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.VoiceAction, ServerID: serverID, ChannelID: channelID, UserID: user.ID, Detail: action})
	return nil
}
