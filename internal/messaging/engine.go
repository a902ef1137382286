// Package messaging creates, edits, deletes and searches messages inside
// channels, manages channel-level mutes and direct-message threads.
package messaging

import (
	"fmt"
	"iter"
	"sync"
	"time"

	apperrors "chatapp-core/internal/errors"
	"chatapp-core/internal/hub"
	"chatapp-core/internal/identity"
	"chatapp-core/internal/membership"
	"chatapp-core/internal/models"
	"chatapp-core/internal/permission"
	"chatapp-core/internal/snowflake"
	format "chatapp-core/internal/validator"

	"go.uber.org/zap"
)

var (
	ErrChannelNotFound   = apperrors.New(apperrors.CodeChannelNotFound, "channel not found")
	ErrMessageNotFound   = apperrors.New(apperrors.CodeMessageNotFound, "message not found")
	ErrMissingCapability = apperrors.New(apperrors.CodeMissingCapability, "missing capability")
	ErrNotMessageSender  = apperrors.New(apperrors.CodeMissingCapability, "you can only modify your own messages")
	ErrSelfDirectMessage = apperrors.New(apperrors.CodeSelfTarget, "you cannot send a direct message to yourself")
	ErrNotTextChannel    = apperrors.New(apperrors.CodeWrongChannelKind, "not a text channel")
)

type Engine struct {
	sugar   *zap.SugaredLogger
	ids     *snowflake.Generator
	users   *identity.Store
	servers *membership.Engine
	events  *hub.Hub

	mutex sync.RWMutex
	dms   map[string][]*models.Message // canonical pair key -> thread
}

func NewEngine(sugar *zap.SugaredLogger, ids *snowflake.Generator, users *identity.Store, servers *membership.Engine, events *hub.Hub) *Engine {
	return &Engine{
		sugar:   sugar,
		ids:     ids,
		users:   users,
		servers: servers,
		events:  events,
		dms:     make(map[string][]*models.Message),
	}
}

func (e *Engine) channel(serverID, channelID int64) (*models.Server, *models.Channel, error) {
	server, err := e.servers.Server(serverID)
	if err != nil {
		return nil, nil, err
	}
	channel := server.FindChannel(channelID)
	if channel == nil {
		return nil, nil, ErrChannelNotFound
	}
	return server, channel, nil
}

// CreateTextChannel adds a text channel to the server. Requires the
// create_channels capability or per-server Admin standing.
func (e *Engine) CreateTextChannel(actor *models.User, serverID int64, name string) (*models.Channel, error) {
	return e.createChannel(actor, serverID, name, models.ChannelText)
}

// CreateVoiceChannel adds a voice channel with the default capacity.
func (e *Engine) CreateVoiceChannel(actor *models.User, serverID int64, name string) (*models.Channel, error) {
	return e.createChannel(actor, serverID, name, models.ChannelVoice)
}

func (e *Engine) createChannel(actor *models.User, serverID int64, name string, kind models.ChannelKind) (*models.Channel, error) {
	if err := format.ChannelName(name); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEmptyName, "invalid channel name", err)
	}

	server, err := e.servers.Server(serverID)
	if err != nil {
		return nil, err
	}
	if !permission.Check(actor, server, permission.CreateChannels) {
		return nil, ErrMissingCapability
	}

	channelID, err := e.ids.Generate()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var channel *models.Channel
	if kind == models.ChannelVoice {
		channel = models.NewVoiceChannel(channelID, name, serverID, 0, now)
	} else {
		channel = models.NewTextChannel(channelID, name, serverID, now)
	}

	if err := server.AddChannel(channel); err != nil {
		return nil, err
	}

	e.sugar.Infof("User [%s] created %s channel [%s] in server [%s]", actor.Username, channel.Kind.Label(), name, server.Name)
	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.ChannelCreated, ServerID: serverID, ChannelID: channelID, UserID: actor.ID, Detail: name})
	return channel, nil
}

// DeleteChannel removes a channel and its history. Requires the
// delete_channels capability or per-server Admin standing.
func (e *Engine) DeleteChannel(actor *models.User, serverID, channelID int64) error {
	server, channel, err := e.channel(serverID, channelID)
	if err != nil {
		return err
	}
	if !permission.Check(actor, server, permission.DeleteChannels) {
		return ErrMissingCapability
	}

	if !server.RemoveChannel(channelID) {
		return ErrChannelNotFound
	}

	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.ChannelDeleted, ServerID: serverID, ChannelID: channelID, UserID: actor.ID, Detail: channel.Name})
	return nil
}

// SendMessage posts a message to a channel. The sender must be a member of
// the server; the channel's own rules (mute, length cap, voice connection)
// are enforced by the channel.
func (e *Engine) SendMessage(sender *models.User, serverID, channelID int64, content string) (*models.Message, error) {
	server, channel, err := e.channel(serverID, channelID)
	if err != nil {
		return nil, err
	}
	if !server.IsMember(sender.ID) {
		return nil, models.ErrNotMember
	}

	messageID, err := e.ids.Generate()
	if err != nil {
		return nil, err
	}

	if channel.Kind == models.ChannelVoice {
		// text chat inside a voice channel, not the simulated audio
		content = "[VOICE] " + content
	}

	message := models.NewMessage(messageID, channelID, sender.ID, sender.Username, content, time.Now().UTC())
	if err := channel.Post(message); err != nil {
		return nil, err
	}

	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.MessageCreated, ServerID: serverID, ChannelID: channelID, UserID: sender.ID})
	return message, nil
}

func (e *Engine) canModify(actor *models.User, server *models.Server, message *models.Message) bool {
	if message.SenderID == actor.ID {
		return true
	}
	return permission.Check(actor, server, permission.DeleteMessages)
}

// EditMessage replaces a message's content verbatim and marks it edited.
// Allowed for the original sender or an actor holding the delete_messages
// capability. Text channels only.
func (e *Engine) EditMessage(editor *models.User, serverID, channelID, messageID int64, newContent string) error {
	server, channel, err := e.channel(serverID, channelID)
	if err != nil {
		return err
	}
	if channel.Kind != models.ChannelText {
		return ErrNotTextChannel
	}

	message := channel.FindMessage(messageID)
	if message == nil {
		return ErrMessageNotFound
	}
	if !e.canModify(editor, server, message) {
		return ErrNotMessageSender
	}
	if len(newContent) > channel.MaxMessageLength {
		return models.ErrMessageTooLong
	}

	message.SetContent(newContent, time.Now().UTC())

	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.MessageModified, ServerID: serverID, ChannelID: channelID, UserID: editor.ID})
	return nil
}

// DeleteMessage hard-removes a message, searching the full history rather
// than the truncated display view.
func (e *Engine) DeleteMessage(actor *models.User, serverID, channelID, messageID int64) error {
	server, channel, err := e.channel(serverID, channelID)
	if err != nil {
		return err
	}

	message := channel.FindMessage(messageID)
	if message == nil {
		return ErrMessageNotFound
	}
	if !e.canModify(actor, server, message) {
		return ErrNotMessageSender
	}

	if !channel.DeleteMessage(messageID) {
		return ErrMessageNotFound
	}

	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.MessageDeleted, ServerID: serverID, ChannelID: channelID, UserID: actor.ID})
	return nil
}

// SearchMessages yields the channel's messages containing the keyword,
// case-insensitively, in chronological order. Does not mutate state.
func (e *Engine) SearchMessages(serverID, channelID int64, keyword string) (iter.Seq[*models.Message], error) {
	_, channel, err := e.channel(serverID, channelID)
	if err != nil {
		return nil, err
	}
	return channel.Search(keyword), nil
}

// Channel returns a channel for history display. The caller must be a
// member of the owning server.
func (e *Engine) Channel(user *models.User, serverID, channelID int64) (*models.Channel, error) {
	server, channel, err := e.channel(serverID, channelID)
	if err != nil {
		return nil, err
	}
	if !server.IsMember(user.ID) {
		return nil, models.ErrNotMember
	}
	return channel, nil
}

// MuteUser silences a user in one channel. Requires the mute_users
// capability or per-server Admin/Moderator standing.
func (e *Engine) MuteUser(actor *models.User, serverID, channelID int64, targetUsername string) error {
	server, channel, err := e.channel(serverID, channelID)
	if err != nil {
		return err
	}
	if !permission.Check(actor, server, permission.MuteUsers) {
		return ErrMissingCapability
	}

	target, err := e.users.UserByName(targetUsername)
	if err != nil {
		return err
	}
	channel.Mute(target.ID)

	e.sugar.Infof("User [%s] muted [%s] in channel [%s]", actor.Username, target.Username, channel.Name)
	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.UserMuted, ServerID: serverID, ChannelID: channelID, UserID: target.ID, Detail: target.Username})
	return nil
}

// UnmuteUser lifts a channel mute. Unmuting an unmuted user is a no-op
// success.
func (e *Engine) UnmuteUser(actor *models.User, serverID, channelID int64, targetUsername string) error {
	server, channel, err := e.channel(serverID, channelID)
	if err != nil {
		return err
	}
	if !permission.Check(actor, server, permission.MuteUsers) {
		return ErrMissingCapability
	}

	target, err := e.users.UserByName(targetUsername)
	if err != nil {
		return err
	}
	channel.Unmute(target.ID)

	e.events.Publish(hub.ServerTopic(serverID), hub.Event{Type: hub.UserUnmuted, ServerID: serverID, ChannelID: channelID, UserID: target.ID, Detail: target.Username})
	return nil
}

// dmKey canonicalizes a user pair: smaller ID first, so both participants
// resolve the same thread.
func dmKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// SendDirectMessage appends to the pair's thread, creating it lazily.
// Direct messages have no length cap and are never moderated by a channel.
func (e *Engine) SendDirectMessage(sender *models.User, recipientUsername, content string) (*models.Message, error) {
	recipient, err := e.users.UserByName(recipientUsername)
	if err != nil {
		return nil, err
	}
	if recipient.ID == sender.ID {
		return nil, ErrSelfDirectMessage
	}

	messageID, err := e.ids.Generate()
	if err != nil {
		return nil, err
	}
	message := models.NewMessage(messageID, 0, sender.ID, sender.Username, content, time.Now().UTC())

	key := dmKey(sender.ID, recipient.ID)
	e.mutex.Lock()
	e.dms[key] = append(e.dms[key], message)
	e.mutex.Unlock()

	e.events.Publish("dm:"+key, hub.Event{Type: hub.MessageCreated, UserID: sender.ID, Detail: recipient.Username})
	return message, nil
}

// DirectMessagesWith returns the chronological thread between the user and
// the named counterpart. The returned slice must not be mutated.
func (e *Engine) DirectMessagesWith(user *models.User, otherUsername string) ([]*models.Message, error) {
	other, err := e.users.UserByName(otherUsername)
	if err != nil {
		return nil, err
	}

	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.dms[dmKey(user.ID, other.ID)], nil
}
