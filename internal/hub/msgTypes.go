package hub

type EventType string

const (
	ServerCreated EventType = "ServerCreated"
	ServerDeleted EventType = "ServerDeleted"

	MemberJoined EventType = "MemberJoined"
	MemberLeft   EventType = "MemberLeft"
	MemberKicked EventType = "MemberKicked"
	MemberBanned EventType = "MemberBanned"
	RoleChanged  EventType = "RoleChanged"

	InviteRegenerated EventType = "InviteRegenerated"

	ChannelCreated EventType = "ChannelCreated"
	ChannelDeleted EventType = "ChannelDeleted"

	MessageCreated  EventType = "MessageCreated"
	MessageDeleted  EventType = "MessageDeleted"
	MessageModified EventType = "MessageModified"

	UserMuted   EventType = "UserMuted"
	UserUnmuted EventType = "UserUnmuted"

	VoiceJoined EventType = "VoiceJoined"
	VoiceLeft   EventType = "VoiceLeft"
	VoiceAction EventType = "VoiceAction"
)
