package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventNewMessage carries a committed message to a channel's viewers.
	EventNewMessage EventKind = iota
	// EventOnlineUsers carries the global presence snapshot.
	EventOnlineUsers
	// EventUserTyping tells channel peers that someone is typing.
	EventUserTyping
	// EventError reports a connection-local failure.
	EventError
)

// Event is sent to clients to describe what happened in the system.
// Events are shared between recipients and must not be mutated after fan-out.
type Event struct {
	Kind      EventKind
	ChannelID int64
	User      Identity
	Message   *Message
	Users     []Identity
	Error     *CoreError
}

func newMessageEvent(msg *Message) *Event {
	return &Event{Kind: EventNewMessage, ChannelID: msg.ChannelID, User: msg.Author, Message: msg}
}

func onlineUsersEvent(users []Identity) *Event {
	return &Event{Kind: EventOnlineUsers, Users: users}
}

func userTypingEvent(who Identity, channelID int64) *Event {
	return &Event{Kind: EventUserTyping, ChannelID: channelID, User: who}
}

func errorEvent(err *CoreError) *Event {
	return &Event{Kind: EventError, Error: err}
}
