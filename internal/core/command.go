package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinChannel switches the connection's channel selection.
	CommandJoinChannel CommandKind = iota
	// CommandSendMessage persists a message and fans it out to the channel.
	CommandSendMessage
	// CommandTyping tells the other viewers of the channel that the sender is typing.
	CommandTyping
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoinChannel:
		return "join_channel"
	case CommandSendMessage:
		return "message"
	case CommandTyping:
		return "typing"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind       CommandKind
	ChannelID  int64
	Content    string
	Attachment *Attachment
}
