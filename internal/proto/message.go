package proto

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound event types.
const (
	InboundTypeJoinChannel = "join_channel"
	InboundTypeMessage     = "message"
	InboundTypeTyping      = "typing"
)

// Outbound event types.
const (
	OutboundTypeNewMessage  = "new_message"
	OutboundTypeOnlineUsers = "online_users"
	OutboundTypeUserTyping  = "user_typing"
	OutboundTypeError       = "error"
)

var (
	// ErrUnknownType is returned for inbound events with an unrecognised type.
	ErrUnknownType = errors.New("unknown event type")
	// ErrInvalidPayload is returned for inbound events whose fields do not fit the type.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Inbound is a client event. Events are flat JSON objects discriminated by type.
type Inbound struct {
	Type       string      `json:"type"`
	ChannelID  *int64      `json:"channelId,omitempty"`
	Content    string      `json:"content,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Attachment references an uploaded file.
type Attachment struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Decode parses and validates one inbound frame.
func Decode(data []byte) (*Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

// Validate checks the fields required by the event type.
func (in *Inbound) Validate() error {
	switch in.Type {
	case InboundTypeJoinChannel:
		if in.ChannelID == nil {
			return fmt.Errorf("%w: channelId is required", ErrInvalidPayload)
		}
	case InboundTypeMessage:
		if in.Attachment != nil && in.Attachment.Path == "" {
			return fmt.Errorf("%w: attachment path is required", ErrInvalidPayload)
		}
		if in.Content == "" && in.Attachment == nil {
			return fmt.Errorf("%w: content may be empty only with an attachment", ErrInvalidPayload)
		}
	case InboundTypeTyping:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, in.Type)
	}
	return nil
}

// NewMessage is broadcast to a channel once a message is committed.
type NewMessage struct {
	Type       string      `json:"type"`
	ID         int64       `json:"id"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment"`
	UserID     int64       `json:"user_id"`
	Username   string      `json:"username"`
	ChannelID  int64       `json:"channel_id"`
	CreatedAt  string      `json:"created_at"`
}

// User is one entry of the presence list.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// OnlineUsers carries the global presence snapshot.
type OnlineUsers struct {
	Type  string `json:"type"`
	Users []User `json:"users"`
}

// UserTyping tells channel peers someone is typing.
type UserTyping struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	ChannelID int64  `json:"channel_id"`
}

// Error describes a connection-local failure.
type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is used by clients to peek at the type of an outbound frame.
type Envelope struct {
	Type string `json:"type"`
}
