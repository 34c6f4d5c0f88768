package http

import (
	"time"

	"github.com/vovakirdan/wirerelay/internal/core"
	"github.com/vovakirdan/wirerelay/internal/proto"
	"github.com/vovakirdan/wirerelay/internal/store"
)

// timestampLayout renders created_at with millisecond precision in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func inboundToCommand(inbound *proto.Inbound) (*core.Command, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinChannel:
		return &core.Command{
			Kind:      core.CommandJoinChannel,
			ChannelID: *inbound.ChannelID,
		}, nil
	case proto.InboundTypeMessage:
		cmd := &core.Command{
			Kind:    core.CommandSendMessage,
			Content: inbound.Content,
		}
		if inbound.Attachment != nil {
			cmd.Attachment = &core.Attachment{
				Path: inbound.Attachment.Path,
				Name: inbound.Attachment.Name,
			}
		}
		return cmd, nil
	case proto.InboundTypeTyping:
		return &core.Command{Kind: core.CommandTyping}, nil
	default:
		return nil, core.ErrMalformedEvent
	}
}

func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventNewMessage:
		msg := event.Message
		out := proto.NewMessage{
			Type:      proto.OutboundTypeNewMessage,
			ID:        msg.ID,
			Content:   msg.Content,
			UserID:    msg.Author.ID,
			Username:  msg.Author.Name,
			ChannelID: msg.ChannelID,
			CreatedAt: formatTimestamp(msg.CreatedAt),
		}
		if msg.Attachment != nil {
			out.Attachment = &proto.Attachment{Path: msg.Attachment.Path, Name: msg.Attachment.Name}
		}
		return out
	case core.EventOnlineUsers:
		users := make([]proto.User, 0, len(event.Users))
		for _, u := range event.Users {
			users = append(users, proto.User{ID: u.ID, Username: u.Name})
		}
		return proto.OnlineUsers{Type: proto.OutboundTypeOnlineUsers, Users: users}
	case core.EventUserTyping:
		return proto.UserTyping{
			Type:      proto.OutboundTypeUserTyping,
			Username:  event.User.Name,
			ChannelID: event.ChannelID,
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Error{Type: proto.OutboundTypeError, Code: "unknown", Message: "unknown error"}
		}
		return proto.Error{Type: proto.OutboundTypeError, Code: event.Error.Code, Message: event.Error.Message}
	default:
		return proto.Error{Type: proto.OutboundTypeError, Code: "unknown", Message: "unknown event"}
	}
}

// historyToProto renders a stored message exactly like a live new_message event.
func historyToProto(msg *store.Message) proto.NewMessage {
	out := proto.NewMessage{
		Type:      proto.OutboundTypeNewMessage,
		ID:        msg.ID,
		Content:   msg.Content,
		UserID:    msg.UserID,
		Username:  msg.Username,
		ChannelID: msg.ChannelID,
		CreatedAt: formatTimestamp(msg.CreatedAt),
	}
	if msg.AttachmentPath != nil {
		out.Attachment = &proto.Attachment{Path: *msg.AttachmentPath}
		if msg.AttachmentName != nil {
			out.Attachment.Name = *msg.AttachmentName
		}
	}
	return out
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
