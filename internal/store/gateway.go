package store

import (
	"context"
	"fmt"

	"github.com/vovakirdan/wirerelay/internal/core"
)

// Gateway persists chat messages for the core broadcast engine.
type Gateway struct {
	messages MessageStore
}

var _ core.PersistenceGateway = (*Gateway)(nil)

// NewGateway adapts a MessageStore to core.PersistenceGateway.
func NewGateway(messages MessageStore) *Gateway {
	return &Gateway{messages: messages}
}

// AppendMessage stores the message and returns the assigned id and timestamp.
func (g *Gateway) AppendMessage(ctx context.Context, channelID, authorID int64, content string, attachment *core.Attachment) (core.Commit, error) {
	msg := &Message{
		ChannelID: channelID,
		UserID:    authorID,
		Content:   content,
	}
	if attachment != nil {
		path, name := attachment.Path, attachment.Name
		msg.AttachmentPath = &path
		msg.AttachmentName = &name
	}

	if err := g.messages.AppendMessage(ctx, msg); err != nil {
		return core.Commit{}, fmt.Errorf("append message to channel %d: %w", channelID, err)
	}
	return core.Commit{ID: msg.ID, CreatedAt: msg.CreatedAt}, nil
}
