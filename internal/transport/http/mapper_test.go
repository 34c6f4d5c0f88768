package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirerelay/internal/core"
	"github.com/vovakirdan/wirerelay/internal/proto"
)

func TestInboundToCommand(t *testing.T) {
	in, err := proto.Decode([]byte(`{"type":"message","content":"hi","attachment":{"path":"/uploads/a.png","name":"a.png"}}`))
	require.NoError(t, err)

	cmd, err := inboundToCommand(in)
	require.NoError(t, err)
	assert.Equal(t, core.CommandSendMessage, cmd.Kind)
	assert.Equal(t, "hi", cmd.Content)
	require.NotNil(t, cmd.Attachment)
	assert.Equal(t, "a.png", cmd.Attachment.Name)

	in, err = proto.Decode([]byte(`{"type":"join_channel","channelId":7}`))
	require.NoError(t, err)
	cmd, err = inboundToCommand(in)
	require.NoError(t, err)
	assert.Equal(t, core.CommandJoinChannel, cmd.Kind)
	assert.Equal(t, int64(7), cmd.ChannelID)
}

func TestOutboundFromEventNewMessage(t *testing.T) {
	created := time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.FixedZone("X", 3600))
	ev := &core.Event{
		Kind: core.EventNewMessage,
		Message: &core.Message{
			ID:        9,
			ChannelID: 2,
			Author:    core.Identity{ID: 1, Name: "alice"},
			Content:   "hello",
			CreatedAt: created,
		},
	}

	out, ok := outboundFromEvent(ev).(proto.NewMessage)
	require.True(t, ok)
	assert.Equal(t, proto.OutboundTypeNewMessage, out.Type)
	assert.Equal(t, int64(9), out.ID)
	assert.Equal(t, "alice", out.Username)
	assert.Equal(t, int64(2), out.ChannelID)
	assert.Equal(t, "2024-05-06T06:08:09.123Z", out.CreatedAt)
	assert.Nil(t, out.Attachment)
}

func TestOutboundFromEventPresenceAndError(t *testing.T) {
	out := outboundFromEvent(&core.Event{Kind: core.EventOnlineUsers})
	users, ok := out.(proto.OnlineUsers)
	require.True(t, ok)
	assert.NotNil(t, users.Users, "empty presence must encode as [] not null")

	errOut, ok := outboundFromEvent(&core.Event{Kind: core.EventError, Error: &core.CoreError{Code: core.ErrCodeRateLimited, Message: "slow down"}}).(proto.Error)
	require.True(t, ok)
	assert.Equal(t, core.ErrCodeRateLimited, errOut.Code)
}
