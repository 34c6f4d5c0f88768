package proto

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
		check   func(t *testing.T, in *Inbound)
	}{
		{
			name: "join channel",
			raw:  `{"type":"join_channel","channelId":3}`,
			check: func(t *testing.T, in *Inbound) {
				if in.ChannelID == nil || *in.ChannelID != 3 {
					t.Fatalf("unexpected channel: %+v", in.ChannelID)
				}
			},
		},
		{
			name:    "join without channel",
			raw:     `{"type":"join_channel"}`,
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "join with string channel",
			raw:     `{"type":"join_channel","channelId":"general"}`,
			wantErr: ErrInvalidPayload,
		},
		{
			name: "message with attachment",
			raw:  `{"type":"message","content":"","attachment":{"path":"/uploads/a.png","name":"a.png"}}`,
			check: func(t *testing.T, in *Inbound) {
				if in.Attachment == nil || in.Attachment.Name != "a.png" {
					t.Fatalf("unexpected attachment: %+v", in.Attachment)
				}
			},
		},
		{
			name:    "empty message",
			raw:     `{"type":"message","content":""}`,
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "attachment without path",
			raw:     `{"type":"message","content":"x","attachment":{"name":"a.png"}}`,
			wantErr: ErrInvalidPayload,
		},
		{
			name: "typing",
			raw:  `{"type":"typing"}`,
		},
		{
			name:    "unknown type",
			raw:     `{"type":"shout"}`,
			wantErr: ErrUnknownType,
		},
		{
			name:    "not json",
			raw:     `hello`,
			wantErr: ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Decode([]byte(tt.raw))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, in)
			}
		})
	}
}

func TestNewMessageAttachmentNullWhenAbsent(t *testing.T) {
	data, err := json.Marshal(NewMessage{Type: OutboundTypeNewMessage, ID: 1, Content: "hi"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["attachment"]) != "null" {
		t.Fatalf("expected null attachment, got %s", raw["attachment"])
	}
	for _, key := range []string{"id", "content", "user_id", "username", "channel_id", "created_at"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing key %q in %s", key, data)
		}
	}
}
