package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Router dispatches inbound commands to the registry or the engine.
type Router struct {
	registry *Registry
	engine   *Engine
	out      *outbox
	log      *zerolog.Logger
}

func newRouter(registry *Registry, engine *Engine, out *outbox, logger *zerolog.Logger) *Router {
	return &Router{registry: registry, engine: engine, out: out, log: logger}
}

// Dispatch handles one command from c. Returned errors are connection-local;
// ErrNoChannelSelected and ErrMalformedEvent are never reported to the client.
func (r *Router) Dispatch(ctx context.Context, c *Conn, cmd *Command) error {
	if cmd == nil {
		return ErrMalformedEvent
	}

	switch cmd.Kind {
	case CommandJoinChannel:
		if !r.registry.SetChannel(c, cmd.ChannelID) {
			return fmt.Errorf("join channel %d: connection not registered", cmd.ChannelID)
		}
		r.log.Debug().Str("conn_id", c.ID).Int64("channel_id", cmd.ChannelID).Msg("channel selected")
		return nil

	case CommandSendMessage:
		channelID, ok := r.registry.Channel(c)
		if !ok {
			return ErrNoChannelSelected
		}
		if cmd.Content == "" && cmd.Attachment == nil {
			return fmt.Errorf("%w: empty message", ErrMalformedEvent)
		}
		_, err := r.engine.Submit(ctx, c.Identity, channelID, cmd.Content, cmd.Attachment)
		if err != nil {
			r.log.Error().Err(err).
				Str("conn_id", c.ID).
				Int64("channel_id", channelID).
				Int64("user_id", c.Identity.ID).
				Msg("failed to persist message")
			if errors.Is(err, ErrPersistFailure) {
				r.out.send(c, errorEvent(coreError(ErrCodePersistFailed, "message could not be saved")))
			}
			return err
		}
		return nil

	case CommandTyping:
		channelID, ok := r.registry.Channel(c)
		if !ok {
			return ErrNoChannelSelected
		}
		ev := userTypingEvent(c.Identity, channelID)
		r.registry.ForEachInChannel(channelID, func(peer *Conn) {
			if peer != c {
				r.out.send(peer, ev)
			}
		})
		return nil

	default:
		return fmt.Errorf("%w: unknown command kind %d", ErrMalformedEvent, cmd.Kind)
	}
}
