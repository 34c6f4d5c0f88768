package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/core"
	"github.com/vovakirdan/wirerelay/internal/metrics"
	"github.com/vovakirdan/wirerelay/internal/proto"
)

// WSOptions tunes one WebSocket session.
type WSOptions struct {
	QueueSize       int
	MaxMessageBytes int64
	PingInterval    time.Duration
	WriteTimeout    time.Duration
	EventsPerSecond float64
	EventsBurst     int
}

// WSHandler authenticates the handshake and bridges the socket to a core.Conn.
type WSHandler struct {
	hub      *core.Hub
	resolver core.IdentityResolver
	opts     WSOptions
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, resolver core.IdentityResolver, opts WSOptions, logger *zerolog.Logger) *WSHandler {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &WSHandler{hub: hub, resolver: resolver, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	identity, authErr := h.resolver.Verify(credentialFromRequest(r))

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	if authErr != nil {
		h.log.Debug().Err(authErr).Str("remote", r.RemoteAddr).Msg("ws handshake rejected")
		_ = ws.Close(websocket.StatusPolicyViolation, "unauthorized")
		return
	}
	if h.opts.MaxMessageBytes > 0 {
		ws.SetReadLimit(h.opts.MaxMessageBytes)
	}

	conn := core.NewConn(identity, h.opts.QueueSize)
	if err := h.hub.Connect(conn); err != nil {
		h.log.Warn().Err(err).Int64("user_id", identity.ID).Msg("ws connect refused")
		_ = ws.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.hub.Disconnect(conn)

	logger := h.log.With().Str("conn_id", conn.ID).Int64("user_id", identity.ID).Logger()
	logger.Info().Str("username", identity.Name).Msg("ws connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		errCh <- h.readLoop(ctx, ws, conn, &logger)
	}()
	go func() {
		defer wg.Done()
		errCh <- h.writeLoop(ctx, ws, conn)
	}()
	go func() {
		defer wg.Done()
		errCh <- h.pingLoop(ctx, ws)
	}()

	select {
	case err = <-errCh:
	case <-conn.Done():
		err = conn.Err()
		if err == nil {
			err = core.ErrHubClosed
		}
	}

	status, reason := closeStatus(err)
	if status != websocket.StatusNormalClosure {
		logger.Warn().Err(err).Int("status", int(status)).Msg("ws connection closed with error")
	}
	_ = ws.Close(status, reason)
	cancel()
	wg.Wait()

	logger.Info().Msg("ws disconnected")
}

// closeStatus maps the error that ended a session to a close frame.
func closeStatus(err error) (websocket.StatusCode, string) {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
		return websocket.StatusNormalClosure, "closing"
	case errors.Is(err, core.ErrSlowConsumer):
		return websocket.StatusPolicyViolation, "slow consumer"
	case errors.Is(err, core.ErrHubClosed):
		return websocket.StatusGoingAway, "server shutting down"
	}
	switch s := websocket.CloseStatus(err); s {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return websocket.StatusNormalClosure, "closing"
	case websocket.StatusMessageTooBig:
		return websocket.StatusMessageTooBig, "message too big"
	}
	return websocket.StatusInternalError, "internal error"
}

func (h *WSHandler) readLoop(ctx context.Context, ws *websocket.Conn, conn *core.Conn, logger *zerolog.Logger) error {
	limiter := newEventLimiter(h.opts.EventsPerSecond, h.opts.EventsBurst)

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.Allow() {
			metrics.InboundEvents.WithLabelValues("rate_limited").Inc()
			h.hub.Notify(conn, core.ErrCodeRateLimited, "too many events, slow down")
			continue
		}

		inbound, err := proto.Decode(data)
		if err != nil {
			metrics.InboundEvents.WithLabelValues("malformed").Inc()
			logger.Warn().Err(err).Msg("dropping malformed event")
			continue
		}
		metrics.InboundEvents.WithLabelValues(inbound.Type).Inc()

		cmd, err := inboundToCommand(inbound)
		if err != nil {
			logger.Debug().Err(err).Str("type", inbound.Type).Msg("dropping unmapped event")
			continue
		}

		if err := h.hub.Handle(ctx, conn, cmd); err != nil {
			switch {
			case errors.Is(err, core.ErrNoChannelSelected), errors.Is(err, core.ErrMalformedEvent):
				logger.Debug().Err(err).Str("type", inbound.Type).Msg("event ignored")
			case errors.Is(err, core.ErrPersistFailure):
				// already reported to the client
			default:
				logger.Warn().Err(err).Str("type", inbound.Type).Msg("event failed")
			}
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, ws *websocket.Conn, conn *core.Conn) error {
	for {
		select {
		case event := <-conn.Events():
			if err := h.write(ctx, ws, outboundFromEvent(event)); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) write(ctx context.Context, ws *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, h.opts.WriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, ws, v)
}

// pingLoop fails the session when the peer stops answering pings.
func (h *WSHandler) pingLoop(ctx context.Context, ws *websocket.Conn) error {
	if h.opts.PingInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.opts.PingInterval)
			err := ws.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
