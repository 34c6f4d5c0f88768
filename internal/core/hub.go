package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/metrics"
)

// Hub ties the registry, presence tracker, router and broadcast engine together
// and owns connect/disconnect orchestration.
type Hub struct {
	registry *Registry
	presence *Presence
	engine   *Engine
	router   *Router
	out      *outbox
	log      *zerolog.Logger

	// presenceMu orders connect/disconnect so online_users snapshots go out in transition order.
	presenceMu sync.Mutex
	closed     bool
}

// NewHub creates a new chat hub instance.
func NewHub(gateway PersistenceGateway, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	h := &Hub{
		registry: NewRegistry(),
		presence: NewPresence(),
		log:      logger,
	}
	h.out = &outbox{
		log: logger,
		onSlow: func(c *Conn) {
			// Called under the registry read lock during fan-out.
			go h.Disconnect(c)
		},
	}
	h.engine = newEngine(gateway, h.registry, h.out, logger)
	h.router = newRouter(h.registry, h.engine, h.out, logger)
	return h
}

// Registry exposes the connection registry.
func (h *Hub) Registry() *Registry { return h.registry }

// Presence exposes the presence tracker.
func (h *Hub) Presence() *Presence { return h.presence }

// Engine exposes the broadcast engine.
func (h *Hub) Engine() *Engine { return h.engine }

// Connect registers c and updates presence. The first connection of an identity
// triggers an online_users broadcast to everyone; later ones only get the snapshot.
func (h *Hub) Connect(c *Conn) error {
	h.presenceMu.Lock()
	defer h.presenceMu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if err := h.registry.Register(c); err != nil {
		return err
	}
	metrics.Connections.Inc()

	if h.presence.Opened(c.Identity) {
		metrics.OnlineUsers.Inc()
		h.log.Info().Int64("user_id", c.Identity.ID).Str("username", c.Identity.Name).Msg("user online")
		h.broadcastPresence()
	} else {
		h.out.send(c, onlineUsersEvent(h.presence.Snapshot()))
	}

	h.log.Debug().Str("conn_id", c.ID).Int64("user_id", c.Identity.ID).Msg("connection registered")
	return nil
}

// Disconnect unregisters c and closes it. Safe to call more than once and from
// several goroutines; only the first call touches presence.
func (h *Hub) Disconnect(c *Conn) {
	h.presenceMu.Lock()
	defer h.presenceMu.Unlock()

	if !h.registry.Unregister(c) {
		return
	}
	c.Close(nil)
	metrics.Connections.Dec()

	if h.presence.Closed(c.Identity) {
		metrics.OnlineUsers.Dec()
		h.log.Info().Int64("user_id", c.Identity.ID).Str("username", c.Identity.Name).Msg("user offline")
		h.broadcastPresence()
	}

	h.log.Debug().Str("conn_id", c.ID).Int64("user_id", c.Identity.ID).AnErr("reason", c.Err()).Msg("connection unregistered")
}

// Handle routes one inbound command from c.
func (h *Hub) Handle(ctx context.Context, c *Conn, cmd *Command) error {
	return h.router.Dispatch(ctx, c, cmd)
}

// Notify sends a connection-local error event to c.
func (h *Hub) Notify(c *Conn, code, msg string) {
	h.out.send(c, errorEvent(coreError(code, msg)))
}

// Close refuses new connections and closes every registered one.
// Transports observe Done and call Disconnect.
func (h *Hub) Close() {
	h.presenceMu.Lock()
	h.closed = true
	h.presenceMu.Unlock()

	h.registry.ForEach(func(c *Conn) {
		c.Close(nil)
	})
}

// broadcastPresence must be called with presenceMu held.
func (h *Hub) broadcastPresence() {
	ev := onlineUsersEvent(h.presence.Snapshot())
	h.registry.ForEach(func(c *Conn) {
		h.out.send(c, ev)
	})
}
