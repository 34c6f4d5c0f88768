package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/metrics"
)

// PersistenceGateway durably appends a message and assigns its id and timestamp.
type PersistenceGateway interface {
	AppendMessage(ctx context.Context, channelID, authorID int64, content string, attachment *Attachment) (Commit, error)
}

// outbox enqueues events without blocking and force-closes connections that fall behind.
type outbox struct {
	log    *zerolog.Logger
	onSlow func(*Conn)
}

func (o *outbox) send(c *Conn, ev *Event) {
	if c.enqueue(ev) {
		metrics.Deliveries.Inc()
		return
	}
	if c.Closed() {
		return
	}
	o.log.Warn().Str("conn_id", c.ID).Int64("user_id", c.Identity.ID).Msg("outbound queue full, closing connection")
	metrics.SlowConsumers.Inc()
	c.Close(ErrSlowConsumer)
	if o.onSlow != nil {
		o.onSlow(c)
	}
}

// sequencer hands out one mutex per channel so that persist-then-broadcast
// runs one message at a time per channel without touching the registry lock.
type sequencer struct {
	mu    sync.Mutex
	locks map[int64]*channelLock
}

type channelLock struct {
	sync.Mutex
	refs int
}

func newSequencer() *sequencer {
	return &sequencer{locks: make(map[int64]*channelLock)}
}

func (s *sequencer) lock(channelID int64) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[channelID]
	if !ok {
		l = &channelLock{}
		s.locks[channelID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, channelID)
		}
		s.mu.Unlock()
	}
}

// Engine persists chat messages and fans the committed result out to the channel.
type Engine struct {
	gateway  PersistenceGateway
	registry *Registry
	out      *outbox
	seq      *sequencer
	log      *zerolog.Logger
}

func newEngine(gateway PersistenceGateway, registry *Registry, out *outbox, logger *zerolog.Logger) *Engine {
	return &Engine{
		gateway:  gateway,
		registry: registry,
		out:      out,
		seq:      newSequencer(),
		log:      logger,
	}
}

// Submit appends the message through the gateway and, only once it is committed,
// delivers new_message to every connection viewing the channel, sender included.
// Submissions to the same channel are broadcast in commit order.
func (e *Engine) Submit(ctx context.Context, author Identity, channelID int64, content string, attachment *Attachment) (*Message, error) {
	unlock := e.seq.lock(channelID)
	defer unlock()

	start := time.Now()
	commit, err := e.gateway.AppendMessage(ctx, channelID, author.ID, content, attachment)
	metrics.PersistLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Messages.WithLabelValues("persist_failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrPersistFailure, err)
	}
	metrics.Messages.WithLabelValues("committed").Inc()

	msg := &Message{
		ID:         commit.ID,
		ChannelID:  channelID,
		Author:     author,
		Content:    content,
		Attachment: cloneAttachment(attachment),
		CreatedAt:  commit.CreatedAt,
	}

	ev := newMessageEvent(msg)
	recipients := 0
	e.registry.ForEachInChannel(channelID, func(c *Conn) {
		e.out.send(c, ev)
		recipients++
	})

	e.log.Debug().
		Int64("message_id", msg.ID).
		Int64("channel_id", channelID).
		Int64("user_id", author.ID).
		Int("recipients", recipients).
		Msg("message broadcast")
	return msg, nil
}

func cloneAttachment(a *Attachment) *Attachment {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}
