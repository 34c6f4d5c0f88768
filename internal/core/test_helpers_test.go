package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var (
	alice = Identity{ID: 1, Name: "alice"}
	bob   = Identity{ID: 2, Name: "bob"}
	carol = Identity{ID: 3, Name: "carol"}
)

type appendCall struct {
	channelID  int64
	authorID   int64
	content    string
	attachment *Attachment
}

// fakeGateway assigns increasing ids and a fixed clock so tests can tell
// gateway-assigned values from locally generated ones.
type fakeGateway struct {
	mu     sync.Mutex
	nextID int64
	base   time.Time
	calls  []appendCall
	err    error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		nextID: 100,
		base:   time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func (g *fakeGateway) AppendMessage(_ context.Context, channelID, authorID int64, content string, attachment *Attachment) (Commit, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, appendCall{channelID, authorID, content, attachment})
	if g.err != nil {
		return Commit{}, g.err
	}
	g.nextID++
	return Commit{ID: g.nextID, CreatedAt: g.base.Add(time.Duration(g.nextID) * time.Second)}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

var errDiskFull = errors.New("disk full")

func newTestHub(t *testing.T) (*Hub, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	return NewHub(gw, nil), gw
}

func connect(t *testing.T, h *Hub, id Identity, queue int) *Conn {
	t.Helper()
	c := NewConn(id, queue)
	if err := h.Connect(c); err != nil {
		t.Fatalf("connect %s: %v", id.Name, err)
	}
	t.Cleanup(func() { h.Disconnect(c) })
	return c
}

func join(t *testing.T, h *Hub, c *Conn, channelID int64) {
	t.Helper()
	if err := h.Handle(context.Background(), c, &Command{Kind: CommandJoinChannel, ChannelID: channelID}); err != nil {
		t.Fatalf("join %d: %v", channelID, err)
	}
}

// drain returns whatever is queued on c without waiting.
func drain(c *Conn) []*Event {
	var out []*Event
	for {
		select {
		case ev := <-c.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func ofKind(events []*Event, kind EventKind) []*Event {
	var out []*Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func mustEvent(t *testing.T, c *Conn, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-c.Events():
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}
