package core

import (
	"sort"
	"sync"
)

type presenceEntry struct {
	identity Identity
	count    int
}

// Presence counts live connections per identity so that one of several tabs
// closing does not mark the user offline.
type Presence struct {
	mu      sync.Mutex
	entries map[int64]*presenceEntry
}

// NewPresence constructs an empty tracker.
func NewPresence() *Presence {
	return &Presence{entries: make(map[int64]*presenceEntry)}
}

// Opened records a new connection. Returns true if it is the identity's first.
func (p *Presence) Opened(id Identity) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[id.ID]; ok {
		e.count++
		return false
	}
	p.entries[id.ID] = &presenceEntry{identity: id, count: 1}
	return true
}

// Closed records a closed connection. Returns true if the identity just went offline.
// Closing an identity that is not present is a no-op.
func (p *Presence) Closed(id Identity) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[id.ID]
	if !ok {
		return false
	}
	e.count--
	if e.count > 0 {
		return false
	}
	delete(p.entries, id.ID)
	return true
}

// Count returns the number of live connections for an identity id.
func (p *Presence) Count(id int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[id]; ok {
		return e.count
	}
	return 0
}

// Online reports whether the identity has at least one live connection.
func (p *Presence) Online(id int64) bool {
	return p.Count(id) > 0
}

// Snapshot returns the present identities sorted by id.
func (p *Presence) Snapshot() []Identity {
	p.mu.Lock()
	users := make([]Identity, 0, len(p.entries))
	for _, e := range p.entries {
		users = append(users, e.identity)
	}
	p.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// Len returns the number of online identities.
func (p *Presence) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
