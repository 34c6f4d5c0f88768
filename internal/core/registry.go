package core

import "sync"

// audience is the set of connections currently viewing one channel.
type audience map[*Conn]struct{}

type registration struct {
	channel int64
	joined  bool
}

// Registry owns the set of live connections and their channel selection.
// A channel index is kept alongside so fan-out does not scan every connection.
type Registry struct {
	mu       sync.RWMutex
	conns    map[*Conn]*registration
	channels map[int64]audience
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[*Conn]*registration),
		channels: make(map[int64]audience),
	}
}

// Register inserts the connection with no channel selected.
// A connection can be registered once.
func (r *Registry) Register(c *Conn) error {
	if c == nil || c.Identity.IsZero() {
		return ErrUnauthenticated
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[c]; exists {
		return ErrAlreadyRegistered
	}
	r.conns[c] = &registration{}
	return nil
}

// SetChannel moves the connection into channelID's audience.
// Returns false if the connection is not registered.
func (r *Registry) SetChannel(c *Conn, channelID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.conns[c]
	if !ok {
		return false
	}
	if reg.joined && reg.channel == channelID {
		return true
	}
	if reg.joined {
		r.removeFromChannel(c, reg.channel)
	}

	members, ok := r.channels[channelID]
	if !ok {
		members = make(audience)
		r.channels[channelID] = members
	}
	members[c] = struct{}{}
	reg.channel = channelID
	reg.joined = true
	return true
}

// Channel returns the connection's current selection.
func (r *Registry) Channel(c *Conn) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.conns[c]
	if !ok || !reg.joined {
		return 0, false
	}
	return reg.channel, true
}

// Unregister removes the connection. Returns true only for the call that removed it.
func (r *Registry) Unregister(c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.conns[c]
	if !ok {
		return false
	}
	if reg.joined {
		r.removeFromChannel(c, reg.channel)
	}
	delete(r.conns, c)
	return true
}

// ForEachInChannel calls fn for every connection viewing channelID.
// fn runs under the read lock and must not call back into the registry's writers.
func (r *Registry) ForEachInChannel(channelID int64, fn func(*Conn)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for c := range r.channels[channelID] {
		fn(c)
	}
}

// ForEach calls fn for every registered connection, under the read lock.
func (r *Registry) ForEach(fn func(*Conn)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for c := range r.conns {
		fn(c)
	}
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// ChannelLen returns the size of a channel's audience.
func (r *Registry) ChannelLen(channelID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channelID])
}

func (r *Registry) removeFromChannel(c *Conn, channelID int64) {
	members, ok := r.channels[channelID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.channels, channelID)
	}
}
