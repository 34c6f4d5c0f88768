package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func members(r *Registry, channelID int64) map[*Conn]bool {
	out := make(map[*Conn]bool)
	r.ForEachInChannel(channelID, func(c *Conn) { out[c] = true })
	return out
}

func TestRegistry_RegisterRejectsUnresolvedIdentity(t *testing.T) {
	r := NewRegistry()

	require.ErrorIs(t, r.Register(NewConn(Identity{}, 1)), ErrUnauthenticated)
	require.ErrorIs(t, r.Register(nil), ErrUnauthenticated)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RegisterStartsWithoutChannel(t *testing.T) {
	r := NewRegistry()
	c := NewConn(alice, 1)

	require.NoError(t, r.Register(c))
	_, ok := r.Channel(c)
	assert.False(t, ok)
	assert.Empty(t, members(r, 1))
}

func TestRegistry_RegisterRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	c := NewConn(alice, 1)
	require.NoError(t, r.Register(c))
	require.True(t, r.SetChannel(c, 3))

	require.ErrorIs(t, r.Register(c), ErrAlreadyRegistered)
	assert.Equal(t, 1, r.Len())
	ch, ok := r.Channel(c)
	require.True(t, ok, "duplicate register keeps the selected channel")
	assert.Equal(t, int64(3), ch)
}

func TestRegistry_SetChannelSwitchesAudience(t *testing.T) {
	r := NewRegistry()
	c := NewConn(alice, 1)
	require.NoError(t, r.Register(c))

	require.True(t, r.SetChannel(c, 1))
	require.True(t, r.SetChannel(c, 1), "same channel twice is idempotent")
	assert.Equal(t, 1, r.ChannelLen(1))

	require.True(t, r.SetChannel(c, 2))
	assert.Empty(t, members(r, 1))
	assert.True(t, members(r, 2)[c])

	ch, ok := r.Channel(c)
	require.True(t, ok)
	assert.Equal(t, int64(2), ch)
}

func TestRegistry_SetChannelOnUnknownConn(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.SetChannel(NewConn(alice, 1), 1))
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := NewConn(alice, 1)
	require.NoError(t, r.Register(c))
	r.SetChannel(c, 7)

	assert.True(t, r.Unregister(c))
	assert.False(t, r.Unregister(c))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.ChannelLen(7))
}

func TestRegistry_ForEachInChannelFiltersBySelection(t *testing.T) {
	r := NewRegistry()
	a := NewConn(alice, 1)
	b := NewConn(bob, 1)
	idle := NewConn(carol, 1)
	for _, c := range []*Conn{a, b, idle} {
		require.NoError(t, r.Register(c))
	}
	r.SetChannel(a, 1)
	r.SetChannel(b, 2)

	assert.Equal(t, map[*Conn]bool{a: true}, members(r, 1))
	assert.Equal(t, map[*Conn]bool{b: true}, members(r, 2))
	assert.Empty(t, members(r, 99), "unknown channel has no audience")

	all := 0
	r.ForEach(func(*Conn) { all++ })
	assert.Equal(t, 3, all)
}
