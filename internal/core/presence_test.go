package core

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresence_Transitions(t *testing.T) {
	p := NewPresence()

	require.True(t, p.Opened(alice), "first connection brings alice online")
	require.False(t, p.Opened(alice), "second tab is not a new edge")
	assert.Equal(t, 2, p.Count(alice.ID))

	require.False(t, p.Closed(alice), "one tab left")
	assert.True(t, p.Online(alice.ID))

	require.True(t, p.Closed(alice), "last tab closed")
	assert.False(t, p.Online(alice.ID))
	assert.Equal(t, 0, p.Len())
}

func TestPresence_CloseAbsentIsNoop(t *testing.T) {
	p := NewPresence()

	assert.False(t, p.Closed(bob))
	assert.Equal(t, 0, p.Count(bob.ID))

	p.Opened(bob)
	p.Closed(bob)
	assert.False(t, p.Closed(bob))
	assert.Equal(t, 0, p.Count(bob.ID), "count never goes negative")
}

func TestPresence_RandomSequencesTrackNetCount(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		p := NewPresence()
		net := 0
		for step := 0; step < 200; step++ {
			if rng.Intn(2) == 0 {
				edge := p.Opened(alice)
				assert.Equal(t, net == 0, edge, "round %d step %d: open edge", round, step)
				net++
			} else {
				edge := p.Closed(alice)
				assert.Equal(t, net == 1, edge, "round %d step %d: close edge", round, step)
				if net > 0 {
					net--
				}
			}
			require.Equal(t, net, p.Count(alice.ID))
			require.Equal(t, net > 0, p.Online(alice.ID))
		}
	}
}

func TestPresence_SnapshotSortedByID(t *testing.T) {
	p := NewPresence()
	p.Opened(carol)
	p.Opened(alice)
	p.Opened(bob)
	p.Opened(alice)

	assert.Equal(t, []Identity{alice, bob, carol}, p.Snapshot())
}

func TestPresence_ConcurrentOpenClose(t *testing.T) {
	p := NewPresence()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Opened(alice)
				p.Closed(alice)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, p.Count(alice.ID))
	assert.Empty(t, p.Snapshot())
}
