package sse

import (
	"encoding/json"
	"testing"

	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	a := hub.Register("a")
	b := hub.Register("b")
	assert.Equal(t, 2, hub.ClientCount())

	hub.Broadcast([]byte("hello"))
	assert.Equal(t, "hello", string(<-a.Events))
	assert.Equal(t, "hello", string(<-b.Events))

	hub.Unregister("a")
	_, ok := <-a.Events
	assert.False(t, ok)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister("a")
}

func TestHub_SlowClientDropsEvents(t *testing.T) {
	hub := NewHub()
	c := hub.Register("slow")

	for i := 0; i < cap(c.Events)+5; i++ {
		hub.Broadcast([]byte("x"))
	}
	assert.Len(t, c.Events, cap(c.Events))
}

func TestSnapshotNotifier(t *testing.T) {
	hub := NewHub()
	notifier := NewSnapshotNotifier(hub)

	notifier.PublishSnapshot(dashboard.Snapshot{Sequence: 1})

	c := hub.Register("viewer")
	notifier.PublishSnapshot(dashboard.Snapshot{Sequence: 7})

	require.Len(t, c.Events, 1)
	var got dashboard.Snapshot
	require.NoError(t, json.Unmarshal(<-c.Events, &got))
	assert.Equal(t, uint64(7), got.Sequence)
}
