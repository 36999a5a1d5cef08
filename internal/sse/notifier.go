package sse

import (
	"encoding/json"

	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
	"github.com/rs/zerolog/log"
)

// SnapshotNotifier pushes installed dashboard snapshots to the hub.
type SnapshotNotifier struct {
	hub *Hub
}

// NewSnapshotNotifier creates a notifier backed by the given Hub.
func NewSnapshotNotifier(hub *Hub) *SnapshotNotifier {
	return &SnapshotNotifier{hub: hub}
}

func (n *SnapshotNotifier) PublishSnapshot(snap dashboard.Snapshot) {
	if n.hub.ClientCount() == 0 {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Uint64("sequence", snap.Sequence).Msg("failed to marshal dashboard snapshot")
		return
	}
	n.hub.Broadcast(data)
}
