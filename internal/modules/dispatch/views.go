package dispatch

import (
	"github.com/eskrenkovic/ludo-server/internal/modules/chat"
	"github.com/eskrenkovic/ludo-server/internal/modules/lobby"
)

type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
	Games       int `json:"games"`
	InboundLen  int `json:"inbound_queue_length"`
	OutboundLen int `json:"outbound_queue_length"`
}

// The views below read game state under the dispatcher lock so they never
// observe a half-applied request.

func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Stats{
		Connections: d.registry.Count(),
		Rooms:       len(d.rooms.Snapshot()),
		Games:       d.games.Count(),
		InboundLen:  d.inbound.Len(),
		OutboundLen: d.outbound.Len(),
	}
}

func (d *Dispatcher) Rooms() []chat.RoomInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.rooms.Snapshot()
}

func (d *Dispatcher) Game(gameID string) (lobby.GameInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.games.Info(gameID)
}

func (d *Dispatcher) Games() []lobby.GameInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.games.Snapshot()
}
