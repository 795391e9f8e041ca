package engine

import (
	"errors"
	"sync"

	"github.com/minaorangina/flightchess/protocol"
	"go.uber.org/zap"
)

var ErrNotConnected = errors.New("player is not connected")

// Broadcaster delivers outbound messages to the players of one room.
// ConnHub does it over real connections; NopBroadcaster drops everything,
// for rooms driven directly through the engine API.
type Broadcaster interface {
	Connect(playerID string, c Conn)
	// Disconnect forgets the player's connection. A nil Conn drops whatever
	// is registered; otherwise only that exact connection is dropped.
	Disconnect(playerID string, c Conn)
	// Release forgets the player's connection without closing it
	Release(playerID string)
	Send(playerID string, msg protocol.OutboundMessage) error
	Broadcast(msg protocol.OutboundMessage)
}

// ConnHub keeps at most one connection per player
type ConnHub struct {
	mu    sync.RWMutex
	conns map[string]Conn
	log   *zap.Logger
}

func NewConnHub(log *zap.Logger) *ConnHub {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConnHub{conns: map[string]Conn{}, log: log}
}

// Connect registers c for the player, closing any connection it replaces
func (h *ConnHub) Connect(playerID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.conns[playerID]; ok && old != c {
		old.Close()
	}
	h.conns[playerID] = c
}

func (h *ConnHub) Disconnect(playerID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.conns[playerID]
	if !ok || (c != nil && current != c) {
		return
	}
	current.Close()
	delete(h.conns, playerID)
}

func (h *ConnHub) Release(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, playerID)
}

// Connected reports whether the player has a live connection
func (h *ConnHub) Connected(playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.conns[playerID]
	return ok
}

func (h *ConnHub) Send(playerID string, msg protocol.OutboundMessage) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	c, ok := h.conns[playerID]
	h.mu.RUnlock()
	if !ok {
		return ErrNotConnected
	}

	return c.Send(data)
}

func (h *ConnHub) Broadcast(msg protocol.OutboundMessage) {
	data, err := protocol.Encode(msg)
	if err != nil {
		h.log.Error("could not encode broadcast", zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.conns {
		if err := c.Send(data); err != nil {
			h.log.Warn("broadcast failed",
				zap.String("player_id", id),
				zap.String("type", string(msg.Type)),
				zap.Error(err))
		}
	}
}

// NopBroadcaster is a Broadcaster with nobody listening
type NopBroadcaster struct{}

func (NopBroadcaster) Connect(string, Conn) {}

func (NopBroadcaster) Disconnect(string, Conn) {}

func (NopBroadcaster) Release(string) {}

func (NopBroadcaster) Send(string, protocol.OutboundMessage) error { return nil }

func (NopBroadcaster) Broadcast(protocol.OutboundMessage) {}
