package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/minaorangina/flightchess/game"
	"github.com/minaorangina/flightchess/protocol"
	"github.com/stretchr/testify/require"
)

// spyConn records everything sent to it
type spyConn struct {
	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func (c *spyConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	c.sent = append(c.sent, data)
	return nil
}

func (c *spyConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *spyConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *spyConn) envelopes(t *testing.T) []protocol.Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	out := []protocol.Envelope{}
	for _, data := range c.sent {
		env, err := protocol.DecodeEnvelope(data)
		require.NoError(t, err)
		out = append(out, env)
	}
	return out
}

func (c *spyConn) types(t *testing.T) []protocol.MsgType {
	t.Helper()
	out := []protocol.MsgType{}
	for _, env := range c.envelopes(t) {
		out = append(out, env.Type)
	}
	return out
}

func (c *spyConn) lastState(t *testing.T) protocol.GameStateData {
	t.Helper()
	envs := c.envelopes(t)
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Type == protocol.GameState {
			var s protocol.GameStateData
			require.NoError(t, json.Unmarshal(envs[i].Data, &s))
			return s
		}
	}
	t.Fatal("no gameState received")
	return protocol.GameStateData{}
}

func (c *spyConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = nil
}

func newTestEngine(t *testing.T, maxPlayers int, dice game.Dice, hub Broadcaster) *GameEngine {
	t.Helper()

	g, err := game.New(game.Opts{
		MaxPlayers: maxPlayers,
		Dice:       dice,
		Props:      game.NewCardSystem(rand.New(rand.NewSource(1))),
	})
	require.NoError(t, err)

	ge, err := NewGameEngine(GameEngineOpts{GameID: "ABCDEF", Game: g, Broadcaster: hub})
	require.NoError(t, err)

	return ge
}

// joinConnected seats n players named p1..pn, each with a spy connection
func joinConnected(t *testing.T, ge *GameEngine, n int) []*spyConn {
	t.Helper()

	conns := []*spyConn{}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		_, err := ge.Join(id, fmt.Sprintf("Player %d", i))
		require.NoError(t, err)

		c := &spyConn{}
		require.NoError(t, ge.Connect(id, c))
		conns = append(conns, c)
	}
	return conns
}
