package engine

import (
	"testing"

	utils "github.com/minaorangina/flightchess/internal"
	"github.com/minaorangina/flightchess/protocol"
	"github.com/stretchr/testify/assert"
)

func TestConnHub(t *testing.T) {
	msg := protocol.OutboundMessage{Type: protocol.GameOver, Data: protocol.GameOverData{WinnerID: "p1"}}

	t.Run("broadcasts to every connection", func(t *testing.T) {
		h := NewConnHub(nil)
		a, b := &spyConn{}, &spyConn{}
		h.Connect("a", a)
		h.Connect("b", b)

		h.Broadcast(msg)

		for _, c := range []*spyConn{a, b} {
			utils.AssertDeepEqual(t, c.types(t), []protocol.MsgType{protocol.GameOver})
		}
	})

	t.Run("sends to one player", func(t *testing.T) {
		h := NewConnHub(nil)
		a, b := &spyConn{}, &spyConn{}
		h.Connect("a", a)
		h.Connect("b", b)

		utils.AssertNoError(t, h.Send("b", msg))
		assert.Empty(t, a.types(t))
		utils.AssertEqual(t, len(b.types(t)), 1)

		assert.ErrorIs(t, h.Send("c", msg), ErrNotConnected)
	})

	t.Run("a new connection replaces the old one", func(t *testing.T) {
		h := NewConnHub(nil)
		old, fresh := &spyConn{}, &spyConn{}
		h.Connect("a", old)
		h.Connect("a", fresh)

		utils.AssertTrue(t, old.isClosed())
		assert.False(t, fresh.isClosed())

		h.Disconnect("a", old)
		utils.AssertTrue(t, h.Connected("a"))

		h.Disconnect("a", fresh)
		assert.False(t, h.Connected("a"))
		utils.AssertTrue(t, fresh.isClosed())
	})

	t.Run("release forgets without closing", func(t *testing.T) {
		h := NewConnHub(nil)
		a := &spyConn{}
		h.Connect("a", a)

		h.Release("a")
		assert.False(t, h.Connected("a"))
		assert.False(t, a.isClosed())

		h.Broadcast(msg)
		assert.Empty(t, a.types(t))
	})

	t.Run("nop broadcaster accepts everything", func(t *testing.T) {
		var b Broadcaster = NopBroadcaster{}
		b.Connect("a", &spyConn{})
		b.Release("a")
		b.Broadcast(msg)
		utils.AssertNoError(t, b.Send("a", msg))
	})
}
