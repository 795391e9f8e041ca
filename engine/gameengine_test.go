package engine

import (
	"sync"
	"testing"

	"github.com/minaorangina/flightchess/game"
	utils "github.com/minaorangina/flightchess/internal"
	"github.com/minaorangina/flightchess/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameEngineConstructor(t *testing.T) {
	t.Run("needs a game", func(t *testing.T) {
		_, err := NewGameEngine(GameEngineOpts{GameID: "ABCDEF"})
		assert.ErrorIs(t, err, ErrNilGame)
	})

	t.Run("needs an id", func(t *testing.T) {
		g, err := game.New(game.Opts{})
		require.NoError(t, err)

		_, err = NewGameEngine(GameEngineOpts{Game: g})
		assert.ErrorIs(t, err, ErrMissingID)
	})

	t.Run("has an ID", func(t *testing.T) {
		ge := newTestEngine(t, 4, nil, nil)
		utils.AssertEqual(t, ge.ID(), "ABCDEF")
		utils.AssertEqual(t, ge.Status(), game.Waiting)
	})
}

func TestGameEngineJoin(t *testing.T) {
	t.Run("broadcasts the joiner then everyone's state", func(t *testing.T) {
		ge := newTestEngine(t, 4, nil, NewConnHub(nil))
		conns := joinConnected(t, ge, 1)
		conns[0].reset()

		snap, err := ge.Join("p2", "Player 2")
		require.NoError(t, err)
		utils.AssertEqual(t, len(snap.Players), 2)

		utils.AssertDeepEqual(t, conns[0].types(t), []protocol.MsgType{protocol.PlayerJoined, protocol.GameState})

		var joined protocol.PlayerJoinedData
		require.NoError(t, conns[0].envelopes(t)[0].Decode(&joined))
		utils.AssertEqual(t, joined, protocol.PlayerJoinedData{PlayerID: "p2", PlayerName: "Player 2"})
	})

	t.Run("the joiner's snapshot shows only their own hand", func(t *testing.T) {
		ge := newTestEngine(t, 4, nil, nil)
		joinConnected(t, ge, 1)

		snap, err := ge.Join("p2", "Player 2")
		require.NoError(t, err)

		s, ok := snap.Find("p2")
		require.True(t, ok)
		utils.AssertEqual(t, len(s.Hand), 2)

		other, ok := snap.Find("p1")
		require.True(t, ok)
		assert.Empty(t, other.Hand)
		utils.AssertEqual(t, other.HandSize, 2)
	})

	t.Run("the last seat starts the game", func(t *testing.T) {
		ge := newTestEngine(t, 2, nil, NewConnHub(nil))
		conns := joinConnected(t, ge, 1)
		conns[0].reset()

		snap, err := ge.Join("p2", "Player 2")
		require.NoError(t, err)

		utils.AssertEqual(t, snap.Status, string(game.Playing))
		utils.AssertEqual(t, snap.CurrentPlayerIndex, 0)
		utils.AssertDeepEqual(t, conns[0].types(t),
			[]protocol.MsgType{protocol.PlayerJoined, protocol.GameStart, protocol.GameState})
	})

	t.Run("rejections leave the room alone", func(t *testing.T) {
		ge := newTestEngine(t, 2, nil, NewConnHub(nil))
		conns := joinConnected(t, ge, 1)
		conns[0].reset()

		_, err := ge.Join("p9", "Player 1")
		assert.ErrorIs(t, err, game.ErrDuplicateName)
		assert.Empty(t, conns[0].types(t))
		utils.AssertEqual(t, ge.NumPlayers(), 1)
	})
}

func TestGameEngineMarkReady(t *testing.T) {
	ge := newTestEngine(t, 4, nil, NewConnHub(nil))
	conns := joinConnected(t, ge, 2)

	snap, err := ge.MarkReady("p1")
	require.NoError(t, err)
	utils.AssertEqual(t, snap.Status, string(game.Waiting))

	conns[1].reset()
	snap, err = ge.MarkReady("p2")
	require.NoError(t, err)
	utils.AssertEqual(t, snap.Status, string(game.Playing))
	utils.AssertDeepEqual(t, conns[1].types(t), []protocol.MsgType{protocol.GameStart, protocol.GameState})

	_, err = ge.MarkReady("p1")
	assert.ErrorIs(t, err, game.ErrGameStarted)

	_, err = newTestEngine(t, 4, nil, nil).MarkReady("nobody")
	assert.ErrorIs(t, err, game.ErrUnknownPlayer)
}

func TestGameEngineTurns(t *testing.T) {
	t.Run("a roll is broadcast before the new state", func(t *testing.T) {
		ge := newTestEngine(t, 2, game.NewFixedDice(4), NewConnHub(nil))
		conns := joinConnected(t, ge, 2)
		conns[0].reset()
		conns[1].reset()

		res, err := ge.RollDice("p1")
		require.NoError(t, err)
		utils.AssertEqual(t, res.Value, 4)

		for _, c := range conns {
			utils.AssertDeepEqual(t, c.types(t), []protocol.MsgType{protocol.DiceRolled, protocol.GameState})
			utils.AssertEqual(t, c.lastState(t).DiceValue, 4)
		}
	})

	t.Run("out of turn actions change nothing and broadcast nothing", func(t *testing.T) {
		ge := newTestEngine(t, 2, game.NewFixedDice(4), NewConnHub(nil))
		conns := joinConnected(t, ge, 2)
		conns[0].reset()
		before := ge.Snapshot("")

		_, err := ge.RollDice("p2")
		assert.ErrorIs(t, err, game.ErrNotYourTurn)
		_, err = ge.MovePiece("p2")
		assert.ErrorIs(t, err, game.ErrNotYourTurn)

		utils.AssertDeepEqual(t, ge.Snapshot(""), before)
		assert.Empty(t, conns[0].types(t))
	})

	t.Run("a forfeited move only sends the new state", func(t *testing.T) {
		ge := newTestEngine(t, 2, game.NewFixedDice(4), NewConnHub(nil))
		conns := joinConnected(t, ge, 2)

		_, err := ge.RollDice("p1")
		require.NoError(t, err)
		conns[1].reset()

		res, err := ge.MovePiece("p1")
		require.NoError(t, err)
		assert.False(t, res.Moved)

		utils.AssertDeepEqual(t, conns[1].types(t), []protocol.MsgType{protocol.GameState})
		utils.AssertEqual(t, conns[1].lastState(t).CurrentPlayerID, "p2")
	})

	t.Run("a launch is broadcast as a move", func(t *testing.T) {
		ge := newTestEngine(t, 2, game.NewFixedDice(6), NewConnHub(nil))
		conns := joinConnected(t, ge, 2)

		_, err := ge.RollDice("p1")
		require.NoError(t, err)
		conns[1].reset()

		_, err = ge.MovePiece("p1")
		require.NoError(t, err)

		envs := conns[1].envelopes(t)
		require.Len(t, envs, 2)
		var moved protocol.PieceMovedData
		require.NoError(t, envs[0].Decode(&moved))
		utils.AssertEqual(t, moved, protocol.PieceMovedData{PlayerID: "p1", PieceIndex: 0, FromPos: game.Home, ToPos: 0})
		utils.AssertEqual(t, conns[1].lastState(t).CurrentPlayerID, "p1")
	})

	t.Run("card use is broadcast before the new state", func(t *testing.T) {
		ge := newTestEngine(t, 2, game.NewFixedDice(4), NewConnHub(nil))
		conns := joinConnected(t, ge, 2)
		hand := ge.Snapshot("p1").Players[0].Hand
		require.NotEmpty(t, hand)
		conns[1].reset()

		res, err := ge.UseCard("p1", hand[0].ID, "p2")
		require.NoError(t, err)
		utils.AssertEqual(t, res.Card, hand[0])

		envs := conns[1].envelopes(t)
		require.Len(t, envs, 2)
		var used protocol.PropUsedData
		require.NoError(t, envs[0].Decode(&used))
		utils.AssertEqual(t, used.PropID, hand[0].ID)
		utils.AssertEqual(t, used.TargetPlayerID, "p2")
	})

	t.Run("cards that are not held are rejected", func(t *testing.T) {
		ge := newTestEngine(t, 2, game.NewFixedDice(4), nil)
		joinConnected(t, ge, 2)

		_, err := ge.UseCard("p1", 999, "")
		assert.ErrorIs(t, err, game.ErrCardNotInHand)
	})
}

func TestGameEngineLeave(t *testing.T) {
	t.Run("tells everyone and releases the leaver's connection", func(t *testing.T) {
		ge := newTestEngine(t, 2, game.NewFixedDice(4), NewConnHub(nil))
		conns := joinConnected(t, ge, 2)
		conns[0].reset()
		conns[1].reset()

		empty, err := ge.Leave("p2")
		require.NoError(t, err)
		assert.False(t, empty)

		utils.AssertDeepEqual(t, conns[0].types(t), []protocol.MsgType{protocol.PlayerLeft, protocol.GameState})
		utils.AssertEqual(t, conns[0].lastState(t).CurrentPlayerIndex, 0)

		// left open so the leave can still be answered
		assert.False(t, conns[1].isClosed())
		utils.AssertDeepEqual(t, conns[1].types(t), []protocol.MsgType{protocol.PlayerLeft})

		_, err = ge.RollDice("p1")
		require.NoError(t, err)
		utils.AssertEqual(t, len(conns[1].types(t)), 1)
	})

	t.Run("the current player leaving passes the turn on", func(t *testing.T) {
		ge := newTestEngine(t, 3, game.NewFixedDice(4), nil)
		joinConnected(t, ge, 3)

		_, err := ge.Leave("p1")
		require.NoError(t, err)

		snap := ge.Snapshot("")
		utils.AssertEqual(t, snap.CurrentPlayerID, "p2")
		utils.AssertEqual(t, snap.CurrentPlayerIndex, 0)
	})

	t.Run("reports when the room is empty", func(t *testing.T) {
		ge := newTestEngine(t, 2, nil, nil)
		joinConnected(t, ge, 1)

		empty, err := ge.Leave("p1")
		require.NoError(t, err)
		utils.AssertTrue(t, empty)

		_, err = ge.Leave("p1")
		assert.ErrorIs(t, err, game.ErrUnknownPlayer)
	})

	t.Run("an emptied room takes no more players", func(t *testing.T) {
		ge := newTestEngine(t, 2, nil, nil)
		joinConnected(t, ge, 1)

		_, err := ge.Leave("p1")
		require.NoError(t, err)

		_, err = ge.Join("p2", "Bob")
		assert.ErrorIs(t, err, ErrRoomClosed)
		utils.AssertEqual(t, ge.NumPlayers(), 0)
	})
}

func TestGameEngineConnect(t *testing.T) {
	t.Run("sends the current state on connect", func(t *testing.T) {
		ge := newTestEngine(t, 4, nil, NewConnHub(nil))
		_, err := ge.Join("p1", "Ann")
		require.NoError(t, err)

		c := &spyConn{}
		require.NoError(t, ge.Connect("p1", c))
		utils.AssertDeepEqual(t, c.types(t), []protocol.MsgType{protocol.GameState})
		utils.AssertEqual(t, len(c.lastState(t).Players[0].Hand), 2)
	})

	t.Run("refuses strangers", func(t *testing.T) {
		ge := newTestEngine(t, 4, nil, NewConnHub(nil))
		err := ge.Connect("nobody", &spyConn{})
		assert.ErrorIs(t, err, game.ErrUnknownPlayer)
	})

	t.Run("a disconnected player stays seated", func(t *testing.T) {
		ge := newTestEngine(t, 4, nil, NewConnHub(nil))
		conns := joinConnected(t, ge, 1)

		ge.Disconnect("p1", conns[0])
		utils.AssertTrue(t, conns[0].isClosed())
		utils.AssertTrue(t, ge.HasPlayer("p1"))
	})
}

func TestGameEngineSerialisesActions(t *testing.T) {
	ge := newTestEngine(t, 4, game.NewRandomDice(nil), NewConnHub(nil))
	joinConnected(t, ge, 4)
	ids := []string{"p1", "p2", "p3", "p4"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				ge.RollDice(id)
				ge.MovePiece(id)
				snap := ge.Snapshot(id)
				if p, ok := snap.Find(id); ok && len(p.Hand) > 0 {
					ge.UseCard(id, p.Hand[0].ID, "")
				}
			}
		}(id)
	}
	wg.Wait()

	snap := ge.Snapshot("")
	require.Len(t, snap.Players, 4)
	assert.True(t, snap.CurrentPlayerIndex >= 0 && snap.CurrentPlayerIndex < 4)
	for _, p := range snap.Players {
		for _, pos := range p.Pieces {
			assert.True(t, pos >= game.Home && pos <= game.FinishLine)
		}
	}
}
