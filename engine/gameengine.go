package engine

import (
	"errors"
	"sync"

	"github.com/minaorangina/flightchess/game"
	"github.com/minaorangina/flightchess/protocol"
	"go.uber.org/zap"
)

var (
	ErrNilGame    = errors.New("game engine needs a game")
	ErrMissingID  = errors.New("game engine needs an id")
	ErrRoomClosed = errors.New("room is closed")
)

// GameEngineOpts configures a GameEngine
type GameEngineOpts struct {
	GameID      string
	Game        *game.Game
	Broadcaster Broadcaster
	Logger      *zap.Logger
}

// GameEngine runs one room. Every action holds the room lock from
// validation through to the last broadcast, so players always see
// messages in the order the actions were applied.
type GameEngine struct {
	id     string
	mu     sync.Mutex
	game   *game.Game
	hub    Broadcaster
	log    *zap.Logger
	closed bool
}

// NewGameEngine constructs a GameEngine
func NewGameEngine(opts GameEngineOpts) (*GameEngine, error) {
	if opts.Game == nil {
		return nil, ErrNilGame
	}
	if opts.GameID == "" {
		return nil, ErrMissingID
	}
	if opts.Broadcaster == nil {
		opts.Broadcaster = NopBroadcaster{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &GameEngine{
		id:   opts.GameID,
		game: opts.Game,
		hub:  opts.Broadcaster,
		log:  opts.Logger.With(zap.String("game_id", opts.GameID)),
	}, nil
}

func (ge *GameEngine) ID() string {
	return ge.id
}

// Status reports where the room is in its lifecycle
func (ge *GameEngine) Status() game.Status {
	ge.mu.Lock()
	defer ge.mu.Unlock()
	return ge.game.Status
}

func (ge *GameEngine) NumPlayers() int {
	ge.mu.Lock()
	defer ge.mu.Unlock()
	return len(ge.game.Players)
}

// HasPlayer reports whether the player is seated in this room
func (ge *GameEngine) HasPlayer(playerID string) bool {
	ge.mu.Lock()
	defer ge.mu.Unlock()
	_, _, ok := ge.game.Find(playerID)
	return ok
}

// Snapshot returns the room as the viewer is allowed to see it
func (ge *GameEngine) Snapshot(viewerID string) protocol.GameStateData {
	ge.mu.Lock()
	defer ge.mu.Unlock()
	return ge.game.Snapshot(ge.id, viewerID)
}

// Join seats a player. The room starts as soon as the last seat is taken.
func (ge *GameEngine) Join(playerID, name string) (protocol.GameStateData, error) {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	if ge.closed {
		return protocol.GameStateData{}, ErrRoomClosed
	}

	p, err := ge.game.AddPlayer(playerID, name)
	if err != nil {
		ge.log.Debug("join rejected", zap.String("name", name), zap.Error(err))
		return protocol.GameStateData{}, err
	}

	ge.log.Info("player joined",
		zap.String("player_id", p.ID),
		zap.String("name", p.Name),
		zap.String("color", p.Color))
	ge.hub.Broadcast(game.JoinedMessage(p))

	if ge.game.Full() {
		ge.start()
	}
	ge.broadcastState()

	return ge.game.Snapshot(ge.id, playerID), nil
}

// MarkReady flags a player as ready. The room starts once everyone is.
func (ge *GameEngine) MarkReady(playerID string) (protocol.GameStateData, error) {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	if ge.game.Status != game.Waiting {
		return protocol.GameStateData{}, game.ErrGameStarted
	}
	if err := ge.game.SetReady(playerID); err != nil {
		return protocol.GameStateData{}, err
	}

	ge.log.Info("player ready", zap.String("player_id", playerID))

	if ge.game.AllReady() {
		ge.start()
	}
	ge.broadcastState()

	return ge.game.Snapshot(ge.id, playerID), nil
}

func (ge *GameEngine) RollDice(playerID string) (game.RollResult, error) {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	res, err := ge.game.RollDice(playerID)
	if err != nil {
		ge.rejected(protocol.DiceRolled, playerID, err)
		return res, err
	}

	ge.log.Debug("dice rolled",
		zap.String("player_id", playerID),
		zap.Int("value", res.Value),
		zap.Bool("doubled", res.Doubled))
	ge.hub.Broadcast(res.Message())
	ge.broadcastState()

	return res, nil
}

func (ge *GameEngine) MovePiece(playerID string) (game.MoveResult, error) {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	res, err := ge.game.MovePiece(playerID)
	if err != nil {
		ge.rejected(protocol.PieceMoved, playerID, err)
		return res, err
	}

	if msg, ok := res.Message(); ok {
		ge.hub.Broadcast(msg)
	}
	ge.log.Debug("turn resolved",
		zap.String("player_id", playerID),
		zap.Bool("moved", res.Moved),
		zap.Int("to", res.ToPos),
		zap.Int("captures", len(res.Captures)),
		zap.Strings("skipped", res.Skipped))
	ge.broadcastState()

	return res, nil
}

func (ge *GameEngine) UseCard(playerID string, cardID int, targetID string) (game.UseResult, error) {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	res, err := ge.game.UseCard(playerID, cardID, targetID)
	if err != nil {
		ge.rejected(protocol.PropUsed, playerID, err)
		return res, err
	}

	ge.log.Debug("card used",
		zap.String("player_id", playerID),
		zap.String("card", res.Card.String()),
		zap.String("target_id", targetID))
	ge.hub.Broadcast(res.Message())
	ge.broadcastState()

	return res, nil
}

// Leave removes a player from the room and reports whether it is now empty.
// An emptied room is closed in the same step, so nobody can join it while
// it is being torn down.
//
// The leaver hears playerLeft like everyone else, then their connection is
// released from the room but left open for the caller to answer and close.
func (ge *GameEngine) Leave(playerID string) (bool, error) {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	p, err := ge.game.RemovePlayer(playerID)
	if err != nil {
		return false, err
	}

	ge.log.Info("player left", zap.String("player_id", p.ID))
	ge.hub.Broadcast(game.LeftMessage(p))
	ge.hub.Release(playerID)
	ge.broadcastState()

	if len(ge.game.Players) == 0 {
		ge.closed = true
	}
	return ge.closed, nil
}

// Connect attaches a live connection for a seated player and sends them
// the current state straight away.
func (ge *GameEngine) Connect(playerID string, c Conn) error {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	if _, _, ok := ge.game.Find(playerID); !ok {
		return game.ErrUnknownPlayer
	}

	ge.hub.Connect(playerID, c)
	ge.log.Debug("player connected", zap.String("player_id", playerID))

	return ge.hub.Send(playerID, ge.game.StateMessage(ge.id, playerID))
}

// Disconnect detaches a connection without removing the player
func (ge *GameEngine) Disconnect(playerID string, c Conn) {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	ge.hub.Disconnect(playerID, c)
	ge.log.Debug("player disconnected", zap.String("player_id", playerID))
}

// Reply sends a message to one player only
func (ge *GameEngine) Reply(playerID string, msg protocol.OutboundMessage) error {
	return ge.hub.Send(playerID, msg)
}

// Close drops every connection
func (ge *GameEngine) Close() {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	for _, p := range ge.game.Players {
		ge.hub.Disconnect(p.ID, nil)
	}
}

func (ge *GameEngine) start() {
	if err := ge.game.Start(); err != nil {
		ge.log.Warn("could not start game", zap.Error(err))
		return
	}

	ge.log.Info("game started", zap.Int("players", len(ge.game.Players)))
	ge.hub.Broadcast(ge.game.StartMessage(ge.id))
}

// broadcastState sends each player their own view of the room
func (ge *GameEngine) broadcastState() {
	for _, p := range ge.game.Players {
		err := ge.hub.Send(p.ID, ge.game.StateMessage(ge.id, p.ID))
		if err != nil && !errors.Is(err, ErrNotConnected) {
			ge.log.Warn("could not send state", zap.String("player_id", p.ID), zap.Error(err))
		}
	}
}

func (ge *GameEngine) rejected(t protocol.MsgType, playerID string, err error) {
	ge.log.Debug("action rejected",
		zap.String("type", string(t)),
		zap.String("player_id", playerID),
		zap.Error(err))
}
