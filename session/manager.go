package session

import (
	"errors"

	"github.com/minaorangina/flightchess/deck"
	"github.com/minaorangina/flightchess/engine"
	"github.com/minaorangina/flightchess/game"
	"github.com/minaorangina/flightchess/protocol"
	"github.com/minaorangina/flightchess/store"
	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"
)

const maxIDAttempts = 5

var (
	ErrNoGameID    = errors.New("could not allocate a game id")
	ErrUnknownCard = errors.New("no such card")
)

// NewID constructs a player ID
func NewID() string {
	return uuid.NewV4().String()
}

// Opts configures a Manager. Zero values give a four seat room with cards,
// random dice and live connections.
type Opts struct {
	Store               store.GameStore
	Logger              *zap.Logger
	MaxPlayers          int
	PropsDisabled       bool
	LaunchAtStartOffset bool

	NewDice        func() game.Dice
	NewBroadcaster func() engine.Broadcaster
	NewPlayerID    func() string
}

// Manager owns every room. Each call looks the room up in the registry and
// runs the action on that room's engine, which does its own locking.
type Manager struct {
	store store.GameStore
	cards deck.Deck
	log   *zap.Logger
	opts  Opts
}

func NewManager(opts Opts) *Manager {
	if opts.Store == nil {
		opts.Store = store.NewInMemoryGameStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxPlayers == 0 {
		opts.MaxPlayers = game.MaxPlayers
	}
	if opts.NewDice == nil {
		opts.NewDice = func() game.Dice { return game.NewRandomDice(nil) }
	}
	if opts.NewBroadcaster == nil {
		log := opts.Logger
		opts.NewBroadcaster = func() engine.Broadcaster { return engine.NewConnHub(log) }
	}
	if opts.NewPlayerID == nil {
		opts.NewPlayerID = NewID
	}

	return &Manager{store: opts.Store, cards: deck.New(), log: opts.Logger, opts: opts}
}

// Store is the registry the manager keeps its rooms in
func (m *Manager) Store() store.GameStore {
	return m.store
}

// CreateRoom opens an empty room. Zero maxPlayers uses the configured default.
func (m *Manager) CreateRoom(maxPlayers int) (string, error) {
	if maxPlayers == 0 {
		maxPlayers = m.opts.MaxPlayers
	}

	var props game.PropSystem = game.NoProps{}
	if !m.opts.PropsDisabled {
		props = game.NewCardSystem(nil)
	}

	g, err := game.New(game.Opts{
		MaxPlayers:          maxPlayers,
		Dice:                m.opts.NewDice(),
		Props:               props,
		LaunchAtStartOffset: m.opts.LaunchAtStartOffset,
	})
	if err != nil {
		return "", err
	}

	for i := 0; i < maxIDAttempts; i++ {
		gameID := m.store.NewGameID()
		ge, err := engine.NewGameEngine(engine.GameEngineOpts{
			GameID:      gameID,
			Game:        g,
			Broadcaster: m.opts.NewBroadcaster(),
			Logger:      m.log,
		})
		if err != nil {
			return "", err
		}

		if err := m.store.AddGame(ge); err != nil {
			m.log.Debug("game id collision", zap.String("game_id", gameID))
			continue
		}

		m.log.Info("room created", zap.String("game_id", gameID), zap.Int("max_players", maxPlayers))
		return gameID, nil
	}

	return "", ErrNoGameID
}

// Join seats a new player under a fresh id
func (m *Manager) Join(gameID, name string) protocol.JoinResult {
	ge := m.store.FindGame(gameID)
	if ge == nil {
		return protocol.JoinResult{Message: store.ErrUnknownGameID.Error()}
	}

	playerID := m.opts.NewPlayerID()
	snap, err := ge.Join(playerID, name)
	if errors.Is(err, engine.ErrRoomClosed) {
		// emptied by a leave and about to be removed
		return protocol.JoinResult{Message: store.ErrUnknownGameID.Error()}
	}
	if err != nil {
		return protocol.JoinResult{Message: err.Error()}
	}

	return protocol.JoinResult{
		Success:  true,
		GameID:   gameID,
		PlayerID: playerID,
		GameData: &snap,
	}
}

func (m *Manager) MarkReady(gameID, playerID string) protocol.Result {
	ge := m.store.FindGame(gameID)
	if ge == nil {
		return protocol.Fail(store.ErrUnknownGameID)
	}

	snap, err := ge.MarkReady(playerID)
	if err != nil {
		return protocol.Fail(err)
	}
	return protocol.Ok(snap)
}

func (m *Manager) RollDice(gameID, playerID string) protocol.Result {
	ge := m.store.FindGame(gameID)
	if ge == nil {
		return protocol.Fail(store.ErrUnknownGameID)
	}

	res, err := ge.RollDice(playerID)
	if err != nil {
		return protocol.Fail(err)
	}
	return protocol.Ok(res.Message().Data)
}

func (m *Manager) MovePiece(gameID, playerID string) protocol.Result {
	ge := m.store.FindGame(gameID)
	if ge == nil {
		return protocol.Fail(store.ErrUnknownGameID)
	}

	res, err := ge.MovePiece(playerID)
	if err != nil {
		return protocol.Fail(err)
	}
	if msg, ok := res.Message(); ok {
		return protocol.Ok(msg.Data)
	}
	return protocol.Ok(nil)
}

// UseCard plays a card. Ids missing from the catalog are refused before the
// room is touched.
func (m *Manager) UseCard(gameID, playerID string, cardID int, targetID string) protocol.Result {
	ge := m.store.FindGame(gameID)
	if ge == nil {
		return protocol.Fail(store.ErrUnknownGameID)
	}
	if _, ok := m.cards.Find(cardID); !ok {
		return protocol.Fail(ErrUnknownCard)
	}

	res, err := ge.UseCard(playerID, cardID, targetID)
	if err != nil {
		return protocol.Fail(err)
	}
	return protocol.Ok(res.Played())
}

// Leave removes a player and destroys the room once nobody is left.
// The engine closes an emptied room before returning, so a join racing the
// removal is refused rather than seated in a room about to disappear.
func (m *Manager) Leave(gameID, playerID string) protocol.Result {
	ge := m.store.FindGame(gameID)
	if ge == nil {
		return protocol.Fail(store.ErrUnknownGameID)
	}

	empty, err := ge.Leave(playerID)
	if err != nil {
		return protocol.Fail(err)
	}

	if empty {
		ge.Close()
		m.store.RemoveGame(gameID)
		m.log.Info("room closed", zap.String("game_id", gameID))
	}
	return protocol.Ok(nil)
}

// Snapshot returns a room as one viewer sees it
func (m *Manager) Snapshot(gameID, viewerID string) (protocol.GameStateData, error) {
	ge := m.store.FindGame(gameID)
	if ge == nil {
		return protocol.GameStateData{}, store.ErrFnUnknownGameID(gameID)
	}
	return ge.Snapshot(viewerID), nil
}

// Connect attaches a live connection to a seated player
func (m *Manager) Connect(gameID, playerID string, c engine.Conn) error {
	ge := m.store.FindGame(gameID)
	if ge == nil {
		return store.ErrFnUnknownGameID(gameID)
	}
	return ge.Connect(playerID, c)
}

// Disconnect drops a connection but keeps the player seated
func (m *Manager) Disconnect(gameID, playerID string, c engine.Conn) {
	if ge := m.store.FindGame(gameID); ge != nil {
		ge.Disconnect(playerID, c)
	}
}

// Receive runs a message from a connected player. The caller is trusted to
// have filled in GameID and PlayerID from the connection, not the payload.
func (m *Manager) Receive(msg protocol.InboundMessage) protocol.ResultData {
	var res protocol.Result

	switch msg.Type {
	case protocol.Join:
		// already seated over HTTP; answer with the current view
		snap, err := m.Snapshot(msg.GameID, msg.PlayerID)
		switch {
		case err != nil:
			res = protocol.Fail(err)
		case !hasPlayer(snap, msg.PlayerID):
			res = protocol.Fail(game.ErrUnknownPlayer)
		default:
			res = protocol.Ok(snap)
		}
	case protocol.Ready:
		res = m.MarkReady(msg.GameID, msg.PlayerID)
	case protocol.DiceRolled:
		res = m.RollDice(msg.GameID, msg.PlayerID)
	case protocol.PieceMoved:
		res = m.MovePiece(msg.GameID, msg.PlayerID)
	case protocol.PropUsed:
		res = m.UseCard(msg.GameID, msg.PlayerID, msg.PropID, msg.TargetPlayerID)
	case protocol.Leave:
		res = m.Leave(msg.GameID, msg.PlayerID)
	default:
		res = protocol.Fail(protocol.ErrFnUnknownType(msg.Type))
	}

	if !res.Success {
		m.log.Debug("request rejected",
			zap.String("game_id", msg.GameID),
			zap.String("player_id", msg.PlayerID),
			zap.String("type", string(msg.Type)),
			zap.String("reason", res.Message))
	}

	return protocol.ResultData{Request: msg.Type, Result: res}
}

// Shutdown drops every connection in every room
func (m *Manager) Shutdown() {
	for _, ge := range m.store.Games() {
		ge.Close()
	}
}

func hasPlayer(snap protocol.GameStateData, playerID string) bool {
	_, ok := snap.Find(playerID)
	return ok
}
