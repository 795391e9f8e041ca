package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/minaorangina/flightchess/deck"
)

var (
	ErrUnknownType   = errors.New("unknown message type")
	ErrMissingGameID = errors.New("missing game ID")
	ErrFnUnknownType = func(t MsgType) error {
		return fmt.Errorf("%w \"%s\"", ErrUnknownType, t)
	}
)

// MsgType names a message on the wire
type MsgType string

const (
	Join         MsgType = "join"
	Ready        MsgType = "ready"
	Leave        MsgType = "leave"
	GameState    MsgType = "gameState"
	GameStart    MsgType = "gameStart"
	DiceRolled   MsgType = "diceRolled"
	PieceMoved   MsgType = "pieceMoved"
	PropUsed     MsgType = "propUsed"
	PlayerJoined MsgType = "playerJoined"
	PlayerLeft   MsgType = "playerLeft"
	GameOver     MsgType = "gameOver"
	ResultType   MsgType = "result"
)

// types a client may send to the server
var inboundTypes = map[MsgType]bool{
	Join:       true,
	Ready:      true,
	Leave:      true,
	DiceRolled: true,
	PieceMoved: true,
	PropUsed:   true,
}

// types the server may send to a client
var outboundTypes = map[MsgType]bool{
	GameState:    true,
	GameStart:    true,
	DiceRolled:   true,
	PieceMoved:   true,
	PropUsed:     true,
	PlayerJoined: true,
	PlayerLeft:   true,
	GameOver:     true,
	ResultType:   true,
}

// Inbound reports whether clients are allowed to send this type
func (t MsgType) Inbound() bool {
	return inboundTypes[t]
}

// Outbound reports whether the server sends this type
func (t MsgType) Outbound() bool {
	return outboundTypes[t]
}

// InboundMessage is a message from a client to the server.
// It is a flat object rather than an envelope.
type InboundMessage struct {
	Type           MsgType `json:"type"`
	GameID         string  `json:"gameId"`
	PlayerID       string  `json:"playerId"`
	GameType       string  `json:"gameType,omitempty"`
	PropID         int     `json:"propId,omitempty"`
	TargetPlayerID string  `json:"targetPlayerId,omitempty"`
}

// OutboundMessage is a message from the server to a client
type OutboundMessage struct {
	Type MsgType     `json:"type"`
	Data interface{} `json:"data"`
}

// Envelope is an OutboundMessage as seen by the receiving end,
// with the payload left undecoded until the type is known.
type Envelope struct {
	Type MsgType         `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode unmarshals the payload into v
func (e Envelope) Decode(v interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("empty payload for %s", e.Type)
	}
	return json.Unmarshal(e.Data, v)
}

// PlayerInfo identifies a player
type PlayerInfo struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// PlayerState is the public view of one player
type PlayerState struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Color       string      `json:"color"`
	Pieces      [4]int      `json:"pieces"`
	StartOffset int         `json:"startOffset"`
	Ready       bool        `json:"ready"`
	Hand        []deck.Card `json:"hand,omitempty"`
	HandSize    int         `json:"handSize"`
}

// EffectState is the public view of an active effect
type EffectState struct {
	Kind      deck.Effect `json:"kind"`
	PlayerID  string      `json:"playerId"`
	Remaining int         `json:"remaining"`
	Magnitude int         `json:"magnitude"`
}

// GameStateData is everything a renderer needs. It is read-only for clients.
type GameStateData struct {
	GameID             string        `json:"gameId"`
	Status             string        `json:"status"`
	Phase              string        `json:"phase"`
	Players            []PlayerState `json:"players"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
	CurrentPlayerID    string        `json:"currentPlayerId,omitempty"`
	DiceValue          int           `json:"diceValue"`
	DiceRolled         bool          `json:"diceRolled"`
	Effects            []EffectState `json:"effects,omitempty"`
}

// Find finds a player by id
func (s *GameStateData) Find(playerID string) (*PlayerState, bool) {
	for i := range s.Players {
		if s.Players[i].ID == playerID {
			return &s.Players[i], true
		}
	}
	return nil, false
}

type GameStartData struct {
	GameID  string       `json:"gameId"`
	Players []PlayerInfo `json:"players"`
}

type DiceRolledData struct {
	PlayerID  string `json:"playerId"`
	DiceValue int    `json:"diceValue"`
}

type PieceMovedData struct {
	PlayerID   string `json:"playerId"`
	PieceIndex int    `json:"pieceIndex"`
	FromPos    int    `json:"fromPos"`
	ToPos      int    `json:"toPos"`
}

type PropUsedData struct {
	PlayerID       string `json:"playerId"`
	PropID         int    `json:"propId"`
	TargetPlayerID string `json:"targetPlayerId,omitempty"`
}

// CardPlayedData is what the player who used a card gets back. Viewed is
// only ever sent to that player.
type CardPlayedData struct {
	Card           deck.Card   `json:"card"`
	TargetPlayerID string      `json:"targetPlayerId,omitempty"`
	Viewed         []deck.Card `json:"viewed,omitempty"`
	Granted        []deck.Card `json:"granted,omitempty"`
}

type PlayerJoinedData struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type PlayerLeftData struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type GameOverData struct {
	WinnerID string `json:"winnerId"`
}

// Result is the outcome of a room action
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// JoinResult is the outcome of joining a room
type JoinResult struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message,omitempty"`
	GameID   string         `json:"gameId,omitempty"`
	PlayerID string         `json:"playerId,omitempty"`
	GameData *GameStateData `json:"gameData,omitempty"`
}

// ResultData is sent back to a single connection after it submitted an action
type ResultData struct {
	Request MsgType `json:"request"`
	Result
}

// Ok builds a successful Result
func Ok(data interface{}) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failed Result from an error
func Fail(err error) Result {
	return Result{Success: false, Message: err.Error()}
}
