package game

import (
	"errors"
	"strings"
)

var (
	ErrNoPlayers          = errors.New("game has no players")
	ErrMissingName        = errors.New("missing player name")
	ErrRoomFull           = errors.New("room is full")
	ErrDuplicateName      = errors.New("name already taken")
	ErrGameStarted        = errors.New("game has already started")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrDiceAlreadyRolled  = errors.New("dice already rolled")
	ErrDiceNotRolled      = errors.New("dice not rolled yet")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrPropsDisabled      = errors.New("props are disabled")
	ErrWinNotSupported    = errors.New("win detection is not supported")
	ErrInvalidPlayerCount = errors.New("a room seats between 1 and 4 players")
)

// Opts configures a new Game
type Opts struct {
	MaxPlayers int
	Dice       Dice
	Props      PropSystem
	// LaunchAtStartOffset places launched pieces on the owner's start cell
	// instead of cell 0.
	LaunchAtStartOffset bool
}

// Game is the board state of one room
type Game struct {
	Players        []*Player
	CurrentTurnIdx int
	DiceValue      int
	DiceRolled     bool
	Status         Status
	MaxPlayers     int
	Effects        *EffectLedger

	props               PropSystem
	dice                Dice
	launchAtStartOffset bool
}

// New constructs an empty game waiting for players
func New(opts Opts) (*Game, error) {
	if opts.MaxPlayers == 0 {
		opts.MaxPlayers = MaxPlayers
	}
	if opts.MaxPlayers < 1 || opts.MaxPlayers > MaxPlayers {
		return nil, ErrInvalidPlayerCount
	}
	if opts.Dice == nil {
		opts.Dice = NewRandomDice(nil)
	}
	if opts.Props == nil {
		opts.Props = NoProps{}
	}

	return &Game{
		Players:             []*Player{},
		Status:              Waiting,
		MaxPlayers:          opts.MaxPlayers,
		Effects:             NewEffectLedger(opts.MaxPlayers),
		props:               opts.Props,
		dice:                opts.Dice,
		launchAtStartOffset: opts.LaunchAtStartOffset,
	}, nil
}

// Props returns the prop system the game was built with
func (g *Game) Props() PropSystem {
	return g.props
}

// Find finds a player by id
func (g *Game) Find(playerID string) (*Player, int, bool) {
	for i, p := range g.Players {
		if p.ID == playerID {
			return p, i, true
		}
	}
	return nil, -1, false
}

// CurrentPlayer returns the player whose turn it is, or nil outside of play
func (g *Game) CurrentPlayer() *Player {
	if g.Status != Playing || len(g.Players) == 0 {
		return nil
	}
	return g.Players[g.CurrentTurnIdx]
}

// Phase reports what the current player has to do next
func (g *Game) Phase() Phase {
	if g.DiceRolled {
		return AwaitingMove
	}
	return AwaitingRoll
}

func (g *Game) Full() bool {
	return len(g.Players) >= g.MaxPlayers
}

// AllReady reports whether every seated player is ready
func (g *Game) AllReady() bool {
	if len(g.Players) == 0 {
		return false
	}
	for _, p := range g.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// AddPlayer seats a new player in the lowest free seat and deals their cards
func (g *Game) AddPlayer(id, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}
	if g.Status != Waiting {
		return nil, ErrGameStarted
	}
	if g.Full() {
		return nil, ErrRoomFull
	}
	for _, p := range g.Players {
		if p.Name == name {
			return nil, ErrDuplicateName
		}
	}

	taken := map[int]bool{}
	for _, p := range g.Players {
		taken[p.Seat] = true
	}
	seatIdx := 0
	for taken[seatIdx] {
		seatIdx++
	}

	p := NewPlayer(id, name, seatIdx)
	g.Players = append(g.Players, p)
	g.props.Deal(id)

	return p, nil
}

// RemovePlayer takes a player out of the game, keeping the turn index valid
func (g *Game) RemovePlayer(playerID string) (*Player, error) {
	p, idx, ok := g.Find(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}

	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	g.props.Forget(playerID)
	g.Effects.Forget(playerID)

	if len(g.Players) == 0 {
		g.CurrentTurnIdx = 0
		g.resetDice()
		return p, nil
	}

	if g.Status != Playing {
		return p, nil
	}

	g.Effects.SetRound(len(g.Players))

	switch {
	case idx < g.CurrentTurnIdx:
		g.CurrentTurnIdx--
	case idx == g.CurrentTurnIdx:
		// the next seat slides into the leaver's index
		g.CurrentTurnIdx %= len(g.Players)
		g.resetDice()
		g.skipFrozen()
	}

	return p, nil
}

// SetReady marks a player as ready to start
func (g *Game) SetReady(playerID string) error {
	p, _, ok := g.Find(playerID)
	if !ok {
		return ErrUnknownPlayer
	}
	p.Ready = true
	return nil
}

// Start moves the game into play with the first seated player to move
func (g *Game) Start() error {
	if g.Status != Waiting {
		return ErrGameStarted
	}
	if len(g.Players) == 0 {
		return ErrNoPlayers
	}

	g.Status = Playing
	g.CurrentTurnIdx = 0
	g.resetDice()
	g.Effects.SetRound(len(g.Players))

	return nil
}

// CheckTurn verifies that playerID may act now
func (g *Game) CheckTurn(playerID string) error {
	if g.Status != Playing {
		return ErrGameNotStarted
	}
	if g.Players[g.CurrentTurnIdx].ID != playerID {
		return ErrNotYourTurn
	}
	return nil
}

// Winner is not implemented: nothing ever ends a game.
func (g *Game) Winner() (string, error) {
	return "", ErrWinNotSupported
}

func (g *Game) resetDice() {
	g.DiceValue = 0
	g.DiceRolled = false
}
