package client

import (
	"errors"
	"sync"

	"github.com/minaorangina/flightchess/deck"
	"github.com/minaorangina/flightchess/protocol"
)

var ErrNotReconciled = errors.New("rejected request and no way to resync")

// Replica is a client's copy of one room. Events from the server are
// applied as they come, without checking them against the rules; a full
// gameState from the server, or a refused request, replaces the copy
// outright.
type Replica struct {
	mu       sync.RWMutex
	playerID string
	state    protocol.GameStateData
	last     *protocol.ResultData
	resync   func() (protocol.GameStateData, error)
}

// NewReplica constructs an empty replica. resync fetches the server's view
// after a refused request; it may be nil.
func NewReplica(playerID string, resync func() (protocol.GameStateData, error)) *Replica {
	return &Replica{playerID: playerID, resync: resync}
}

// State returns a copy of the current view
func (r *Replica) State() protocol.GameStateData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyState(r.state)
}

// Replace swaps in a server snapshot
func (r *Replica) Replace(s protocol.GameStateData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = copyState(s)
}

// LastResult is the most recent reply to one of our requests
func (r *Replica) LastResult() (protocol.ResultData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return protocol.ResultData{}, false
	}
	return *r.last, true
}

// MyTurn reports whether the replica thinks it is our turn
func (r *Replica) MyTurn() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Status == "playing" && r.state.CurrentPlayerID == r.playerID
}

// Hand returns our cards as last seen
func (r *Replica) Hand() []deck.Card {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.state.Find(r.playerID); ok {
		return append([]deck.Card{}, p.Hand...)
	}
	return nil
}

// Apply folds one server message into the replica
func (r *Replica) Apply(env protocol.Envelope) error {
	if env.Type == protocol.ResultType {
		return r.applyResult(env)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch env.Type {
	case protocol.GameState:
		var s protocol.GameStateData
		if err := env.Decode(&s); err != nil {
			return err
		}
		r.state = s

	case protocol.GameStart:
		var d protocol.GameStartData
		if err := env.Decode(&d); err != nil {
			return err
		}
		r.state.GameID = d.GameID
		r.state.Status = "playing"
		r.state.CurrentPlayerIndex = 0
		if len(r.state.Players) > 0 {
			r.state.CurrentPlayerID = r.state.Players[0].ID
		}

	case protocol.DiceRolled:
		var d protocol.DiceRolledData
		if err := env.Decode(&d); err != nil {
			return err
		}
		r.state.DiceValue = d.DiceValue
		r.state.DiceRolled = true

	case protocol.PieceMoved:
		var d protocol.PieceMovedData
		if err := env.Decode(&d); err != nil {
			return err
		}
		if p, ok := r.state.Find(d.PlayerID); ok && d.PieceIndex >= 0 && d.PieceIndex < len(p.Pieces) {
			p.Pieces[d.PieceIndex] = d.ToPos
		}
		r.state.DiceRolled = false

	case protocol.PlayerJoined:
		var d protocol.PlayerJoinedData
		if err := env.Decode(&d); err != nil {
			return err
		}
		if _, ok := r.state.Find(d.PlayerID); !ok {
			r.state.Players = append(r.state.Players, protocol.PlayerState{
				ID:     d.PlayerID,
				Name:   d.PlayerName,
				Pieces: [4]int{-1, -1, -1, -1},
			})
		}

	case protocol.PlayerLeft:
		var d protocol.PlayerLeftData
		if err := env.Decode(&d); err != nil {
			return err
		}
		kept := r.state.Players[:0]
		for _, p := range r.state.Players {
			if p.ID != d.PlayerID {
				kept = append(kept, p)
			}
		}
		r.state.Players = kept

	case protocol.GameOver:
		r.state.Status = "finished"

	case protocol.PropUsed:
		// effects arrive with the following gameState

	default:
		return protocol.ErrFnUnknownType(env.Type)
	}

	return nil
}

func (r *Replica) applyResult(env protocol.Envelope) error {
	var res protocol.ResultData
	if err := env.Decode(&res); err != nil {
		return err
	}

	defer func() {
		r.mu.Lock()
		r.last = &res
		r.mu.Unlock()
	}()

	if res.Success {
		return nil
	}

	r.mu.RLock()
	resync := r.resync
	r.mu.RUnlock()
	if resync == nil {
		return ErrNotReconciled
	}

	s, err := resync()
	if err != nil {
		return err
	}
	r.Replace(s)
	return nil
}

func copyState(s protocol.GameStateData) protocol.GameStateData {
	out := s
	out.Players = make([]protocol.PlayerState, len(s.Players))
	for i, p := range s.Players {
		p.Hand = append([]deck.Card(nil), p.Hand...)
		out.Players[i] = p
	}
	out.Effects = append([]protocol.EffectState(nil), s.Effects...)
	return out
}
