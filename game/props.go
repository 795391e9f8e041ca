package game

import (
	"math/rand"

	"github.com/minaorangina/flightchess/deck"
)

const (
	initialHandSize = 2
	handFloor       = 3
	reverseSteps    = 5
)

// PieceChange records a piece moved by a card
type PieceChange struct {
	PlayerID   string
	PieceIndex int
	FromPos    int
	ToPos      int
}

// UseResult is the outcome of playing a card
type UseResult struct {
	PlayerID string
	Card     deck.Card
	TargetID string
	Applied  *Effect
	Swapped  bool
	Reversed *PieceChange
	Viewed   []deck.Card
	Granted  []deck.Card
}

// PropSystem deals and resolves prop cards. CardSystem is the real thing;
// NoProps stands in for rooms that are configured to play without cards.
type PropSystem interface {
	Deal(playerID string) []deck.Card
	Hand(playerID string) []deck.Card
	Use(g *Game, playerID string, cardID int, targetID string) (UseResult, error)
	Forget(playerID string)
}

// CardSystem keeps every player's hand of prop cards
type CardSystem struct {
	deck  deck.Deck
	hands map[string][]deck.Card
	rng   *rand.Rand
}

func NewCardSystem(rng *rand.Rand) *CardSystem {
	if rng == nil {
		rng = NewRand()
	}
	return &CardSystem{
		deck:  deck.New(),
		hands: map[string][]deck.Card{},
		rng:   rng,
	}
}

// Deal gives a newly seated player their opening hand.
// Players who already hold cards are left alone.
func (cs *CardSystem) Deal(playerID string) []deck.Card {
	if _, ok := cs.hands[playerID]; ok {
		return cs.Hand(playerID)
	}
	cs.hands[playerID] = []deck.Card{}
	for i := 0; i < initialHandSize; i++ {
		cs.Grant(playerID)
	}
	return cs.Hand(playerID)
}

// Grant adds one random card to a player's hand
func (cs *CardSystem) Grant(playerID string) deck.Card {
	c := cs.deck.Draw(cs.rng)
	cs.hands[playerID] = append(cs.hands[playerID], c)
	return c
}

// Hand returns a copy of a player's cards
func (cs *CardSystem) Hand(playerID string) []deck.Card {
	hand := cs.hands[playerID]
	out := make([]deck.Card, len(hand))
	copy(out, hand)
	return out
}

func (cs *CardSystem) Forget(playerID string) {
	delete(cs.hands, playerID)
}

// Use plays the first card in the player's hand with the given id.
// Cards that need a target do nothing without one, but are still spent.
func (cs *CardSystem) Use(g *Game, playerID string, cardID int, targetID string) (UseResult, error) {
	idx := -1
	for i, c := range cs.hands[playerID] {
		if c.ID == cardID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return UseResult{}, ErrCardNotInHand
	}

	var target *Player
	if targetID != "" {
		p, _, ok := g.Find(targetID)
		if !ok {
			return UseResult{}, ErrUnknownPlayer
		}
		target = p
	}

	card := cs.hands[playerID][idx]
	res := UseResult{PlayerID: playerID, Card: card, TargetID: targetID}

	switch {
	case card.Effect.NeedsTarget() && target == nil:
		// nothing to aim at
	case card.Effect.Timed():
		on := ""
		if card.Effect.NeedsTarget() {
			on = target.ID
		}
		e := g.Effects.Apply(card.Effect, playerID, on)
		res.Applied = &e
	default:
		cs.resolve(g, playerID, card.Effect, target, &res)
	}

	hand := cs.hands[playerID]
	cs.hands[playerID] = append(hand[:idx], hand[idx+1:]...)

	for len(cs.hands[playerID]) < handFloor {
		res.Granted = append(res.Granted, cs.Grant(playerID))
	}

	return res, nil
}

// resolve applies an effect that changes the board or reveals a hand
func (cs *CardSystem) resolve(g *Game, playerID string, effect deck.Effect, target *Player, res *UseResult) {
	switch effect {
	case deck.Swap:
		if p, _, ok := g.Find(playerID); ok {
			p.Pieces, target.Pieces = target.Pieces, p.Pieces
			res.Swapped = true
		}
	case deck.Reverse:
		res.Reversed = reverse(target, reverseSteps)
	case deck.View:
		res.Viewed = cs.Hand(target.ID)
	case deck.Teleport:
		// destination selection is not defined, so the card only gets spent
	}
}

// reverse moves the target's lead piece back, never past cell 0
func reverse(target *Player, steps int) *PieceChange {
	i, ok := target.LeadPiece()
	if !ok {
		return nil
	}

	from := target.Pieces[i]
	to := from - steps
	if to < 0 {
		to = 0
	}
	target.Pieces[i] = to

	return &PieceChange{PlayerID: target.ID, PieceIndex: i, FromPos: from, ToPos: to}
}

// NoProps is the prop system of a room played without cards.
// Nobody holds cards, so every use fails.
type NoProps struct{}

func (NoProps) Deal(string) []deck.Card { return nil }

func (NoProps) Hand(string) []deck.Card { return nil }

func (NoProps) Use(*Game, string, int, string) (UseResult, error) {
	return UseResult{}, ErrPropsDisabled
}

func (NoProps) Forget(string) {}

// UseCard plays a card from the current player's hand
func (g *Game) UseCard(playerID string, cardID int, targetID string) (UseResult, error) {
	if err := g.CheckTurn(playerID); err != nil {
		return UseResult{}, err
	}
	return g.props.Use(g, playerID, cardID, targetID)
}
