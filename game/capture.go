package game

import "github.com/minaorangina/flightchess/deck"

// Capture describes a piece hit by a landing piece
type Capture struct {
	PlayerID   string
	PieceIndex int
	Position   int
	Shielded   bool
}

// ResolveCaptures sends home every opposing piece on newPos whose owner has
// no shield. Shielded pieces stay put and the shield is left to expire on its
// own. The mover's own pieces are never checked, so stacking is allowed.
// Home stretch cells belong to their owner, so only track cells can collide.
func ResolveCaptures(players []*Player, moverID string, newPos int, ledger *EffectLedger) []Capture {
	captures := []Capture{}
	if !OnTrack(newPos) {
		return captures
	}

	for _, p := range players {
		if p.ID == moverID {
			continue
		}
		shielded := ledger.HasEffect(p.ID, deck.Shield)
		for i, pos := range p.Pieces {
			if pos != newPos {
				continue
			}
			captures = append(captures, Capture{
				PlayerID:   p.ID,
				PieceIndex: i,
				Position:   pos,
				Shielded:   shielded,
			})
			if !shielded {
				p.Pieces[i] = Home
			}
		}
	}

	return captures
}
