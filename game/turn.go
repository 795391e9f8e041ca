package game

import "github.com/minaorangina/flightchess/deck"

// RollResult is the outcome of a dice roll
type RollResult struct {
	PlayerID string
	Value    int
	Doubled  bool
}

// MoveResult is the outcome of resolving a roll
type MoveResult struct {
	PlayerID   string
	Moved      bool
	PieceIndex int
	FromPos    int
	ToPos      int
	Steps      int
	Captures   []Capture
	ExtraTurn  bool
	// Skipped lists frozen players whose turn was passed over
	Skipped []string
	Expired []Effect
}

// RollDice rolls for the current player. An unused double effect is spent
// on this roll.
func (g *Game) RollDice(playerID string) (RollResult, error) {
	if err := g.CheckTurn(playerID); err != nil {
		return RollResult{}, err
	}
	if g.DiceRolled {
		return RollResult{}, ErrDiceAlreadyRolled
	}

	res := RollResult{PlayerID: playerID, Value: g.dice.Roll()}
	if e, ok := g.Effects.Consume(playerID, deck.Double); ok {
		res.Value *= e.Magnitude
		res.Doubled = true
	}

	g.DiceValue = res.Value
	g.DiceRolled = true

	return res, nil
}

// MovePiece moves the first of the player's pieces that can legally move.
// Rolling a 6 keeps the turn; anything else passes it on, even when no
// piece could move.
func (g *Game) MovePiece(playerID string) (MoveResult, error) {
	if err := g.CheckTurn(playerID); err != nil {
		return MoveResult{}, err
	}
	if !g.DiceRolled {
		return MoveResult{}, ErrDiceNotRolled
	}

	player := g.Players[g.CurrentTurnIdx]
	rolled := g.DiceValue
	steps := rolled
	if e, ok := g.Effects.Consume(playerID, deck.ExtraMove); ok {
		steps += e.Magnitude
	}

	res := MoveResult{PlayerID: playerID, PieceIndex: -1, Steps: steps}

	for i, pos := range player.Pieces {
		if !canMove(pos, rolled, steps) {
			continue
		}

		newPos := pos + steps
		if pos == Home {
			newPos = g.launchCell(player)
		}
		player.Pieces[i] = newPos

		res.Moved = true
		res.PieceIndex = i
		res.FromPos = pos
		res.ToPos = newPos
		res.Captures = ResolveCaptures(g.Players, playerID, newPos, g.Effects)
		break
	}

	g.resetDice()

	if rolled == extraTurnRoll {
		res.ExtraTurn = true
		return res, nil
	}

	res.Skipped, res.Expired = g.advanceTurn()
	return res, nil
}

func (g *Game) launchCell(p *Player) int {
	if g.launchAtStartOffset {
		return p.StartOffset
	}
	return 0
}

// advanceTurn hands the turn to the next seat, ageing effects once per
// hand-off and passing over anyone who is frozen.
func (g *Game) advanceTurn() ([]string, []Effect) {
	g.CurrentTurnIdx = (g.CurrentTurnIdx + 1) % len(g.Players)
	expired := g.Effects.Tick()

	skipped, more := g.skipFrozen()
	return skipped, append(expired, more...)
}

// skipFrozen terminates because every skip ticks the ledger and freezes
// have a finite duration.
func (g *Game) skipFrozen() ([]string, []Effect) {
	skipped := []string{}
	expired := []Effect{}
	for g.Effects.HasEffect(g.Players[g.CurrentTurnIdx].ID, deck.Freeze) {
		skipped = append(skipped, g.Players[g.CurrentTurnIdx].ID)
		g.CurrentTurnIdx = (g.CurrentTurnIdx + 1) % len(g.Players)
		expired = append(expired, g.Effects.Tick()...)
	}
	return skipped, expired
}
