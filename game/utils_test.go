package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/minaorangina/flightchess/deck"
	"github.com/stretchr/testify/require"
)

func newWaitingGame(t *testing.T, numPlayers int, dice Dice) *Game {
	t.Helper()

	g, err := New(Opts{Dice: dice, Props: NewCardSystem(rand.New(rand.NewSource(1)))})
	require.NoError(t, err)

	for i := 1; i <= numPlayers; i++ {
		_, err := g.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i))
		require.NoError(t, err)
	}

	return g
}

func newStartedGame(t *testing.T, numPlayers int, dice Dice) *Game {
	t.Helper()

	g := newWaitingGame(t, numPlayers, dice)
	require.NoError(t, g.Start())

	return g
}

func pieces(ps ...int) [NumPieces]int {
	out := [NumPieces]int{Home, Home, Home, Home}
	copy(out[:], ps)
	return out
}

func cardWithEffect(e deck.Effect) deck.Card {
	for _, c := range deck.New() {
		if c.Effect == e {
			return c
		}
	}
	panic("no card for " + e)
}

func giveCards(g *Game, playerID string, cards ...deck.Card) {
	g.props.(*CardSystem).hands[playerID] = cards
}
