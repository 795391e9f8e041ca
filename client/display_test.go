package client

import (
	"strings"
	"testing"

	"github.com/minaorangina/flightchess/deck"
	utils "github.com/minaorangina/flightchess/internal"
	"github.com/minaorangina/flightchess/protocol"
	"github.com/stretchr/testify/assert"
)

func TestBuildStateText(t *testing.T) {
	s := twoPlayerState()
	s.Players[0].Pieces = [4]int{3, 53, -1, -1}
	s.Players[0].Hand = []deck.Card{{ID: 4, Name: "Shield", Description: "your pieces cannot be sent home"}}
	s.DiceValue, s.DiceRolled = 6, true
	s.Effects = []protocol.EffectState{{Kind: deck.Freeze, PlayerID: "p2", Remaining: 2}}

	text := BuildStateText(s, "p1")

	for _, want := range []string{
		"Game ABCDEF (playing)",
		"▶ Ann [red] (you): 3, lane 2, home, home",
		"  Bo [blue]: home, home, home, home",
		"Dice: 6",
		"Effect freeze on Bo, 2 turns left",
		"- 4:Shield (your pieces cannot be sent home)",
	} {
		assert.Contains(t, text, want)
	}

	t.Run("other hands are never shown", func(t *testing.T) {
		text := BuildStateText(s, "p2")
		assert.False(t, strings.Contains(text, "Shield"))
	})
}

func TestSendText(t *testing.T) {
	buf := NewTestBuffer()
	SendText(buf, "It's %s's turn\n", "Ann")
	utils.AssertStringEquality(t, buf.String(), "It's Ann's turn\n")
}
