package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/minaorangina/flightchess/deck"
	"github.com/minaorangina/flightchess/game"
	"github.com/minaorangina/flightchess/protocol"
)

func SendText(w io.Writer, text string, a ...interface{}) {
	fmt.Fprintf(w, text, a...)
}

// BuildStateText renders a snapshot for a terminal, from the point of view
// of playerID.
func BuildStateText(s protocol.GameStateData, playerID string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game %s (%s)\n", s.GameID, s.Status)

	for i, p := range s.Players {
		marker := "  "
		if s.Status == "playing" && i == s.CurrentPlayerIndex {
			marker = "▶ "
		}
		you := ""
		if p.ID == playerID {
			you = " (you)"
		}
		ready := ""
		if s.Status == "waiting" && p.Ready {
			ready = " ✅"
		}
		fmt.Fprintf(&b, "%s%s [%s]%s%s: %s\n", marker, p.Name, p.Color, you, ready, piecesText(p.Pieces))
	}

	if s.DiceRolled {
		fmt.Fprintf(&b, "\nDice: %d 🎲\n", s.DiceValue)
	}

	for _, e := range s.Effects {
		fmt.Fprintf(&b, "Effect %s on %s, %d turns left\n", e.Kind, nameOf(s, e.PlayerID), e.Remaining)
	}

	if me, ok := s.Find(playerID); ok && len(me.Hand) > 0 {
		b.WriteString("\n" + buildHandText(me.Hand))
	}

	return b.String()
}

func buildHandText(hand []deck.Card) string {
	text := "Your cards 🤲\n"
	for _, c := range hand {
		text += fmt.Sprintf("- %s (%s)\n", c.String(), c.Description)
	}
	return text
}

func piecesText(pieces [game.NumPieces]int) string {
	out := make([]string, len(pieces))
	for i, pos := range pieces {
		switch {
		case pos == game.Home:
			out[i] = "home"
		case pos >= game.TrackLength:
			out[i] = fmt.Sprintf("lane %d", pos-game.TrackLength+1)
		default:
			out[i] = fmt.Sprintf("%d", pos)
		}
	}
	return strings.Join(out, ", ")
}

func nameOf(s protocol.GameStateData, playerID string) string {
	if p, ok := s.Find(playerID); ok {
		return p.Name
	}
	return playerID
}

// HelpText lists the commands understood by ParseCommand
func HelpText() string {
	return "Commands: roll, move, use <card id> [target name], ready, state, help, quit\n"
}
