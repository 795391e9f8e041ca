package deck

import "fmt"

// Effect is what playing a card does. Some effects are timed and live in the
// effect ledger, the rest mutate the board directly.
type Effect string

const (
	ExtraMove Effect = "extraMove"
	Freeze    Effect = "freeze"
	Teleport  Effect = "teleport"
	Shield    Effect = "shield"
	Double    Effect = "double"
	Swap      Effect = "swap"
	Reverse   Effect = "reverse"
	View      Effect = "view"
)

// Timed reports whether the effect is recorded in the effect ledger
// rather than applied to the board straight away.
func (e Effect) Timed() bool {
	switch e {
	case ExtraMove, Freeze, Shield, Double:
		return true
	}
	return false
}

// NeedsTarget reports whether the effect does nothing without a target player
func (e Effect) NeedsTarget() bool {
	switch e {
	case Freeze, Swap, Reverse, View:
		return true
	}
	return false
}

// Card represents a prop card
type Card struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Effect      Effect `json:"effect"`
}

func (c Card) String() string {
	return fmt.Sprintf("%d:%s", c.ID, c.Name)
}
