package deck

import (
	"math/rand"
)

// Deck represents the catalog of prop cards
type Deck []Card

var catalog = Deck{
	{ID: 1, Name: "Speed", Description: "move 3 extra steps on your next move", Effect: ExtraMove},
	{ID: 2, Name: "Freeze", Description: "the target skips their next turn", Effect: Freeze},
	{ID: 3, Name: "Teleport", Description: "teleport a piece", Effect: Teleport},
	{ID: 4, Name: "Shield", Description: "your pieces cannot be sent home", Effect: Shield},
	{ID: 5, Name: "Double", Description: "your next roll counts double", Effect: Double},
	{ID: 6, Name: "Swap", Description: "swap every piece with the target", Effect: Swap},
	{ID: 7, Name: "Reverse", Description: "the target's lead piece goes back 5 steps", Effect: Reverse},
	{ID: 8, Name: "View", Description: "look at the target's cards", Effect: View},
}

// New returns a copy of the full catalog
func New() Deck {
	d := make(Deck, len(catalog))
	copy(d, catalog)
	return d
}

// Find looks a card up by id
func (d Deck) Find(id int) (Card, bool) {
	for _, c := range d {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// Draw picks a card uniformly at random. Draws are independent, so the same
// card can come up any number of times.
func (d Deck) Draw(rng *rand.Rand) Card {
	if len(d) == 0 {
		return Card{}
	}
	return d[rng.Intn(len(d))]
}
