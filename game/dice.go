package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// Dice rolls a single six-sided die
type Dice interface {
	Roll() int
}

// RandomDice draws uniformly from 1..6
type RandomDice struct {
	rng *rand.Rand
}

func NewRandomDice(rng *rand.Rand) *RandomDice {
	if rng == nil {
		rng = NewRand()
	}
	return &RandomDice{rng: rng}
}

func (d *RandomDice) Roll() int {
	return d.rng.Intn(6) + 1
}

// FixedDice replays a sequence of values, starting again once exhausted
type FixedDice struct {
	values []int
	next   int
}

func NewFixedDice(values ...int) *FixedDice {
	return &FixedDice{values: values}
}

func (d *FixedDice) Roll() int {
	if len(d.values) == 0 {
		return 1
	}
	v := d.values[d.next%len(d.values)]
	d.next++
	return v
}

// NewRand returns a generator seeded from crypto/rand. Rooms each own one,
// so it is only ever used under the room's lock.
func NewRand() *rand.Rand {
	var b [8]byte
	seed := time.Now().UnixNano()
	if _, err := crand.Read(b[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(b[:]))
	}
	return rand.New(rand.NewSource(seed))
}
