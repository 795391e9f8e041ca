package game

import "github.com/minaorangina/flightchess/deck"

var magnitudes = map[deck.Effect]int{
	deck.ExtraMove: 3,
	deck.Double:    2,
	deck.Freeze:    1,
	deck.Shield:    1,
}

// Effect is a timed modifier on a player
type Effect struct {
	Kind      deck.Effect
	OwnerID   string
	TargetID  string
	Remaining int
	Magnitude int
}

// EffectLedger holds every active effect in a room.
//
// Remaining counts turn hand-offs. Double and extraMove last for the turn
// they were played in and are removed as soon as they are used. Shield and
// freeze last one full round, so a shield sees every opponent move once and
// a freeze is still there when its target's turn comes up.
type EffectLedger struct {
	records []Effect
	round   int
}

func NewEffectLedger(round int) *EffectLedger {
	l := &EffectLedger{records: []Effect{}}
	l.SetRound(round)
	return l
}

// SetRound sets how many hand-offs make up a full round. Shields and
// freezes already running are cut down to the new round, so a smaller table
// never makes them last longer than one lap.
func (l *EffectLedger) SetRound(n int) {
	if n < 1 {
		n = 1
	}
	l.round = n

	for i, e := range l.records {
		if lastsARound(e.Kind) && e.Remaining > n {
			l.records[i].Remaining = n
		}
	}
}

func (l *EffectLedger) duration(kind deck.Effect) int {
	if lastsARound(kind) {
		return l.round
	}
	return 1
}

func lastsARound(kind deck.Effect) bool {
	return kind == deck.Shield || kind == deck.Freeze
}

// HasEffect reports whether any record of kind targets playerID
func (l *EffectLedger) HasEffect(playerID string, kind deck.Effect) bool {
	for _, e := range l.records {
		if e.TargetID == playerID && e.Kind == kind {
			return true
		}
	}
	return false
}

// Apply records a new effect. An empty targetID means the owner is the target.
func (l *EffectLedger) Apply(kind deck.Effect, ownerID, targetID string) Effect {
	if targetID == "" {
		targetID = ownerID
	}
	e := Effect{
		Kind:      kind,
		OwnerID:   ownerID,
		TargetID:  targetID,
		Remaining: l.duration(kind),
		Magnitude: magnitudes[kind],
	}
	l.records = append(l.records, e)
	return e
}

// Consume removes the oldest record of kind targeting playerID
func (l *EffectLedger) Consume(playerID string, kind deck.Effect) (Effect, bool) {
	for i, e := range l.records {
		if e.TargetID == playerID && e.Kind == kind {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return e, true
		}
	}
	return Effect{}, false
}

// Tick ages every record by one and purges the ones that ran out
func (l *EffectLedger) Tick() []Effect {
	expired := []Effect{}
	kept := l.records[:0]
	for _, e := range l.records {
		e.Remaining--
		if e.Remaining <= 0 {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	l.records = kept
	return expired
}

// Forget drops every record targeting playerID. Effects they cast on
// others run their course.
func (l *EffectLedger) Forget(playerID string) {
	kept := l.records[:0]
	for _, e := range l.records {
		if e.TargetID != playerID {
			kept = append(kept, e)
		}
	}
	l.records = kept
}

// Effects returns a copy of the active records
func (l *EffectLedger) Effects() []Effect {
	out := make([]Effect, len(l.records))
	copy(out, l.records)
	return out
}
