package game

const (
	// Home is the position of a piece that has not been launched yet
	Home = -1
	// TrackLength is the number of cells on the shared circular track
	TrackLength = 52
	// FinishLine is the last cell a piece may land on
	FinishLine = 56
	// NumPieces is the number of pieces each player owns
	NumPieces = 4
	// MaxPlayers is the number of seats around the board
	MaxPlayers = 4

	launchRoll    = 6
	extraTurnRoll = 6
)

type seat struct {
	color       string
	startOffset int
}

var seats = [MaxPlayers]seat{
	{"red", 0},
	{"green", 13},
	{"blue", 26},
	{"yellow", 39},
}

// Player is one participant's board state
type Player struct {
	ID          string
	Name        string
	Seat        int
	Color       string
	Pieces      [NumPieces]int
	StartOffset int
	Ready       bool
}

// NewPlayer constructs a player with every piece at home
func NewPlayer(id, name string, seatIdx int) *Player {
	s := seats[seatIdx]
	return &Player{
		ID:          id,
		Name:        name,
		Seat:        seatIdx,
		Color:       s.color,
		StartOffset: s.startOffset,
		Pieces:      [NumPieces]int{Home, Home, Home, Home},
	}
}

// LeadPiece returns the index of the piece furthest along the board.
// Pieces at home are ignored and ties go to the lowest index.
func (p *Player) LeadPiece() (int, bool) {
	lead, best := -1, Home
	for i, pos := range p.Pieces {
		if pos > best {
			lead, best = i, pos
		}
	}
	return lead, lead != -1
}

// OnTrack reports whether a position is on the shared track, where pieces
// of different players can meet.
func OnTrack(pos int) bool {
	return pos >= 0 && pos < TrackLength
}

func canMove(pos, rolled, steps int) bool {
	if pos == Home {
		return rolled == launchRoll
	}
	return pos+steps <= FinishLine
}
