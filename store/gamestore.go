package store

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/minaorangina/flightchess/engine"
	"github.com/minaorangina/flightchess/game"
)

var (
	ErrUnknownGameID   = errors.New("unknown game")
	ErrFnUnknownGameID = func(gameID string) error {
		return fmt.Errorf("%w \"%s\"", ErrUnknownGameID, gameID)
	}
	ErrFnDuplicateGameID = func(gameID string) error {
		return fmt.Errorf("game with id \"%s\" already exists", gameID)
	}
)

const gameIDLength = 6

var gameIDLetters = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

type GameStore interface {
	FindGame(gameID string) *engine.GameEngine
	AddGame(ge *engine.GameEngine) error
	RemoveGame(gameID string) bool
	NewGameID() string
	Games() []*engine.GameEngine
	Len() int
}

// InMemoryGameStore maps game id to game engine. Rooms live only as long as
// the process does.
type InMemoryGameStore struct {
	mu    sync.RWMutex
	games map[string]*engine.GameEngine
	rng   *rand.Rand
}

// NewInMemoryGameStore constructs an InMemoryGameStore
func NewInMemoryGameStore() *InMemoryGameStore {
	return &InMemoryGameStore{
		games: map[string]*engine.GameEngine{},
		rng:   game.NewRand(),
	}
}

func (s *InMemoryGameStore) FindGame(gameID string) *engine.GameEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.games[gameID]
}

func (s *InMemoryGameStore) AddGame(ge *engine.GameEngine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[ge.ID()]; exists {
		return ErrFnDuplicateGameID(ge.ID())
	}

	s.games[ge.ID()] = ge
	return nil
}

// RemoveGame drops a room and reports whether it was there
func (s *InMemoryGameStore) RemoveGame(gameID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.games[gameID]
	delete(s.games, gameID)
	return ok
}

// Games lists every room
func (s *InMemoryGameStore) Games() []*engine.GameEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*engine.GameEngine, 0, len(s.games))
	for _, ge := range s.games {
		out = append(out, ge)
	}
	return out
}

func (s *InMemoryGameStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.games)
}

// NewGameID returns a six letter code that no current room is using
func (s *InMemoryGameStore) NewGameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		code := make([]byte, gameIDLength)
		for i := range code {
			code[i] = gameIDLetters[s.rng.Intn(len(gameIDLetters))]
		}
		if _, taken := s.games[string(code)]; !taken {
			return string(code)
		}
	}
}
