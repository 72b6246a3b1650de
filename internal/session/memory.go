// internal/session/memory.go
//
// In-memory store for provisioned in-progress games, used by the daily
// challenge orchestrator between Start and submission.
//
// Characteristics:
//   - Stores *Game objects keyed by ID, with a secondary player|challenge key.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; a restarted player simply
//     starts the challenge again, which is allowed until a ranked result
//     exists.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lexicube/go-server/internal/puzzle"
)

// Game is one provisioned in-progress game.
type Game struct {
	ID          string        `json:"id"`
	PlayerID    string        `json:"playerId"`
	ChallengeID string        `json:"challengeId"`
	GameMode    string        `json:"gameMode"`
	Language    string        `json:"language"`
	Puzzle      puzzle.Puzzle `json:"puzzle"`
	StartedAt   time.Time     `json:"startedAt"`
}

// ErrNotFound is returned when no matching game exists.
var ErrNotFound = errors.New("session: not found")

// Store defines the persistence interface for in-progress games.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	Save(ctx context.Context, g *Game) error
	Get(ctx context.Context, id string) (*Game, error)
	// Find returns the player's in-progress game for a challenge, if any.
	Find(ctx context.Context, playerID, challengeID string) (*Game, error)
	Delete(ctx context.Context, id string)
}

type memory struct {
	mu     sync.RWMutex
	games  map[string]*Game  // keyed by Game.ID
	byPair map[string]string // playerID|challengeID -> Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*Game), byPair: make(map[string]string)}
}

func pairKey(playerID, challengeID string) string { return playerID + "|" + challengeID }

func (m *memory) Save(ctx context.Context, g *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	m.byPair[pairKey(g.PlayerID, g.ChallengeID)] = g.ID
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Find(ctx context.Context, playerID, challengeID string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byPair[pairKey(playerID, challengeID)]; ok {
		if g, ok := m.games[id]; ok {
			return g, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[id]; ok {
		delete(m.byPair, pairKey(g.PlayerID, g.ChallengeID))
		delete(m.games, id)
	}
}
