// internal/replay/types.go
//
// Wire types for a submitted game: the move union, the game context union,
// and the completed-game envelope. Moves are the full replayable history of
// a game; the server recomputes every score from them and never trusts the
// client's totals.

package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lexicube/go-server/internal/puzzle"
)

// GameMode distinguishes timed and untimed play.
type GameMode string

const (
	ModeTimed     GameMode = "timed"
	ModeUnlimited GameMode = "unlimited"
)

// Valid reports whether m is a known game mode.
func (m GameMode) Valid() bool { return m == ModeTimed || m == ModeUnlimited }

// ContextKind enumerates the game context variants.
type ContextKind string

const (
	ContextSolo           ContextKind = "solo"
	ContextDailyChallenge ContextKind = "dailyChallenge"
	ContextShared         ContextKind = "shared"
	ContextTurnBased      ContextKind = "turnBased"
)

// GameContext says where a game came from. Daily-challenge games carry the
// challenge id, shared games the share code.
type GameContext struct {
	Kind ContextKind
	ID   string // challenge id or share code, empty otherwise
}

// MarshalJSON encodes solo/turnBased as a bare string and the id-carrying
// variants as single-key objects.
func (c GameContext) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ContextSolo, ContextTurnBased:
		return json.Marshal(string(c.Kind))
	case ContextDailyChallenge:
		return json.Marshal(map[string]string{"dailyChallengeId": c.ID})
	case ContextShared:
		return json.Marshal(map[string]string{"sharedGameCode": c.ID})
	}
	return nil, fmt.Errorf("unknown game context %q", c.Kind)
}

// UnmarshalJSON accepts "solo", "turnBased", {"dailyChallengeId":...} or
// {"sharedGameCode":...}.
func (c *GameContext) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch ContextKind(s) {
		case ContextSolo, ContextTurnBased:
			*c = GameContext{Kind: ContextKind(s)}
			return nil
		}
		return fmt.Errorf("unknown game context %q", s)
	}
	var obj map[string]string
	if err := json.Unmarshal(b, &obj); err != nil {
		return errors.New("malformed game context")
	}
	if id, ok := obj["dailyChallengeId"]; ok {
		*c = GameContext{Kind: ContextDailyChallenge, ID: id}
		return nil
	}
	if code, ok := obj["sharedGameCode"]; ok {
		*c = GameContext{Kind: ContextShared, ID: code}
		return nil
	}
	return errors.New("malformed game context")
}

// MoveType is a tagged union: exactly one of PlayedWord or RemovedCube is set.
type MoveType struct {
	PlayedWord  []puzzle.IndexedCubeFace
	RemovedCube *puzzle.LatticePoint
}

// MarshalJSON encodes the populated variant as a single-key object.
func (t MoveType) MarshalJSON() ([]byte, error) {
	switch {
	case t.PlayedWord != nil && t.RemovedCube == nil:
		return json.Marshal(map[string]any{"playedWord": t.PlayedWord})
	case t.RemovedCube != nil && t.PlayedWord == nil:
		return json.Marshal(map[string]any{"removedCube": t.RemovedCube})
	}
	return nil, errors.New("move type must have exactly one variant")
}

// UnmarshalJSON decodes a single-key {"playedWord":...} or {"removedCube":...}.
func (t *MoveType) UnmarshalJSON(b []byte) error {
	var raw struct {
		PlayedWord  []puzzle.IndexedCubeFace `json:"playedWord"`
		RemovedCube *puzzle.LatticePoint     `json:"removedCube"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if (raw.PlayedWord == nil) == (raw.RemovedCube == nil) {
		return errors.New("move type must have exactly one variant")
	}
	t.PlayedWord = raw.PlayedWord
	t.RemovedCube = raw.RemovedCube
	return nil
}

// Move is one entry in a game's append-only history.
type Move struct {
	PlayedAt    time.Time      `json:"playedAt"`
	PlayerIndex *int           `json:"playerIndex,omitempty"`
	Score       int            `json:"score"`
	Type        MoveType       `json:"type"`
	Reactions   map[int]string `json:"reactions,omitempty"`
}

// Moves is the ordered, replayable move history of one game.
type Moves []Move

// CompletedGame is the submission envelope a client sends when a game ends.
type CompletedGame struct {
	Cubes         puzzle.Puzzle `json:"cubes"`
	GameContext   GameContext   `json:"gameContext"`
	GameMode      GameMode      `json:"gameMode"`
	Language      string        `json:"language"`
	Moves         Moves         `json:"moves"`
	SecondsPlayed int           `json:"secondsPlayed"`
}
