// internal/daily/orchestrator.go
//
// Start/Today orchestration for the daily challenge. A challenge moves
// through NotYetCreated -> Active -> Ended; GetOrCreate covers the first
// transition lazily, EndsAt the second. Starting is refused once a player
// has a ranked result for the day.

package daily

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexicube/go-server/internal/session"
)

// AlreadyPlayedError is returned when the player already has a ranked result
// for today's challenge.
type AlreadyPlayedError struct {
	EndsAt time.Time
}

func (e *AlreadyPlayedError) Error() string {
	return fmt.Sprintf("daily challenge already played, ends at %s", e.EndsAt.Format(time.RFC3339))
}

// CouldNotFetchError is returned when today's challenge cannot be
// provisioned.
type CouldNotFetchError struct {
	NextStartsAt time.Time
}

func (e *CouldNotFetchError) Error() string {
	return fmt.Sprintf("could not fetch daily challenge, next starts at %s", e.NextStartsAt.Format(time.RFC3339))
}

// GameModes lists the modes a challenge exists for each day.
var GameModes = []string{"timed", "unlimited"}

// Orchestrator provisions in-progress daily challenge games.
type Orchestrator struct {
	Store    *Store
	Sessions session.Store
	Salt     string
}

// Today returns (creating if needed) today's challenges for a language,
// one per game mode.
func (o *Orchestrator) Today(ctx context.Context, language string, now time.Time) ([]*Challenge, error) {
	out := make([]*Challenge, 0, len(GameModes))
	for _, mode := range GameModes {
		ch, err := o.Store.GetOrCreate(ctx, now, mode, language, o.Salt)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

// Start provisions an in-progress game for today's challenge.
//   - AlreadyPlayedError when the player has a ranked result for today.
//   - CouldNotFetchError when the challenge cannot be provisioned.
//   - Otherwise the player's existing in-progress game, or a fresh one tied
//     to the day's puzzle.
func (o *Orchestrator) Start(ctx context.Context, playerID, gameMode, language string, now time.Time) (*session.Game, error) {
	ch, err := o.Store.GetOrCreate(ctx, now, gameMode, language, o.Salt)
	if err != nil {
		return nil, &CouldNotFetchError{NextStartsAt: NextStartsAt(now)}
	}

	played, err := o.Store.HasResult(ctx, ch.ID, playerID)
	if err != nil {
		return nil, &CouldNotFetchError{NextStartsAt: NextStartsAt(now)}
	}
	if played {
		return nil, &AlreadyPlayedError{EndsAt: ch.EndsAtTime()}
	}

	if existing, err := o.Sessions.Find(ctx, playerID, ch.ID); err == nil {
		return existing, nil
	}

	p, err := ch.Puzzle()
	if err != nil {
		return nil, &CouldNotFetchError{NextStartsAt: NextStartsAt(now)}
	}
	g := &session.Game{
		ID:          uuid.NewString(),
		PlayerID:    playerID,
		ChallengeID: ch.ID,
		GameMode:    gameMode,
		Language:    language,
		Puzzle:      p,
		StartedAt:   now,
	}
	if err := o.Sessions.Save(ctx, g); err != nil {
		return nil, &CouldNotFetchError{NextStartsAt: NextStartsAt(now)}
	}
	return g, nil
}
