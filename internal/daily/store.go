// internal/daily/store.go
//
// Persistence for daily challenges, per-player results, and push devices.
// Challenges are created lazily and idempotently: GetOrCreate races resolve
// through the UNIQUE(date, game_mode, language) constraint, so concurrent
// requests and the scheduled creator all converge on one row.

package daily

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lexicube/go-server/internal/leaderboard"
	"github.com/lexicube/go-server/internal/puzzle"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("daily: not found")

// Challenge matches the daily_challenges table shape.
type Challenge struct {
	ID         string `db:"id" json:"id"`
	Date       string `db:"date" json:"date"`
	GameMode   string `db:"game_mode" json:"gameMode"`
	Language   string `db:"language" json:"language"`
	PuzzleJSON string `db:"puzzle_json" json:"-"`
	CreatedAt  string `db:"created_at" json:"createdAt"`
	EndsAt     string `db:"ends_at" json:"endsAt"`
}

// Puzzle decodes the stored puzzle.
func (c *Challenge) Puzzle() (puzzle.Puzzle, error) {
	var p puzzle.Puzzle
	if err := json.Unmarshal([]byte(c.PuzzleJSON), &p); err != nil {
		return p, fmt.Errorf("decode challenge puzzle: %w", err)
	}
	return p, nil
}

// EndsAtTime parses the challenge end timestamp.
func (c *Challenge) EndsAtTime() time.Time {
	t, _ := time.Parse(time.RFC3339, c.EndsAt)
	return t
}

// Result is one player's ranked result for a challenge.
type Result struct {
	ChallengeID string `db:"daily_challenge_id" json:"challengeId"`
	PlayerID    string `db:"player_id" json:"playerId"`
	Score       int    `db:"score" json:"score"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

// Device is a registered push target.
type Device struct {
	PlayerID string `db:"player_id"`
	ARN      string `db:"arn"`
}

// HistoryRow is one past challenge with the player's outcome.
type HistoryRow struct {
	Date     string           `json:"date"`
	GameMode string           `json:"gameMode"`
	Score    int              `json:"score"`
	Rank     leaderboard.Rank `json:"rank"`
}

// Store persists challenges and results.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps a migrated database handle.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// GetOrCreate returns the challenge for (date, mode, language), creating it
// with a deterministically generated puzzle when missing.
func (s *Store) GetOrCreate(ctx context.Context, date time.Time, gameMode, language, salt string) (*Challenge, error) {
	key := DateKey(date)
	p := puzzle.Generate(Seed(date, salt, gameMode, language))
	pj, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode puzzle: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO daily_challenges
			(id, date, game_mode, language, puzzle_json, created_at, ends_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), key, gameMode, language, string(pj),
		leaderboard.Timestamp(date), leaderboard.Timestamp(EndsAt(date)))
	if err != nil {
		return nil, fmt.Errorf("insert challenge: %w", err)
	}
	return s.Find(ctx, key, gameMode, language)
}

// Get loads a challenge by id.
func (s *Store) Get(ctx context.Context, id string) (*Challenge, error) {
	var c Challenge
	err := s.db.GetContext(ctx, &c, `
		SELECT id, date, game_mode, language, puzzle_json, created_at, ends_at
		FROM daily_challenges WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return &c, nil
}

// Find loads a challenge by its natural key.
func (s *Store) Find(ctx context.Context, dateKey, gameMode, language string) (*Challenge, error) {
	var c Challenge
	err := s.db.GetContext(ctx, &c, `
		SELECT id, date, game_mode, language, puzzle_json, created_at, ends_at
		FROM daily_challenges WHERE date=? AND game_mode=? AND language=?`,
		dateKey, gameMode, language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find challenge: %w", err)
	}
	return &c, nil
}

// Active lists challenges that have not ended yet.
func (s *Store) Active(ctx context.Context, now time.Time) ([]Challenge, error) {
	var out []Challenge
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, date, game_mode, language, puzzle_json, created_at, ends_at
		FROM daily_challenges WHERE ends_at > ?
		ORDER BY date, game_mode`, leaderboard.Timestamp(now))
	if err != nil {
		return nil, fmt.Errorf("active challenges: %w", err)
	}
	return out, nil
}

// InsertResult records a player's result once; later inserts for the same
// (challenge, player) are ignored, keeping the first ranked result.
func (s *Store) InsertResult(ctx context.Context, challengeID, playerID string, score int, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO daily_challenge_results
			(daily_challenge_id, player_id, score, created_at)
		VALUES (?, ?, ?, ?)`,
		challengeID, playerID, score, leaderboard.Timestamp(at))
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// HasResult reports whether the player already has a ranked result.
func (s *Store) HasResult(ctx context.Context, challengeID, playerID string) (bool, error) {
	var cnt int
	err := s.db.GetContext(ctx, &cnt, `
		SELECT COUNT(1) FROM daily_challenge_results
		WHERE daily_challenge_id=? AND player_id=?`, challengeID, playerID)
	if err != nil {
		return false, fmt.Errorf("has result: %w", err)
	}
	return cnt > 0, nil
}

// ResultRank computes the player's rank within one challenge. Higher scores
// rank first; ties break toward the earlier submission. ok is false when the
// player has no result.
func (s *Store) ResultRank(ctx context.Context, challengeID, playerID string) (leaderboard.Rank, bool, error) {
	var mine Result
	err := s.db.GetContext(ctx, &mine, `
		SELECT daily_challenge_id, player_id, score, created_at
		FROM daily_challenge_results
		WHERE daily_challenge_id=? AND player_id=?`, challengeID, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return leaderboard.Rank{}, false, nil
	}
	if err != nil {
		return leaderboard.Rank{}, false, fmt.Errorf("result rank: %w", err)
	}

	var outOf, ahead int
	if err := s.db.GetContext(ctx, &outOf, `
		SELECT COUNT(*) FROM daily_challenge_results
		WHERE daily_challenge_id=?`, challengeID); err != nil {
		return leaderboard.Rank{}, false, fmt.Errorf("result rank: %w", err)
	}
	if err := s.db.GetContext(ctx, &ahead, `
		SELECT COUNT(*) FROM daily_challenge_results
		WHERE daily_challenge_id=? AND (score > ? OR (score = ? AND created_at < ?))`,
		challengeID, mine.Score, mine.Score, mine.CreatedAt); err != nil {
		return leaderboard.Rank{}, false, fmt.Errorf("result rank: %w", err)
	}
	return leaderboard.Rank{Rank: ahead + 1, OutOf: outOf}, true, nil
}

// Results lists a challenge's results, best first.
func (s *Store) Results(ctx context.Context, challengeID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []Result
	err := s.db.SelectContext(ctx, &out, `
		SELECT daily_challenge_id, player_id, score, created_at
		FROM daily_challenge_results
		WHERE daily_challenge_id=?
		ORDER BY score DESC, created_at ASC
		LIMIT ?`, challengeID, limit)
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	return out, nil
}

// ResultPlayers lists the distinct players with a result for any of the
// given challenges.
func (s *Store) ResultPlayers(ctx context.Context, challengeIDs []string) ([]string, error) {
	if len(challengeIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT DISTINCT player_id FROM daily_challenge_results
		WHERE daily_challenge_id IN (?)`, challengeIDs)
	if err != nil {
		return nil, fmt.Errorf("result players: %w", err)
	}
	var out []string
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("result players: %w", err)
	}
	return out, nil
}

// History returns the player's past challenge outcomes, newest first.
func (s *Store) History(ctx context.Context, playerID, language string, limit int) ([]HistoryRow, error) {
	if limit <= 0 {
		limit = 30
	}
	type row struct {
		ChallengeID string `db:"id"`
		Date        string `db:"date"`
		GameMode    string `db:"game_mode"`
		Score       int    `db:"score"`
	}
	var rows []row
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.date, c.game_mode, r.score
		FROM daily_challenge_results r
		JOIN daily_challenges c ON c.id = r.daily_challenge_id
		WHERE r.player_id=? AND c.language=?
		ORDER BY c.date DESC, c.game_mode
		LIMIT ?`, playerID, language, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	out := make([]HistoryRow, 0, len(rows))
	for _, r := range rows {
		rank, _, err := s.ResultRank(ctx, r.ChallengeID, playerID)
		if err != nil {
			return nil, err
		}
		out = append(out, HistoryRow{Date: r.Date, GameMode: r.GameMode, Score: r.Score, Rank: rank})
	}
	return out, nil
}

// Devices lists every registered push device, or only those belonging to
// playerIDs when non-empty.
func (s *Store) Devices(ctx context.Context, playerIDs []string) ([]Device, error) {
	var out []Device
	if len(playerIDs) == 0 {
		err := s.db.SelectContext(ctx, &out, `SELECT player_id, arn FROM push_devices`)
		if err != nil {
			return nil, fmt.Errorf("devices: %w", err)
		}
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT player_id, arn FROM push_devices WHERE player_id IN (?)`, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("devices: %w", err)
	}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("devices: %w", err)
	}
	return out, nil
}
