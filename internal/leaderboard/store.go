// internal/leaderboard/store.go
//
// Leaderboard aggregation engine.
//
// Scores are persisted one atomic INSERT per submission; ranks are computed
// per query against a consistent snapshot (SQLite serializes writers, and a
// single SELECT sees no half-committed rows). Rank within a window is
// 1 + the number of rows strictly ahead: higher score, or equal score with
// an earlier submission. Timestamps are RFC3339 UTC strings, which order
// lexicographically, matching the schema's TEXT columns.

package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TimeScope selects the rolling window a rank is computed over.
type TimeScope string

const (
	ScopeAllTime  TimeScope = "allTime"
	ScopeLastDay  TimeScope = "lastDay"
	ScopeLastWeek TimeScope = "lastWeek"
)

// Scopes lists every supported scope, in response order.
func Scopes() []TimeScope {
	return []TimeScope{ScopeAllTime, ScopeLastDay, ScopeLastWeek}
}

// Valid reports whether s is a known scope.
func (s TimeScope) Valid() bool {
	return s == ScopeAllTime || s == ScopeLastDay || s == ScopeLastWeek
}

// windowStart returns the inclusive lower bound of the scope's window,
// anchored at now. ok is false for the unbounded all-time scope.
func (s TimeScope) windowStart(now time.Time) (string, bool) {
	switch s {
	case ScopeLastDay:
		return Timestamp(now.Add(-24 * time.Hour)), true
	case ScopeLastWeek:
		return Timestamp(now.Add(-7 * 24 * time.Hour)), true
	}
	return "", false
}

// Timestamp formats t the way every store column stores time.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Rank is a player's position within a window: rank of outOf.
type Rank struct {
	Rank  int `json:"rank"`
	OutOf int `json:"outOf"`
}

// Score matches the leaderboard_scores table shape.
type Score struct {
	ID               string  `db:"id" json:"id"`
	PlayerID         *string `db:"player_id" json:"playerId,omitempty"`
	GameMode         string  `db:"game_mode" json:"gameMode"`
	Language         string  `db:"language" json:"language"`
	GameContext      string  `db:"game_context" json:"gameContext"`
	DailyChallengeID *string `db:"daily_challenge_id" json:"dailyChallengeId,omitempty"`
	Score            int     `db:"score" json:"score"`
	CreatedAt        string  `db:"created_at" json:"createdAt"`
}

// VocabWord is the best recorded play of one word.
type VocabWord struct {
	ID        string  `db:"id" json:"id"`
	Word      string  `db:"word" json:"word"`
	Language  string  `db:"language" json:"language"`
	Score     int     `db:"score" json:"score"`
	PlayerID  *string `db:"player_id" json:"playerId,omitempty"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
}

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("leaderboard: not found")

// Store persists scores and computes ranks.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps a migrated database handle.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// SubmitScore inserts one score row. Fills ID and CreatedAt when unset.
func (s *Store) SubmitScore(ctx context.Context, row *Score) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt == "" {
		row.CreatedAt = Timestamp(time.Now())
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO leaderboard_scores
			(id, player_id, game_mode, language, game_context, daily_challenge_id, score, created_at)
		VALUES
			(:id, :player_id, :game_mode, :language, :game_context, :daily_challenge_id, :score, :created_at)`,
		row)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// FetchRank computes the rank of a score submitted at createdAt within one
// scope's window, anchored at now. Ties break toward the earlier submission.
func (s *Store) FetchRank(ctx context.Context, gameMode, language string, scope TimeScope, score int, createdAt string, now time.Time) (Rank, error) {
	where := `game_mode=? AND language=?`
	args := []any{gameMode, language}
	if since, ok := scope.windowStart(now); ok {
		where += ` AND created_at >= ?`
		args = append(args, since)
	}

	var outOf int
	if err := s.db.GetContext(ctx, &outOf,
		`SELECT COUNT(*) FROM leaderboard_scores WHERE `+where, args...); err != nil {
		return Rank{}, fmt.Errorf("count window: %w", err)
	}

	var ahead int
	aheadArgs := append(append([]any{}, args...), score, score, createdAt)
	if err := s.db.GetContext(ctx, &ahead,
		`SELECT COUNT(*) FROM leaderboard_scores WHERE `+where+
			` AND (score > ? OR (score = ? AND created_at < ?))`, aheadArgs...); err != nil {
		return Rank{}, fmt.Errorf("count ahead: %w", err)
	}
	return Rank{Rank: ahead + 1, OutOf: outOf}, nil
}

// FetchRanks computes the rank for every supported scope.
func (s *Store) FetchRanks(ctx context.Context, gameMode, language string, score int, createdAt string, now time.Time) (map[TimeScope]Rank, error) {
	out := make(map[TimeScope]Rank, len(Scopes()))
	for _, scope := range Scopes() {
		r, err := s.FetchRank(ctx, gameMode, language, scope, score, createdAt, now)
		if err != nil {
			return nil, err
		}
		out[scope] = r
	}
	return out, nil
}

// TopScores lists the best scores in a window, best first, ties oldest first.
func (s *Store) TopScores(ctx context.Context, gameMode, language string, scope TimeScope, limit int, now time.Time) ([]Score, error) {
	if limit <= 0 {
		limit = 20
	}
	where := `game_mode=? AND language=?`
	args := []any{gameMode, language}
	if since, ok := scope.windowStart(now); ok {
		where += ` AND created_at >= ?`
		args = append(args, since)
	}
	args = append(args, limit)

	var out []Score
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, player_id, game_mode, language, game_context, daily_challenge_id, score, created_at
		FROM leaderboard_scores
		WHERE `+where+`
		ORDER BY score DESC, created_at ASC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	return out, nil
}

// RecordWordPlay records a play of word, keeping only the best score per
// (word, language). Lower or equal scores leave the existing row in place.
func (s *Store) RecordWordPlay(ctx context.Context, word, language string, score int, playerID *string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vocab_words (id, word, language, score, player_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(word, language) DO UPDATE SET
			score = excluded.score,
			player_id = excluded.player_id,
			created_at = excluded.created_at
		WHERE excluded.score > vocab_words.score`,
		uuid.NewString(), word, language, score, playerID, Timestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("record word play: %w", err)
	}
	return nil
}

// FetchVocabWord loads the best play of a word by row id.
func (s *Store) FetchVocabWord(ctx context.Context, id string) (*VocabWord, error) {
	var v VocabWord
	err := s.db.GetContext(ctx, &v, `
		SELECT id, word, language, score, player_id, created_at
		FROM vocab_words WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch vocab word: %w", err)
	}
	return &v, nil
}
