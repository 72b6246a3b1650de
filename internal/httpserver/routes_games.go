// internal/httpserver/routes_games.go
//
// Game submission and leaderboard endpoints.
//
// A submission is replayed server-side against the authoritative puzzle for
// its context before anything is persisted: daily and shared games use the
// server-stored puzzle (never the client-supplied cubes), solo and demo
// games use the submitted cubes since the only leaderboard integrity at
// stake is the player's own score, which replay re-validates regardless.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/lexicube/go-server/internal/daily"
	"github.com/lexicube/go-server/internal/leaderboard"
	"github.com/lexicube/go-server/internal/puzzle"
	"github.com/lexicube/go-server/internal/replay"
)

// submitRes is the success payload for game submissions.
type submitRes struct {
	Score     int                                        `json:"score"`
	Ranks     map[leaderboard.TimeScope]leaderboard.Rank `json:"ranks"`
	DailyRank *leaderboard.Rank                          `json:"dailyRank,omitempty"`
}

// submitGame validates and persists one completed game, then responds with
// the recomputed score and its ranks. Any validation failure rejects the
// whole submission; nothing is partially applied.
func (s *Server) submitGame(w http.ResponseWriter, r *http.Request) {
	var g replay.CompletedGame
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if !g.GameMode.Valid() || g.Language == "" || len(g.Moves) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_submission")
		return
	}

	ctx := r.Context()
	me := currentPlayer(r)
	now := time.Now()

	// Resolve the authoritative puzzle for the context.
	p := g.Cubes
	var challenge *daily.Challenge
	switch g.GameContext.Kind {
	case replay.ContextSolo, replay.ContextTurnBased:
		// client-supplied cubes

	case replay.ContextDailyChallenge:
		if me == nil {
			writeError(w, http.StatusUnauthorized, "daily challenge requires a player")
			return
		}
		ch, err := s.daily.Store.Get(ctx, g.GameContext.ID)
		if errors.Is(err, daily.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown daily challenge")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("load daily challenge")
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		if now.After(ch.EndsAtTime()) {
			writeError(w, http.StatusBadRequest, "daily challenge has ended")
			return
		}
		// The challenge row is authoritative for mode and language too.
		if string(g.GameMode) != ch.GameMode || g.Language != ch.Language {
			writeError(w, http.StatusBadRequest, "submission does not match the challenge")
			return
		}
		played, err := s.daily.Store.HasResult(ctx, ch.ID, me.ID)
		if err != nil {
			log.Error().Err(err).Msg("check daily result")
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		if played {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":  "alreadyPlayed",
				"endsAt": ch.EndsAt,
			})
			return
		}
		if p, err = ch.Puzzle(); err != nil {
			log.Error().Err(err).Str("challengeId", ch.ID).Msg("decode challenge puzzle")
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		challenge = ch

	case replay.ContextShared:
		sp, err := s.loadSharedPuzzle(ctx, g.GameContext.ID)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "unknown shared game")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("load shared game")
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		p = sp

	default:
		writeError(w, http.StatusBadRequest, "unknown game context")
		return
	}

	total, err := replay.Replay(p, g.Moves, s.dict, g.Language)
	if err != nil {
		var verr *replay.ValidationError
		if errors.As(err, &verr) {
			validationFailures.WithLabelValues(string(verr.Reason)).Inc()
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		log.Error().Err(err).Msg("replay")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	var playerID *string
	if me != nil {
		playerID = &me.ID
	}
	var challengeID *string
	if challenge != nil {
		challengeID = &challenge.ID
	}

	row := &leaderboard.Score{
		PlayerID:         playerID,
		GameMode:         string(g.GameMode),
		Language:         g.Language,
		GameContext:      string(g.GameContext.Kind),
		DailyChallengeID: challengeID,
		Score:            total,
		CreatedAt:        leaderboard.Timestamp(now),
	}
	if err := s.scores.SubmitScore(ctx, row); err != nil {
		log.Error().Err(err).Msg("persist score")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	// Word-level leaderboard (best effort, non-fatal if it fails).
	for _, wp := range replay.WordsPlayed(p, g.Moves) {
		if err := s.scores.RecordWordPlay(ctx, wp.Word, g.Language, wp.Score, playerID); err != nil {
			log.Warn().Err(err).Str("word", wp.Word).Msg("record word play")
		}
	}

	res := submitRes{Score: total}

	if challenge != nil && me != nil {
		if err := s.daily.Store.InsertResult(ctx, challenge.ID, me.ID, total, now); err != nil {
			log.Error().Err(err).Msg("persist daily result")
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		if rank, ok, err := s.daily.Store.ResultRank(ctx, challenge.ID, me.ID); err == nil && ok {
			res.DailyRank = &rank
		}
		// The in-progress session is spent once a result exists.
		if sess, err := s.daily.Sessions.Find(ctx, me.ID, challenge.ID); err == nil {
			s.daily.Sessions.Delete(ctx, sess.ID)
		}
	}

	ranks, err := s.scores.FetchRanks(ctx, row.GameMode, row.Language, total, row.CreatedAt, now)
	if err != nil {
		log.Error().Err(err).Msg("fetch ranks")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	res.Ranks = ranks

	submissionsTotal.WithLabelValues(row.GameMode, row.GameContext).Inc()
	_ = json.NewEncoder(w).Encode(res)
}

// ---------------------------- leaderboards ---------------------------------

// topScoresQuery is decoded from GET query parameters.
type topScoresQuery struct {
	GameMode  string `schema:"gameMode"`
	Language  string `schema:"language"`
	TimeScope string `schema:"timeScope"`
	Limit     int    `schema:"limit"`
}

// handleTopScores lists the best scores for a (mode, language, scope) window.
func (s *Server) handleTopScores(w http.ResponseWriter, r *http.Request) {
	q := topScoresQuery{GameMode: "timed", Language: "en", TimeScope: string(leaderboard.ScopeAllTime)}
	if err := s.decoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "bad_query")
		return
	}
	scope := leaderboard.TimeScope(q.TimeScope)
	if !scope.Valid() {
		writeError(w, http.StatusBadRequest, "unknown time scope")
		return
	}
	rows, err := s.scores.TopScores(r.Context(), q.GameMode, q.Language, scope, q.Limit, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("top scores")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"scores": rows})
}

// handleVocabWord returns the best recorded play of a word by id.
func (s *Server) handleVocabWord(w http.ResponseWriter, r *http.Request) {
	v, err := s.scores.FetchVocabWord(r.Context(), chi.URLParam(r, "wordId"))
	if errors.Is(err, leaderboard.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown word")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("fetch vocab word")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// ---------------------------- shared games ---------------------------------

type shareReq struct {
	Puzzle puzzle.Puzzle `json:"puzzle"`
	Moves  replay.Moves  `json:"moves"`
}

// handleShareGame stores a puzzle under a fresh share code.
func (s *Server) handleShareGame(w http.ResponseWriter, r *http.Request) {
	var req shareReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	pj, err := json.Marshal(req.Puzzle)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_puzzle")
		return
	}
	mj, err := json.Marshal(req.Moves)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_moves")
		return
	}

	// Short codes can collide; draw a fresh one and try again.
	var code string
	for attempt := 0; ; attempt++ {
		code = uuid.NewString()[:8]
		_, err := s.db.ExecContext(r.Context(), `
			INSERT INTO shared_games (code, puzzle_json, moves_json, created_at)
			VALUES (?, ?, ?, ?)`,
			code, string(pj), string(mj), leaderboard.Timestamp(time.Now()))
		if err == nil {
			break
		}
		if isUniqueViolation(err) && attempt < 3 {
			continue
		}
		log.Error().Err(err).Msg("insert shared game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code})
}

// handleGetSharedGame returns the stored puzzle and moves for a share code.
func (s *Server) handleGetSharedGame(w http.ResponseWriter, r *http.Request) {
	var row struct {
		PuzzleJSON string `db:"puzzle_json"`
		MovesJSON  string `db:"moves_json"`
	}
	err := s.db.GetContext(r.Context(), &row,
		`SELECT puzzle_json, moves_json FROM shared_games WHERE code=?`, chi.URLParam(r, "code"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "unknown shared game")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load shared game")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]json.RawMessage{
		"puzzle": json.RawMessage(row.PuzzleJSON),
		"moves":  json.RawMessage(row.MovesJSON),
	})
}

// isUniqueViolation reports whether err is a sqlite unique or primary key
// constraint failure.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		serr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// loadSharedPuzzle fetches and decodes the puzzle stored under code.
func (s *Server) loadSharedPuzzle(ctx context.Context, code string) (puzzle.Puzzle, error) {
	var pj string
	if err := s.db.GetContext(ctx, &pj,
		`SELECT puzzle_json FROM shared_games WHERE code=?`, code); err != nil {
		return puzzle.Puzzle{}, err
	}
	var p puzzle.Puzzle
	if err := json.Unmarshal([]byte(pj), &p); err != nil {
		return puzzle.Puzzle{}, err
	}
	return p, nil
}
