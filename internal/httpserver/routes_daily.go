// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily challenge, mounted under /api (player required):
//   - GET  /daily-challenges/today    → today's challenges (both modes) + player state
//   - POST /daily-challenges/start    → provision an in-progress game
//   - GET  /daily-challenges/results  → ranked results for one challenge
//   - GET  /daily-challenges/history  → the player's past outcomes
//
// Each player gets one ranked result per challenge (enforced by the results
// table primary key); starting again after a ranked result is a typed
// conflict carrying when the challenge ends.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lexicube/go-server/internal/daily"
	"github.com/lexicube/go-server/internal/leaderboard"
)

// mountDaily registers all /daily-challenges routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily-challenges", func(r chi.Router) {
		r.Get("/today", s.handleDailyToday)
		r.Post("/start", s.handleDailyStart)
		r.Get("/results", s.handleDailyResults)
		r.Get("/history", s.handleDailyHistory)
	})
}

// dailyQuery is decoded from GET query parameters.
type dailyQuery struct {
	GameMode string `schema:"gameMode"`
	Language string `schema:"language"`
	Date     string `schema:"date"`
}

// todayChallengeRes describes one of today's challenges for the caller.
type todayChallengeRes struct {
	ID       string            `json:"id"`
	GameMode string            `json:"gameMode"`
	Language string            `json:"language"`
	EndsAt   string            `json:"endsAt"`
	Played   bool              `json:"played"`
	Rank     *leaderboard.Rank `json:"rank,omitempty"`
}

// handleDailyToday returns today's challenges for a language, one per mode,
// with the caller's played state and rank.
func (s *Server) handleDailyToday(w http.ResponseWriter, r *http.Request) {
	q := dailyQuery{Language: "en"}
	if err := s.decoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "bad_query")
		return
	}
	me := currentPlayer(r)

	challenges, err := s.daily.Today(r.Context(), q.Language, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("today's challenges")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	out := make([]todayChallengeRes, 0, len(challenges))
	for _, ch := range challenges {
		res := todayChallengeRes{
			ID:       ch.ID,
			GameMode: ch.GameMode,
			Language: ch.Language,
			EndsAt:   ch.EndsAt,
		}
		if rank, played, err := s.daily.Store.ResultRank(r.Context(), ch.ID, me.ID); err == nil && played {
			res.Played = true
			res.Rank = &rank
		}
		out = append(out, res)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"challenges": out})
}

// startReq is the body for POST /daily-challenges/start.
type startReq struct {
	GameMode string `json:"gameMode"`
	Language string `json:"language"`
}

// handleDailyStart provisions (or returns the existing) in-progress game for
// today's challenge.
func (s *Server) handleDailyStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.GameMode == "" {
		req.GameMode = "unlimited"
	}
	if req.Language == "" {
		req.Language = "en"
	}
	me := currentPlayer(r)

	game, err := s.daily.Start(r.Context(), me.ID, req.GameMode, req.Language, time.Now())
	if err != nil {
		var already *daily.AlreadyPlayedError
		if errors.As(err, &already) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":  "alreadyPlayed",
				"endsAt": already.EndsAt.Format(time.RFC3339),
			})
			return
		}
		var fetch *daily.CouldNotFetchError
		if errors.As(err, &fetch) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":        "couldNotFetch",
				"nextStartsAt": fetch.NextStartsAt.Format(time.RFC3339),
			})
			return
		}
		log.Error().Err(err).Msg("start daily challenge")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(game)
}

// handleDailyResults returns the ranked results of one challenge (today's by
// default, or a past date) plus the caller's own rank.
func (s *Server) handleDailyResults(w http.ResponseWriter, r *http.Request) {
	q := dailyQuery{GameMode: "unlimited", Language: "en"}
	if err := s.decoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "bad_query")
		return
	}
	if q.Date == "" {
		q.Date = daily.DateKey(time.Now())
	}
	me := currentPlayer(r)

	ch, err := s.daily.Store.Find(r.Context(), q.Date, q.GameMode, q.Language)
	if errors.Is(err, daily.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown daily challenge")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("find daily challenge")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	results, err := s.daily.Store.Results(r.Context(), ch.ID, 20)
	if err != nil {
		log.Error().Err(err).Msg("daily results")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	out := map[string]any{"challengeId": ch.ID, "date": ch.Date, "results": results}
	if rank, played, err := s.daily.Store.ResultRank(r.Context(), ch.ID, me.ID); err == nil && played {
		out["yourRank"] = rank
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleDailyHistory returns the caller's past challenge outcomes.
func (s *Server) handleDailyHistory(w http.ResponseWriter, r *http.Request) {
	q := dailyQuery{Language: "en"}
	if err := s.decoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "bad_query")
		return
	}
	me := currentPlayer(r)

	rows, err := s.daily.Store.History(r.Context(), me.ID, q.Language, 30)
	if err != nil {
		log.Error().Err(err).Msg("daily history")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"history": rows})
}
