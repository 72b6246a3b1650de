// internal/httpserver/server.go
//
// HTTP server wiring for the cube word game backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     forwarded headers, rate limiting, Prometheus instrumentation).
//   - Public endpoints: "/", "/health", "/metrics", shared game lookup,
//     demo game submission.
//   - Authenticated endpoints under /api: game submission, leaderboards,
//     vocab lookup, daily challenge.
//   - Player resolution from an opaque access token (query param or Bearer).
//
// Notes:
//   - Auth here is deliberately thin: the token is opaque and resolved
//     against the players table; provisioning tokens is out of scope.
//   - Optional auth decorates requests with player context when a valid
//     token is present; the demo route still runs for guests.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/chi-middleware/proxy"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gorilla/schema"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/lexicube/go-server/internal/daily"
	"github.com/lexicube/go-server/internal/dictionary"
	"github.com/lexicube/go-server/internal/leaderboard"
)

// Config carries the HTTP-facing knobs the server needs.
type Config struct {
	ClientOrigin      string
	RateLimitCount    int
	RateLimitInterval time.Duration
}

// Server bundles router, stores, dictionary, and the daily orchestrator.
type Server struct {
	r       *chi.Mux
	db      *sqlx.DB
	dict    *dictionary.Dictionary
	scores  *leaderboard.Store
	daily   *daily.Orchestrator
	cfg     Config
	decoder *schema.Decoder
}

// New constructs a Server, installs middleware, and registers routes.
func New(db *sqlx.DB, dict *dictionary.Dictionary, scores *leaderboard.Store, orch *daily.Orchestrator, cfg Config) *Server {
	if cfg.ClientOrigin == "" {
		cfg.ClientOrigin = "http://localhost:5173"
	}
	if cfg.RateLimitCount <= 0 {
		cfg.RateLimitCount = 30
	}
	if cfg.RateLimitInterval <= 0 {
		cfg.RateLimitInterval = time.Minute
	}

	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	s := &Server{
		r:       chi.NewRouter(),
		db:      db,
		dict:    dict,
		scores:  scores,
		daily:   orch,
		cfg:     cfg,
		decoder: dec,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(proxy.ForwardedHeaders())
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(metricsMiddleware)
	s.r.Use(jsonContentType)
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"lexicube-go","endpoints":["/health","POST /games","POST /api/games","/api/daily-challenges/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	s.r.Get("/debug/dictionary", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(s.dict.Stats())
	})

	// Demo submission: no auth, rate limited per IP.
	s.r.With(
		httprate.LimitByIP(cfg.RateLimitCount, cfg.RateLimitInterval),
		s.withOptionalPlayer(),
	).Post("/games", s.submitGame)

	// Shared game lookup is public: the code is the capability.
	s.r.Get("/sharedGames/{code}", s.handleGetSharedGame)

	// Authenticated API.
	s.r.Route("/api", func(r chi.Router) {
		r.Use(s.requirePlayer())
		r.Post("/games", s.submitGame)
		r.Post("/games/share", s.handleShareGame)
		r.Get("/leaderboard-scores", s.handleTopScores)
		r.Get("/leaderboard-scores/vocab/words/{wordId}", s.handleVocabWord)
		s.mountDaily(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- players -----------------------------------

// player matches the players table shape.
type player struct {
	ID          string `db:"id" json:"id"`
	DisplayName string `db:"display_name" json:"displayName"`
}

// ctxPlayerKey is the context key type for storing the resolved player.
type ctxPlayerKey struct{}

// currentPlayer returns the player resolved by auth middleware, or nil.
func currentPlayer(r *http.Request) *player {
	p, _ := r.Context().Value(ctxPlayerKey{}).(*player)
	return p
}

// accessToken extracts the opaque token from the accessToken query
// parameter or an Authorization: Bearer header.
func accessToken(r *http.Request) string {
	if t := r.URL.Query().Get("accessToken"); t != "" {
		return t
	}
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// findPlayerByToken resolves an access token against the players table.
func (s *Server) findPlayerByToken(ctx context.Context, token string) (*player, error) {
	var p player
	err := s.db.GetContext(ctx, &p,
		`SELECT id, display_name FROM players WHERE access_token=?`, token)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// withOptionalPlayer decorates requests with player context when a valid
// token is present. It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalPlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := accessToken(r); tok != "" {
				if p, err := s.findPlayerByToken(r.Context(), tok); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxPlayerKey{}, p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requirePlayer enforces a resolvable access token.
func (s *Server) requirePlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := accessToken(r)
			if tok == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			p, err := s.findPlayerByToken(r.Context(), tok)
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, `{"error":"Invalid access token"}`, http.StatusUnauthorized)
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("resolve access token")
				http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), ctxPlayerKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ------------------------------- helpers -----------------------------------

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
