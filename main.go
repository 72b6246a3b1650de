package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lexicube/go-server/internal/daily"
	"github.com/lexicube/go-server/internal/dictionary"
	"github.com/lexicube/go-server/internal/httpserver"
	"github.com/lexicube/go-server/internal/leaderboard"
	"github.com/lexicube/go-server/internal/notify"
	"github.com/lexicube/go-server/internal/session"
	"github.com/lexicube/go-server/internal/sqlitedb"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	job := flag.String("job", "", "run one batch job (ends-soon|daily-report) and exit")
	flag.Parse()

	config := initConfig(true)

	db, err := sqlitedb.Open(config.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := sqlitedb.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	dict := dictionary.New()
	for _, lang := range config.Languages {
		if err := loadLanguage(dict, config.DictionaryDir, lang); err != nil {
			log.Fatal().Err(err).Str("language", lang).Msg("failed to load word list")
		}
	}
	for lang, n := range dict.Stats() {
		log.Info().Str("language", lang).Int("words", n).Msg("dictionary loaded")
	}

	scores := leaderboard.NewStore(db)
	orch := &daily.Orchestrator{
		Store:    daily.NewStore(db),
		Sessions: session.NewMemoryStore(),
		Salt:     config.DailySalt,
	}

	if *job != "" {
		runJob(*job, config, orch.Store)
		return
	}

	srv := httpserver.New(db, dict, scores, orch, httpserver.Config{
		ClientOrigin:      config.ClientOrigin,
		RateLimitCount:    config.RateLimitCount,
		RateLimitInterval: config.RateLimitInterval(),
	})
	log.Info().Str("addr", config.Address).Msg("starting lexicube server")
	if err := srv.Start(config.Address); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// loadLanguage loads a word list from DictionaryDir, falling back to the
// embedded list when no directory is configured.
func loadLanguage(dict *dictionary.Dictionary, dir, lang string) error {
	if dir == "" {
		return dict.LoadEmbedded(lang)
	}
	return dict.LoadFile(lang, dir+"/"+lang+".txt")
}

// runJob executes one scheduled batch (cron invokes the binary with -job).
func runJob(name string, config *Config, store *daily.Store) {
	if config.NotifyEndpoint == "" {
		log.Fatal().Msg("NotifyEndpoint must be configured for batch jobs")
	}
	jobs := &daily.Jobs{
		Store:       store,
		Publisher:   notify.NewHTTPPublisher(config.NotifyEndpoint),
		Concurrency: config.NotifyConcurrency,
		Timeout:     config.NotifyTimeout(),
	}
	ctx := context.Background()
	now := time.Now()

	switch name {
	case "ends-soon":
		if _, err := jobs.EndsSoon(ctx, time.Duration(config.EndsSoonMinutes)*time.Minute, now); err != nil {
			log.Fatal().Err(err).Msg("ends-soon job failed")
		}
	case "daily-report":
		// Report on the challenges that just ended: yesterday's.
		for _, lang := range config.Languages {
			if _, err := jobs.DailyReport(ctx, now.Add(-24*time.Hour), lang, now); err != nil {
				log.Fatal().Err(err).Str("language", lang).Msg("daily-report job failed")
			}
		}
	default:
		log.Fatal().Str("job", name).Msg("unknown job")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
