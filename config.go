// config.go
//
// TOML configuration with a generated default. The config file is created on
// first run with a random daily-challenge salt; secrets and the log level
// can still be overridden through the environment (.env is honored).

package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const configFile = "config.toml"

type Config struct {
	Address              string   // listen address, e.g. ":5175"
	DatabasePath         string   // SQLite database file
	ClientOrigin         string   // CORS origin for the web client
	DailySalt            string   // seed salt for daily challenge puzzles
	DictionaryDir        string   // directory of <lang>.txt word lists; embedded fallback if empty
	Languages            []string // languages to load at startup
	RateLimitCount       int      // demo submissions allowed per IP per interval
	RateLimitSeconds     int      // rate limit interval
	NotifyEndpoint       string   // push gateway endpoint for batch jobs
	NotifyTimeoutSeconds int      // per-publish timeout
	NotifyConcurrency    int      // max in-flight publishes per batch
	EndsSoonMinutes      int      // ends-soon job threshold
}

func (c *Config) RateLimitInterval() time.Duration {
	return time.Duration(c.RateLimitSeconds) * time.Second
}

func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutSeconds) * time.Second
}

func GetDefaultConfig_Toml() string {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		log.Warn().Msg("couldn't generate random daily salt")
	}
	return fmt.Sprintf(`# Config auto-generated on %s
Address=":5175"                  # Listen address
DatabasePath="data/lexicube.db"  # SQLite database file
ClientOrigin=""                  # CORS origin (blank = localhost dev default)
DailySalt="%s"                   # Daily challenge seed salt (randomly generated)
DictionaryDir=""                 # Directory of <lang>.txt lists (blank = embedded)
Languages=["en"]                 # Languages to load at startup
RateLimitCount=30                # Demo submissions per IP per interval
RateLimitSeconds=60              # Rate limit interval in seconds
NotifyEndpoint=""                # Push gateway endpoint (blank disables jobs)
NotifyTimeoutSeconds=5           # Per-publish timeout in seconds
NotifyConcurrency=8              # Max in-flight publishes per batch
EndsSoonMinutes=60               # Ends-soon notification threshold
`, time.Now().Format(time.RFC3339), hex.EncodeToString(salt))
}

// initConfig reads config.toml, generating a default one on first run.
func initConfig(allowRecreate bool) *Config {
	var config Config
	configData, err := os.ReadFile(configFile)
	if err != nil {
		if allowRecreate {
			if werr := os.WriteFile(configFile, []byte(GetDefaultConfig_Toml()), 0o600); werr != nil {
				log.Fatal().Err(werr).Msg("couldn't write default config")
			}
			log.Info().Str("path", configFile).Msg("generated default config")
			return initConfig(false)
		}
		log.Fatal().Err(err).Str("path", configFile).Msg("couldn't read config file")
	}
	// If the config exists, it MUST be parsable.
	if err := toml.Unmarshal(configData, &config); err != nil {
		log.Fatal().Err(err).Msg("couldn't parse config file")
	}
	return &config
}
