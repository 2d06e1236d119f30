package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wikiwander/go-server/internal/game"
	"github.com/wikiwander/go-server/internal/hint"
	"github.com/wikiwander/go-server/internal/httpserver"
	"github.com/wikiwander/go-server/internal/links"
	"github.com/wikiwander/go-server/internal/store"
	"github.com/wikiwander/go-server/internal/wiki"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	wikiClient := wiki.NewClient(os.Getenv("WIKI_REST_BASE"), os.Getenv("WIKI_API_BASE"))
	rewriter := links.NewRewriter(os.Getenv("WIKI_SITE_BASE"))

	var hints hint.Provider = hint.Disabled{}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		hints = hint.NewOpenAI(key, os.Getenv("OPENAI_MODEL"))
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set; hints disabled")
	}

	debounce := time.Duration(envInt("SUGGEST_DEBOUNCE_MS", 300)) * time.Millisecond
	newSession := func() *game.Session {
		return game.NewSession(game.Config{
			Fetcher:  wikiClient,
			Hints:    hints,
			Rewriter: rewriter,
			Debounce: debounce,
		})
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, newSession)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting wikiwander server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
