// cmd/memory-server/main.go
//
// Entry point for the memory-match HTTP/websocket server.
// Reads configuration from .env and the environment, loads the card symbols,
// and serves until SIGINT/SIGTERM.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/config"
	"github.com/robalobadob/memory/internal/httpserver"
	"github.com/robalobadob/memory/internal/store"
	"github.com/robalobadob/memory/internal/symbols"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	syms, err := symbols.Load(cfg.SymbolsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SymbolsFile).Msg("failed to load symbols")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, syms, cfg)
	log.Info().Str("port", cfg.Port).Int("pairs", len(syms)).Msg("starting memory server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
