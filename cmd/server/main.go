package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/connectpro/relay/internal/adapters/http"
	signaladapter "github.com/connectpro/relay/internal/adapters/signal"
	"github.com/connectpro/relay/internal/app"
	"github.com/connectpro/relay/internal/auth"
	"github.com/connectpro/relay/internal/config"
	"github.com/connectpro/relay/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("jwt secret is not configured (set RELAY_JWT_SECRET)")
	}

	registry := core.NewRegistry()
	rooms := core.NewRoomTable()
	rt := app.NewRouter(registry, rooms)
	verifier := auth.NewVerifier(cfg.JWTSecret)
	// The account service provides display names in production; the relay
	// falls back to client-asserted names, so an empty directory is fine.
	var directory auth.Directory = auth.StaticDirectory{}
	ctl := signaladapter.NewController(cfg, rt, verifier, directory)

	r := router.SetupRouter(ctx, cfg, rt, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("signaling relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
