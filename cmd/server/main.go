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

	router "honyaku/internal/adapters/http"
	wsignal "honyaku/internal/adapters/signal"
	"honyaku/internal/app"
	"honyaku/internal/app/orch"
	"honyaku/internal/config"
	"honyaku/internal/core"
	"honyaku/internal/translate"
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
		log.Error().Err(err).Msg("failed to load config")
	}
	if cfg.Provider.APIKey == "" {
		log.Warn().Msg("no provider API key configured, translations will fail")
	}

	registry := core.NewRegistry(cfg.Rooms, cfg.DefaultSlots, cfg.MinSlots, cfg.MaxSlots, cfg.LogCap)
	sessions := app.NewSessions(registry)
	translator := translate.NewOpenAI(cfg.Provider)

	orchestrator := orch.New(registry, sessions, translator, orch.Models{
		Quality: cfg.Provider.ModelQuality,
		Speed:   cfg.Provider.ModelSpeed,
	})

	ctrl := wsignal.NewController(ctx, cfg, sessions, registry, orchestrator)

	r := router.SetupRouter(cfg, registry, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("honyaku server started")
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
