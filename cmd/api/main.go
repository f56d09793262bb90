package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/finsight/finsight/internal/api/handlers"
	"github.com/finsight/finsight/internal/api/middleware"
	"github.com/finsight/finsight/internal/app"
	"github.com/finsight/finsight/internal/config"
	"github.com/finsight/finsight/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New().Level(logger.ParseLevel(cfg.LogLevel))

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer a.Close()

	verifier := middleware.NewStaticVerifier(cfg.TokenMap())
	api := handlers.New(a.Store, a.Pipeline, a.Allocator, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(verifier),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.StoreBackend).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	waitForShutdown(srv, log)
}

func waitForShutdown(srv *http.Server, log zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
