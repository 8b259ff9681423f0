package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carefinder/backend/internal/app"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/observability"
	"github.com/zatekoja/carefinder/backend/pkg/config"
)

func main() {
	if err := config.LoadEnvFile(envFile()); err != nil {
		log.Fatal().Err(err).Msg("failed to load env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := app.SetupTelemetry(ctx, cfg)
	defer shutdownTelemetry()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	if err := application.Serve(ctx); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func envFile() string {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}
