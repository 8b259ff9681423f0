// Package app wires configuration into the services and HTTP handler shared by
// the API server and the command-line tool.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zatekoja/carefinder/backend/internal/adapters/providers/feeds"
	"github.com/zatekoja/carefinder/backend/internal/adapters/registry"
	"github.com/zatekoja/carefinder/backend/internal/api/handlers"
	"github.com/zatekoja/carefinder/backend/internal/api/routes"
	"github.com/zatekoja/carefinder/backend/internal/application/services"
	"github.com/zatekoja/carefinder/backend/internal/domain/providers"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/clients/openai"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/clients/publicdata"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/observability"
	"github.com/zatekoja/carefinder/backend/pkg/config"
)

// App holds the wired services
type App struct {
	Config   *config.Config
	Search   *services.FacilitySearchService
	Advisory *services.AdvisoryService
	Metrics  *observability.Metrics
}

// New builds the services from cfg. A missing OpenAI key leaves the advisory
// service unavailable rather than failing startup.
func New(cfg *config.Config) (*App, error) {
	metrics, err := observability.InitMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger := observability.GetLogger()

	feedClient := publicdata.NewClient(cfg.PublicData.Timeout, cfg.PublicData.Format, metrics)
	if cfg.PublicData.EmergencyKey == "" {
		logger.Warn().Msg("PUBLIC_DATA_EMERGENCY_KEY is not set; emergency feed requests will be rejected upstream")
	}
	if cfg.PublicData.PharmacyKey == "" {
		logger.Warn().Msg("PUBLIC_DATA_PHARMACY_KEY is not set; pharmacy feed requests will be rejected upstream")
	}

	search := services.NewFacilitySearchService(
		registry.NewCSVLoader(cfg.Registry.CSVPath),
		feeds.NewEmergencyFeed(feedClient, &cfg.PublicData),
		feeds.NewPharmacyFeed(feedClient, &cfg.PublicData),
		cfg.Server.Location(),
	)

	var advisor providers.AdvisoryProvider
	if cfg.OpenAI.APIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY is not set; symptom advisory disabled")
	} else {
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize OpenAI client; symptom advisory disabled")
		} else {
			advisor = client
		}
	}

	return &App{
		Config:   cfg,
		Search:   search,
		Advisory: services.NewAdvisoryService(advisor),
		Metrics:  metrics,
	}, nil
}

// Handler returns the HTTP handler with all routes and middleware
func (a *App) Handler() http.Handler {
	router := routes.NewRouter(
		handlers.NewFacilityHandler(a.Search),
		handlers.NewAdvisoryHandler(a.Advisory),
		handlers.NewMapsHandler(a.Config.Maps),
		a.Config.CORS.AllowedOrigins,
		a.Metrics,
	)
	return router.SetupRoutes()
}

// SetupTelemetry starts the OTLP trace exporter when enabled and returns its
// shutdown function, which is a no-op otherwise.
func SetupTelemetry(ctx context.Context, cfg *config.Config) func() {
	noop := func() {}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint == "" {
		return noop
	}

	logger := observability.GetLogger()
	shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		return noop
	}
	logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
		}
	}
}
