package routes

import (
	"net/http"

	"github.com/zatekoja/carefinder/backend/internal/api/handlers"
	"github.com/zatekoja/carefinder/backend/internal/api/middleware"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	facilityHandler *handlers.FacilityHandler
	advisoryHandler *handlers.AdvisoryHandler
	mapsHandler     *handlers.MapsHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	facilityHandler *handlers.FacilityHandler,
	advisoryHandler *handlers.AdvisoryHandler,
	mapsHandler *handlers.MapsHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		facilityHandler: facilityHandler,
		advisoryHandler: advisoryHandler,
		mapsHandler:     mapsHandler,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Facility search endpoints
	r.mux.HandleFunc("GET /api/hospitals", r.facilityHandler.SearchHospitals)
	r.mux.HandleFunc("GET /api/emergency", r.facilityHandler.SearchEmergency)
	r.mux.HandleFunc("GET /api/pharmacy", r.facilityHandler.SearchPharmacies)

	if r.advisoryHandler != nil {
		r.mux.HandleFunc("POST /api/chat", r.advisoryHandler.Chat)
	}
	if r.mapsHandler != nil {
		r.mux.HandleFunc("GET /api/maps/config", r.mapsHandler.GetMapConfig)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so error and preflight responses carry its headers.
	var handler http.Handler = r.mux
	handler = middleware.Recover(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
