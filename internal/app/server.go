package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/zatekoja/carefinder/backend/internal/infrastructure/observability"
)

const shutdownTimeout = 10 * time.Second

// NewServer creates the HTTP server for the app
func (a *App) NewServer() *http.Server {
	return &http.Server{
		Addr:         a.Config.Server.ServerAddr(),
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	server := a.NewServer()
	logger := observability.GetLogger()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("env", a.Config.Env).
			Str("registry", a.Config.Registry.CSVPath).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server exited")
	return nil
}
