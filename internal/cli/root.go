package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zatekoja/carefinder/backend/internal/app"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/observability"
	"github.com/zatekoja/carefinder/backend/pkg/config"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	envFile string
	debug   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "carefinder",
		Short:        "Find nearby hospitals, emergency rooms and pharmacies",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log at debug level to stderr")

	cmd.AddCommand(
		serveCmd(opts),
		hospitalsCmd(opts),
		emergencyCmd(opts),
		pharmacyCmd(opts),
		registryCmd(opts),
		askCmd(opts),
	)
	return cmd
}

// loadConfig reads the env file and environment and sets up logging on logOut.
func loadConfig(opts *rootOptions, logOut io.Writer) (*config.Config, error) {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	env := cfg.Env
	if opts.debug {
		env = "development"
	}
	observability.InitLoggerWithWriter(cfg.OTEL.ServiceName, env, logOut)
	return cfg, nil
}

// loadApp builds the application for one-shot commands, logging to stderr.
func loadApp(cmd *cobra.Command, opts *rootOptions) (*app.App, error) {
	cfg, err := loadConfig(opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
