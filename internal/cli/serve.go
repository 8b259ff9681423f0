package cli

import (
	"github.com/spf13/cobra"

	"github.com/zatekoja/carefinder/backend/internal/app"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			shutdownTelemetry := app.SetupTelemetry(ctx, cfg)
			defer shutdownTelemetry()

			application, err := app.New(cfg)
			if err != nil {
				return err
			}
			return application.Serve(ctx)
		},
	}
}
