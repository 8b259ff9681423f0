package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zatekoja/carefinder/backend/internal/application/services"
	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
)

type originFlags struct {
	lat, lon float64
}

func (o *originFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&o.lat, "lat", 0, "latitude of the search origin")
	cmd.Flags().Float64Var(&o.lon, "lon", 0, "longitude of the search origin")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
}

func (o *originFlags) location() entities.Location {
	return entities.Location{Latitude: o.lat, Longitude: o.lon}
}

func hospitalsCmd(opts *rootOptions) *cobra.Command {
	var (
		origin  originFlags
		keyword string
		radius  float64
	)

	cmd := &cobra.Command{
		Use:   "hospitals",
		Short: "List registry facilities near a point, closest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			results, err := a.Search.SearchHospitals(cmd.Context(), services.HospitalQuery{
				Origin:   origin.location(),
				Keyword:  keyword,
				RadiusKm: radius,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}

	origin.register(cmd)
	cmd.Flags().StringVar(&keyword, "keyword", "", "only facilities whose name contains this text")
	cmd.Flags().Float64Var(&radius, "radius", services.DefaultSearchRadiusKm, "search radius in kilometres")
	return cmd
}

func emergencyCmd(opts *rootOptions) *cobra.Command {
	var origin originFlags

	cmd := &cobra.Command{
		Use:   "emergency",
		Short: "List emergency rooms near a point, rooms with free beds first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			results, err := a.Search.SearchEmergency(cmd.Context(), origin.location())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}

	origin.register(cmd)
	return cmd
}

func pharmacyCmd(opts *rootOptions) *cobra.Command {
	var (
		origin originFlags
		radius float64
	)

	cmd := &cobra.Command{
		Use:   "pharmacy",
		Short: "List pharmacies near a point, open ones first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			results, err := a.Search.SearchPharmacies(cmd.Context(), services.PharmacyQuery{
				Origin:   origin.location(),
				RadiusKm: radius,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}

	origin.register(cmd)
	cmd.Flags().Float64Var(&radius, "radius", services.DefaultSearchRadiusKm, "search radius in kilometres")
	return cmd
}

func registryCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the static facility registry",
	}
	c.AddCommand(registryCheckCmd(opts))
	return c
}

func registryCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the registry and report kept and skipped rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			reg, err := a.Search.CheckRegistry(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registry: %s\n", a.Config.Registry.CSVPath)
			fmt.Fprintf(out, "Entries:  %d\n", reg.Len())
			fmt.Fprintf(out, "Skipped:  %d\n", reg.Skipped())
			return nil
		},
	}
}
