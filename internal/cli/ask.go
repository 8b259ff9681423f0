package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func askCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <symptoms>",
		Short: "Ask which hospital department fits a symptom description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			reply, err := a.Advisory.Advise(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}
