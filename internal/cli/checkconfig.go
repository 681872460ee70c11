package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtding233/buffon-needle/internal/config"
)

func CheckConfig() *cobra.Command {
	return &cobra.Command{
		Use:   "checkconfig",
		Short: "Check configuration file(s)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPaths(cmd)...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config is valid: line_distance=%v needle_length=%v method=%s tick_interval=%s\n",
				cfg.Needle.LineDistance, cfg.Needle.NeedleLength, cfg.Method, cfg.TickInterval)
			return nil
		},
	}
}
