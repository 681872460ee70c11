package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/xtding233/buffon-needle/internal/build"
)

func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "buffon v%s (Go version: %s)\n", build.Version, runtime.Version())
		},
	}
}
