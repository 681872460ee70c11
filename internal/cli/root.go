package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Root builds the buffon command tree.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "buffon",
		Short:         "Buffon's needle Monte Carlo simulation",
		Long:          `Drop needles onto a plane with two parallel lines and estimate π from the crossing frequency.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceP("config", "c", nil, "config file(s) (.yaml, .toml or .json); later files override earlier ones")
	root.AddCommand(Serve(), Throw(), CheckConfig(), Version())
	return root
}

func configPaths(cmd *cobra.Command) []string {
	paths, _ := cmd.Flags().GetStringSlice("config")
	return paths
}

// Main runs the command line with args and returns the process exit code.
// Errors are printed as plain text on stderr.
func Main(args []string, stdout, stderr io.Writer) int {
	root := Root()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
