package cmd

import (
	"fmt"
	"runtime"

	"github.com/quantmind-br/jlaunch/internal/platform"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			v := version
			if v == "" {
				v = "dev"
			}
			p := platform.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "jlaunch version %s (%s, %s, %s)\n", v, p, p.Width, runtime.Version())
		},
	}

	return cmd
}
