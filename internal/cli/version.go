// Package cli provides the version subcommand for cloudrules.
package cli

import (
	"fmt"
	"runtime"

	"github.com/p4th0r/cloudrules/internal/config"
	"github.com/p4th0r/cloudrules/internal/rulefile"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version subcommand.
func NewVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cloudrules %s\n", version)
			fmt.Fprintf(out, "  go: %s\n", runtime.Version())
			fmt.Fprintf(out, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "  source: %s\n", config.DefaultURL)
			fmt.Fprintf(out, "  output: %s\n", rulefile.FileName(config.DefaultProvider))
		},
	}
}
