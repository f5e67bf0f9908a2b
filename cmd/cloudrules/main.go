// cloudrules converts the Microsoft 365 endpoint web service into a Little
// Snitch rule group subscription (.lsrules).
package main

import (
	"fmt"
	"os"

	"github.com/p4th0r/cloudrules/internal/cli"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[cloudrules] Error: %v\n", err)
		os.Exit(1)
	}
}
