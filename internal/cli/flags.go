// Package cli provides the command-line interface for cloudrules.
package cli

import (
	"github.com/p4th0r/cloudrules/internal/config"
	"github.com/spf13/cobra"
)

// AddFlags adds all generation flags to the root command.
func AddFlags(cmd *cobra.Command, cfg *config.Config) {
	// Source
	cmd.Flags().StringVar(&cfg.URL, "url", cfg.URL, "Endpoint web service URL")
	cmd.Flags().IntVar(&cfg.Timeout, "timeout", cfg.Timeout, "Seconds to wait for the endpoint web service")
	cmd.Flags().BoolVar(&cfg.NoIPv6, "no-ipv6", cfg.NoIPv6, "Exclude IPv6 ranges from the endpoint data")
	cmd.Flags().StringSliceVar(&cfg.ServiceAreas, "service-areas", cfg.ServiceAreas, "Only include these service areas (Common, Exchange, SharePoint, Skype)")

	// Output
	cmd.Flags().StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for the generated rule file")
	cmd.Flags().StringVar(&cfg.Provider, "provider", cfg.Provider, "Provider name used in the rule file name and title")
	cmd.Flags().BoolVar(&cfg.PortRules, "port-rules", cfg.PortRules, "Emit one rule per protocol with the declared ports")
	cmd.Flags().StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this file (textfile collector format)")

	// Common options
	cmd.Flags().StringVarP(&cfg.ConfigPath, "config", "c", "", "YAML config file (flags override file values)")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Fetch and extract, but do not write any files")
	cmd.Flags().BoolVarP(&cfg.Quiet, "quiet", "q", false, "Only print errors")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Show debug output")
}

// applyConfigFile overlays the --config file onto cfg, keeping explicit flags.
func applyConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.ConfigPath == "" {
		return nil
	}
	file, err := config.LoadFile(cfg.ConfigPath)
	if err != nil {
		return err
	}
	cfg.Overlay(file, func(name string) bool {
		return cmd.Flags().Changed(name)
	})
	return nil
}
