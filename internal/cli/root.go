// Package cli provides the root command and main execution flow for cloudrules.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/p4th0r/cloudrules/internal/config"
	"github.com/p4th0r/cloudrules/internal/logging"
	"github.com/p4th0r/cloudrules/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for cloudrules.
func NewRootCmd(version ...string) *cobra.Command {
	ver := "dev"
	if len(version) > 0 && version[0] != "" {
		ver = version[0]
	}
	cfg := config.Defaults()

	cmd := &cobra.Command{
		Use:   "cloudrules [OPTIONS]",
		Short: "Generate Little Snitch rule groups from cloud endpoint data",
		Long: `cloudrules fetches the Microsoft 365 endpoint web service and writes an
.lsrules rule group subscription allowing outbound traffic to every published
URL and IP range.

Wildcard URLs of the form *.example.com become remote-domains rules; any
other wildcard pattern is skipped with a warning. With --port-rules (the
default) each target gets one rule per declared protocol and port list.

Example:
  cloudrules
  cloudrules --output-dir /srv/lsrules --no-ipv6 --service-areas Exchange,Skype
  cloudrules serve --output-dir /srv/lsrules --listen :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfigFile(cmd, &cfg); err != nil {
				return err
			}
			return runGenerate(cmd, &cfg)
		},
	}

	AddFlags(cmd, &cfg)

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewVersionCmd(ver))
	cmd.AddCommand(NewCompletionCmd())

	return cmd
}

func runGenerate(cmd *cobra.Command, cfg *config.Config) error {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(cmd.ErrOrStderr(), cfg.Quiet, cfg.Verbose)
	if cfg.ConfigPath != "" {
		logger.Debug("Loaded config from %s", cfg.ConfigPath)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := pipeline.Run(ctx, pipeline.Options{
		Config:   *cfg,
		Reporter: logger,
	}); err != nil {
		return err
	}

	if !cfg.DryRun {
		logger.Info("Done! You can now subscribe to the generated .lsrules file in Little Snitch.")
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
